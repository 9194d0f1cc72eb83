package candidate

import (
	"math"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/resume-selector/internal/normalize"
)

// Every function in this file is total: any decoded JSON value maps to a
// canonical form and nothing here returns an error.

// ProfileFromMap builds a Profile from a decoded parsing-stage object.
func ProfileFromMap(m map[string]any) Profile {
	return Profile{
		Name:       normalize.String(m["name"]),
		Email:      normalize.String(m["email"]),
		Phone:      normalize.String(m["phone"]),
		Skills:     normalize.Strings(m["skills"]),
		Education:  EducationEntries(m["education"]),
		Experience: ExperienceEntries(m["experience"]),
		Summary:    normalize.String(m["summary"]),
	}
}

// ScoringFromMap builds a Scoring from a decoded scoring-stage object.
func ScoringFromMap(m map[string]any) Scoring {
	return Scoring{
		Score:          ClampScore(normalize.Float(m["score"])),
		Reasoning:      normalize.String(m["reasoning"]),
		Strengths:      normalize.Strings(m["strengths"]),
		Concerns:       normalize.Strings(m["concerns"]),
		Recommendation: ParseRecommendation(m["recommendation"]),
	}
}

// ClampScore forces a score into [0, 100]. NaN becomes 0.
func ClampScore(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

// ParseRecommendation maps a raw value onto hire, maybe or pass.
// Anything outside the vocabulary is pass.
func ParseRecommendation(v any) Recommendation {
	s, _ := v.(string)
	switch r := Recommendation(strings.ToLower(strings.TrimSpace(s))); r {
	case Hire, Maybe, Pass:
		return r
	default:
		return Pass
	}
}

// ExperienceEntries coerces the raw experience field. Objects take each field
// or "" when absent; any other entry becomes {Unknown, <entry>, ""}. JSON null
// entries carry nothing to stringify and are dropped.
func ExperienceEntries(v any) []ExperienceEntry {
	entries := make([]ExperienceEntry, 0)
	for _, item := range asList(v) {
		if item == nil {
			continue
		}

		obj, ok := item.(map[string]any)
		if !ok {
			entries = append(entries, ExperienceEntry{
				Company:  UnknownName,
				Position: normalize.String(item),
			})
			continue
		}

		var entry ExperienceEntry
		decodeLoose(obj, &entry)
		entries = append(entries, entry)
	}
	return entries
}

// EducationEntries coerces the raw education field into display strings.
// An object with degree and year becomes "<degree> (<year>)"; anything else is stringified.
func EducationEntries(v any) []string {
	entries := make([]string, 0)
	for _, item := range asList(v) {
		var entry string
		if obj, ok := item.(map[string]any); ok && obj["degree"] != nil && obj["year"] != nil {
			entry = normalize.String(obj["degree"]) + " (" + normalize.String(obj["year"]) + ")"
		} else {
			entry = normalize.String(item)
		}

		if entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

// QuestionsFromList coerces the raw question-stage array. Bare strings become
// questions without level and type; objects may carry the text under
// "question" or "q". Entries without any text are dropped.
func QuestionsFromList(items []any) []Question {
	questions := make([]Question, 0, len(items))
	for _, item := range items {
		var q Question

		switch val := item.(type) {
		case nil:
			continue
		case string:
			q.Question = strings.TrimSpace(val)
		case map[string]any:
			decodeLoose(val, &q)
			if q.Question == "" {
				q.Question = normalize.String(val["q"])
			}
			if q.Question == "" {
				q.Question = normalize.String(val)
			}
			q.Level = parseLevel(string(q.Level))
			q.Type = parseQuestionType(string(q.Type))
		default:
			q.Question = normalize.String(val)
		}

		if q.Question != "" {
			questions = append(questions, q)
		}
	}
	return questions
}

func parseLevel(s string) Level {
	for _, level := range []Level{LevelEasy, LevelMedium, LevelHard} {
		if strings.EqualFold(strings.TrimSpace(s), string(level)) {
			return level
		}
	}
	return ""
}

func parseQuestionType(s string) QuestionType {
	for _, typ := range []QuestionType{TypeBehavioral, TypeTechnical} {
		if strings.EqualFold(strings.TrimSpace(s), string(typ)) {
			return typ
		}
	}
	return ""
}

func asList(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		return val
	default:
		return []any{val}
	}
}

// decodeLoose decodes obj into out, stringifying whatever lands in a string field.
// Field names match case-insensitively.
func decodeLoose(obj map[string]any, out any) {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringifyHook,
		Result:     out,
	})
	if err != nil {
		return
	}
	// stringifyHook leaves no field that can fail to decode.
	_ = decoder.Decode(obj)
}

func stringifyHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	return normalize.String(data), nil
}
