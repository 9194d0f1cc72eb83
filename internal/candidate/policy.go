package candidate

import "fmt"

// RecommendationPolicy decides where a report's recommendation comes from.
type RecommendationPolicy string

const (
	// PolicyModel keeps the recommendation returned by the scoring stage.
	PolicyModel RecommendationPolicy = "model"
	// PolicyThreshold derives the recommendation from the score.
	PolicyThreshold RecommendationPolicy = "threshold"
)

const (
	hireThreshold  = 70
	maybeThreshold = 50
)

// ParsePolicy validates a configured policy name. Empty selects PolicyModel.
func ParsePolicy(name string) (RecommendationPolicy, error) {
	switch p := RecommendationPolicy(name); p {
	case "":
		return PolicyModel, nil
	case PolicyModel, PolicyThreshold:
		return p, nil
	default:
		return "", fmt.Errorf("unknown recommendation policy %q", name)
	}
}

// Apply returns the recommendation the policy assigns to s.
func (p RecommendationPolicy) Apply(s Scoring) Recommendation {
	if p == PolicyThreshold {
		return RecommendationForScore(s.Score)
	}
	return ParseRecommendation(string(s.Recommendation))
}

// RecommendationForScore maps a score to hire (70+), maybe (50+) or pass.
func RecommendationForScore(score float64) Recommendation {
	switch score = ClampScore(score); {
	case score >= hireThreshold:
		return Hire
	case score >= maybeThreshold:
		return Maybe
	default:
		return Pass
	}
}
