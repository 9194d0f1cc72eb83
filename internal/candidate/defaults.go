package candidate

// Stage fallbacks. The functions return fresh copies so callers may modify the result.

// DefaultProfile is returned by the parsing stage when the model output is unusable.
func DefaultProfile() Profile {
	return Profile{
		Name:       UnknownName,
		Skills:     []string{},
		Education:  []string{},
		Experience: []ExperienceEntry{},
		Summary:    "Failed to parse resume",
	}
}

var defaultQuestions = [...]Question{
	{Level: LevelEasy, Question: "Tell me about your background.", Type: TypeBehavioral},
	{Level: LevelEasy, Question: "What interests you about this role?", Type: TypeBehavioral},
	{Level: LevelMedium, Question: "Describe a challenging project you worked on.", Type: TypeBehavioral},
	{Level: LevelMedium, Question: "How do you approach problem-solving?", Type: TypeTechnical},
	{Level: LevelHard, Question: "Design a system for handling high traffic.", Type: TypeTechnical},
	{Level: LevelHard, Question: "How would you handle a critical production issue?", Type: TypeBehavioral},
}

// DefaultQuestions is returned by the question stage when the model output is unusable.
func DefaultQuestions() []Question {
	questions := make([]Question, len(defaultQuestions))
	copy(questions, defaultQuestions[:])
	return questions
}

// DefaultScoring is returned by the scoring stage when the model output is unusable.
func DefaultScoring() Scoring {
	return Scoring{
		Score:          0,
		Reasoning:      "Scoring failed",
		Strengths:      []string{},
		Concerns:       []string{},
		Recommendation: Pass,
	}
}
