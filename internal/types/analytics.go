package types

// Bucket is one labeled bar of a distribution.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SkillCount is a skill with its number of occurrences.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// SkillPerformance is the average match score of the candidates listing a skill.
type SkillPerformance struct {
	Skill         string  `json:"skill"`
	AvgMatchScore float64 `json:"avg_match_score"`
	Count         int     `json:"count"`
}

// Analytics holds the statistics behind the analytics views.
type Analytics struct {
	Total                  int                `json:"total"`
	AverageMatchScore      float64            `json:"average_match_score"`
	AverageExperience      float64            `json:"average_experience"`
	ExperienceDistribution []Bucket           `json:"experience_distribution"`
	MatchScoreDistribution []Bucket           `json:"match_score_distribution"`
	TopSkills              []SkillCount       `json:"top_skills"`
	SkillPerformance       []SkillPerformance `json:"skill_performance"`
	UniqueSkills           int                `json:"unique_skills"`
	Correlation            float64            `json:"experience_match_correlation"`
	TopPerformers          int                `json:"top_performers"`
	LowPerformers          int                `json:"low_performers"`
	PassRate               float64            `json:"pass_rate"`
	WithEmail              int                `json:"with_email"`
	WithPhone              int                `json:"with_phone"`
	WithEducation          int                `json:"with_education"`
}
