package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/candidate-ranker/internal/types"
)

// DefaultTopSkills is the number of skills reported in Analytics.TopSkills.
const DefaultTopSkills = 15

const lowPerformerThreshold = 0.4

// experienceBands are upper bounds (inclusive) of the experience distribution.
var experienceBands = []struct {
	label string
	upper float64
}{
	{"Entry Level (0-2 years)", 2},
	{"Junior (3-5 years)", 5},
	{"Mid-level (6-10 years)", 10},
	{"Senior (11-15 years)", 15},
	{"Expert (15+ years)", math.Inf(1)},
}

// matchBands are lower bounds (inclusive) of the match score distribution.
var matchBands = []struct {
	label string
	lower float64
}{
	{"Excellent (80-100%)", 0.8},
	{"Good (60-79%)", 0.6},
	{"Fair (40-59%)", 0.4},
	{"Poor (20-39%)", 0.2},
	{"Very Poor (0-19%)", math.Inf(-1)},
}

// Analyze computes the analytics view over candidates. topN <= 0 means DefaultTopSkills.
func Analyze(candidates []types.EnrichedCandidate, topN int) types.Analytics {
	if topN <= 0 {
		topN = DefaultTopSkills
	}

	a := types.Analytics{
		Total:                  len(candidates),
		ExperienceDistribution: make([]types.Bucket, len(experienceBands)),
		MatchScoreDistribution: make([]types.Bucket, len(matchBands)),
		TopSkills:              []types.SkillCount{},
		SkillPerformance:       []types.SkillPerformance{},
	}
	for i, b := range experienceBands {
		a.ExperienceDistribution[i].Label = b.label
	}
	for i, b := range matchBands {
		a.MatchScoreDistribution[i].Label = b.label
	}

	if len(candidates) == 0 {
		return a
	}

	skillCounts := make(map[string]int)
	skillMatchTotals := make(map[string]float64)
	experience := make([]float64, 0, len(candidates))
	matches := make([]float64, 0, len(candidates))
	var matchSum, experienceSum float64

	for i := range candidates {
		c := &candidates[i]
		matchSum += c.MatchScore
		experienceSum += c.ExperienceYears
		experience = append(experience, c.ExperienceYears)
		matches = append(matches, c.MatchScore*100)

		a.ExperienceDistribution[experienceBand(c.ExperienceYears)].Count++
		a.MatchScoreDistribution[matchBand(c.MatchScore)].Count++

		if c.MatchScore >= TopMatchThreshold {
			a.TopPerformers++
		}
		if c.MatchScore < lowPerformerThreshold {
			a.LowPerformers++
		}
		if strings.TrimSpace(c.Email) != "" {
			a.WithEmail++
		}
		if strings.TrimSpace(c.Phone) != "" {
			a.WithPhone++
		}
		if strings.TrimSpace(c.Education) != "" {
			a.WithEducation++
		}

		for _, skill := range c.Skills {
			skillCounts[skill]++
			skillMatchTotals[skill] += c.MatchScore
		}
	}

	n := float64(len(candidates))
	a.AverageMatchScore = matchSum / n
	a.AverageExperience = experienceSum / n
	a.PassRate = float64(a.TopPerformers) / n
	a.Correlation = Correlation(experience, matches)
	a.UniqueSkills = len(skillCounts)
	a.TopSkills = topSkills(skillCounts, topN)
	a.SkillPerformance = skillPerformance(skillCounts, skillMatchTotals)

	return a
}

func experienceBand(years float64) int {
	for i, b := range experienceBands {
		if years <= b.upper {
			return i
		}
	}
	return len(experienceBands) - 1
}

func matchBand(score float64) int {
	for i, b := range matchBands {
		if score >= b.lower {
			return i
		}
	}
	return len(matchBands) - 1
}

// topSkills returns the n most frequent skills; ties are ordered by name.
func topSkills(counts map[string]int, n int) []types.SkillCount {
	out := make([]types.SkillCount, 0, len(counts))
	for skill, count := range counts {
		out = append(out, types.SkillCount{Skill: skill, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// skillPerformance orders skills by the average match score of their holders.
func skillPerformance(counts map[string]int, totals map[string]float64) []types.SkillPerformance {
	out := make([]types.SkillPerformance, 0, len(counts))
	for skill, count := range counts {
		out = append(out, types.SkillPerformance{
			Skill:         skill,
			AvgMatchScore: totals[skill] / float64(count),
			Count:         count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMatchScore != out[j].AvgMatchScore {
			return out[i].AvgMatchScore > out[j].AvgMatchScore
		}
		return out[i].Skill < out[j].Skill
	})
	return out
}

// Correlation returns the Pearson correlation of x and y, or 0 when it is undefined.
func Correlation(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}

	fn := float64(n)
	numerator := fn*sumXY - sumX*sumY
	denominator := math.Sqrt((fn*sumXX - sumX*sumX) * (fn*sumYY - sumY*sumY))
	if denominator == 0 || math.IsNaN(denominator) {
		return 0
	}
	return numerator / denominator
}
