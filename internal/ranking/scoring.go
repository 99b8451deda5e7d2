// Package ranking scores candidate records and orders enriched candidates for display.
package ranking

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/jonathan/candidate-ranker/internal/types"
)

// Score range
const (
	MinScore = 15
	MaxScore = 95
)

// Weights of the raw composite
const (
	matchWeight      = 0.40
	experienceWeight = 0.25
	skillsWeight     = 0.20
	contactWeight    = 0.10
	educationWeight  = 0.05
)

// Normalization caps
const (
	experienceCap = 15.0
	skillsCap     = 12.0
)

// Bonuses and penalties added to the scaled composite
const (
	seniorBonus        = 8.0 // >= 10 years and >= 15 skills
	establishedBonus   = 5.0 // >= 5 years and >= 10 skills
	masterBonus        = 4.0
	bachelorBonus      = 2.0
	fullContactBonus   = 3.0
	noContactPenalty   = 10.0
	maxJitterMagnitude = 2.0
)

// scoreSpan scales the raw composite onto 15..95.
const scoreSpan = 80.0

// Score label thresholds
const (
	ExcellentThreshold = 70
	GoodThreshold      = 40
)

// educationPlaceholders are parser outputs that mean "no education found".
var educationPlaceholders = map[string]bool{
	"":              true,
	"not specified": true,
	"n/a":           true,
}

// Jitter perturbs a score by an offset in [-2, +2].
// Name identifies the mode and its parameters; scores are only comparable under the same name.
type Jitter interface {
	Offset(rec *types.CandidateRecord) float64
	Name() string
}

// NoJitter keeps scoring deterministic.
type NoJitter struct{}

// Offset implements Jitter.
func (NoJitter) Offset(*types.CandidateRecord) float64 { return 0 }

// Name implements Jitter.
func (NoJitter) Name() string { return JitterNone }

// IDJitter derives a fixed offset from the record id, so scores avoid round numbers
// while staying reproducible.
type IDJitter struct{}

// Offset implements Jitter.
func (IDJitter) Offset(rec *types.CandidateRecord) float64 {
	z := uint64(rec.ID) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	frac := float64(z>>11) / float64(uint64(1)<<53)
	return frac*2*maxJitterMagnitude - maxJitterMagnitude
}

// Name implements Jitter.
func (IDJitter) Name() string { return JitterID }

// RandomJitter draws a uniform offset per call from a seeded source.
// Repeated scoring of the same record yields different scores.
type RandomJitter struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed uint64
}

// NewRandomJitter creates a RandomJitter seeded with seed.
func NewRandomJitter(seed uint64) *RandomJitter {
	return &RandomJitter{rng: rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d)), seed: seed}
}

// Offset implements Jitter.
func (j *RandomJitter) Offset(*types.CandidateRecord) float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rng.Float64()*2*maxJitterMagnitude - maxJitterMagnitude
}

// Name implements Jitter. It includes the seed.
func (j *RandomJitter) Name() string {
	return JitterRandom + "-" + strconv.FormatUint(j.seed, 10)
}

// Jitter modes accepted by ParseJitter
const (
	JitterNone   = "none"
	JitterID     = "id"
	JitterRandom = "random"
)

// ParseJitter builds the Jitter for a configured mode. An empty mode means none.
func ParseJitter(mode string, seed uint64) (Jitter, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", JitterNone:
		return NoJitter{}, nil
	case JitterID:
		return IDJitter{}, nil
	case JitterRandom:
		return NewRandomJitter(seed), nil
	default:
		return nil, fmt.Errorf("unknown jitter mode %q (want none, id or random)", mode)
	}
}

// Components are the intermediate values of the composite. The first five are normalized to [0, 1].
type Components struct {
	Match      float64 `json:"match"`
	Experience float64 `json:"experience"`
	Skills     float64 `json:"skills"`
	Contact    float64 `json:"contact"`
	Education  float64 `json:"education"`
	Raw        float64 `json:"raw"`
	Base       float64 `json:"base"`
	Bonus      float64 `json:"bonus"`
}

// Scorer computes overall quality scores.
type Scorer struct {
	jitter Jitter
}

// NewScorer creates a Scorer. A nil jitter means NoJitter.
func NewScorer(jitter Jitter) *Scorer {
	if jitter == nil {
		jitter = NoJitter{}
	}
	return &Scorer{jitter: jitter}
}

// JitterName returns the Name of the scorer's jitter.
func (s *Scorer) JitterName() string {
	return s.jitter.Name()
}

// Score returns the deterministic overall score of rec.
func Score(rec *types.CandidateRecord) int {
	return defaultScorer.Score(rec)
}

var defaultScorer = NewScorer(nil)

// Score returns the overall score of rec in [MinScore, MaxScore].
func (s *Scorer) Score(rec *types.CandidateRecord) int {
	c := Breakdown(rec)
	final := c.Base + c.Bonus + s.jitter.Offset(rec)
	return clampScore(final)
}

// Breakdown computes the scoring components of rec without jitter.
func Breakdown(rec *types.CandidateRecord) Components {
	skillCount := len(rec.Skills)
	hasEmail := present(rec.Email)
	hasPhone := present(rec.Phone)

	c := Components{
		Match:      clamp01(rec.MatchScore),
		Experience: clamp01(rec.ExperienceYears / experienceCap),
		Skills:     clamp01(float64(skillCount) / skillsCap),
		Contact:    boolScore(hasEmail)*0.5 + boolScore(hasPhone)*0.5,
		Education:  boolScore(hasEducation(rec.Education)),
	}

	c.Raw = c.Match*matchWeight +
		c.Experience*experienceWeight +
		c.Skills*skillsWeight +
		c.Contact*contactWeight +
		c.Education*educationWeight
	c.Base = MinScore + c.Raw*scoreSpan

	switch {
	case rec.ExperienceYears >= 10 && skillCount >= 15:
		c.Bonus += seniorBonus
	case rec.ExperienceYears >= 5 && skillCount >= 10:
		c.Bonus += establishedBonus
	}

	education := strings.ToLower(rec.Education)
	if strings.Contains(education, "master") {
		c.Bonus += masterBonus
	} else if strings.Contains(education, "bachelor") {
		c.Bonus += bachelorBonus
	}

	if hasEmail && hasPhone {
		c.Bonus += fullContactBonus
	}
	if !hasEmail && !hasPhone {
		c.Bonus -= noContactPenalty
	}

	return c
}

// clampScore rounds half up and bounds the result to the score range.
func clampScore(v float64) int {
	if math.IsNaN(v) {
		return MinScore
	}
	rounded := math.Floor(v + 0.5)
	if rounded < MinScore {
		return MinScore
	}
	if rounded > MaxScore {
		return MaxScore
	}
	return int(rounded)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func hasEducation(education string) bool {
	return !educationPlaceholders[strings.ToLower(strings.TrimSpace(education))]
}

// ScoreLabel names the band an overall score falls into.
func ScoreLabel(score int) string {
	switch {
	case score >= ExcellentThreshold:
		return "Excellent"
	case score >= GoodThreshold:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

// ScoreTier is the lowercase tier name used for styling: excellent, good or poor.
func ScoreTier(score int) string {
	switch {
	case score >= ExcellentThreshold:
		return "excellent"
	case score >= GoodThreshold:
		return "good"
	default:
		return "poor"
	}
}

// FormatExperience renders years of experience as a display bucket.
func FormatExperience(years float64) string {
	if years <= 0 {
		return "Entry Level"
	}
	if years == 1 {
		return "1 Year"
	}
	return strconv.FormatFloat(years, 'f', -1, 64) + " Years"
}
