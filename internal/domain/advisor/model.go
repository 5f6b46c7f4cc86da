package advisor

import (
	"time"

	"github.com/epilog/epilog-api/internal/domain/airquality"
	"github.com/epilog/epilog-api/pkg/metrics"
)

// AgeBand is one of five fixed developmental buckets.
type AgeBand string

const (
	AgeInfant         AgeBand = "infant"
	AgeToddler        AgeBand = "toddler"
	AgeElementaryLow  AgeBand = "elementary_low"
	AgeElementaryHigh AgeBand = "elementary_high"
	AgeTeenAdult      AgeBand = "teen_adult"
)

// AgeBands lists every band in ascending age order.
func AgeBands() []AgeBand {
	return []AgeBand{AgeInfant, AgeToddler, AgeElementaryLow, AgeElementaryHigh, AgeTeenAdult}
}

// WeatherSensitive reports whether the band gets the extreme-temperature
// grade bump (the three youngest bands).
func (a AgeBand) WeatherSensitive() bool {
	return a == AgeInfant || a == AgeToddler || a == AgeElementaryLow
}

// Condition is the user's baseline health sensitivity category.
type Condition string

const (
	ConditionGeneral  Condition = "general"
	ConditionRhinitis Condition = "rhinitis"
	ConditionAsthma   Condition = "asthma"
	ConditionAtopy    Condition = "atopy"
)

// Conditions lists every supported condition.
func Conditions() []Condition {
	return []Condition{ConditionGeneral, ConditionRhinitis, ConditionAsthma, ConditionAtopy}
}

// UserProfile keys the decision table. Construction goes through
// NormalizeProfile so both fields are always valid.
type UserProfile struct {
	AgeBand   AgeBand   `json:"ageBand"`
	Condition Condition `json:"condition"`
}

// ProfileInput is the free-form profile section of an advice request.
type ProfileInput struct {
	AgeGroup  string `json:"ageGroup"`
	Condition string `json:"condition"`
}

// Request is the advice payload accepted by the orchestrator.
type Request struct {
	StationQuery string       `json:"stationName"`
	Profile      ProfileInput `json:"userProfile"`
}

// GuidelineDoc is one retrieved guideline passage.
type GuidelineDoc struct {
	Text     string  `json:"text"`
	Category string  `json:"category"`
	Source   string  `json:"source"`
	Score    float64 `json:"score"`
}

// AdviceResult is the merged deterministic + generated answer. A cache hit
// returns a prior instance verbatim.
type AdviceResult struct {
	Decision        string             `json:"decision"`
	ReasonSummaries []string           `json:"reasonSummaries"`
	DetailAnswer    string             `json:"detailAnswer"`
	ActionItems     []string           `json:"actionItems"`
	References      []string           `json:"references"`
	Pollutants      map[string]float64 `json:"pollutants"`
	Station         string             `json:"station,omitempty"`
	Usage           metrics.TokenUsage `json:"usage,omitempty"`
}

// DecisionEntry is one cell of the decision table.
type DecisionEntry struct {
	AgeBand     AgeBand          `json:"ageBand"`
	Condition   Condition        `json:"condition"`
	Grade       airquality.Grade `json:"-"`
	GradeLabel  string           `json:"grade"`
	Headline    string           `json:"headline"`
	Rationale   string           `json:"rationale"`
	ActionItems []string         `json:"actionItems"`
}

// Decision is the deterministic outcome fed to retrieval and generation.
type Decision struct {
	Entry          DecisionEntry
	FinalGrade     airquality.Grade
	EffectiveGrade airquality.Grade
	Dominant       airquality.Pollutant
	DominantGrade  airquality.Grade
	Corrected      CorrectedGrades
}

// CorrectedGrades holds the post-correction severity pair plus the grades
// feeding the most-severe-wins reduction.
type CorrectedGrades struct {
	PM25 airquality.Grade
	O3   airquality.Grade
	PM10 airquality.Grade
}

// Final reduces the corrected grades with most-severe-wins.
func (c CorrectedGrades) Final() airquality.Grade {
	return airquality.MaxGrade(c.PM25, c.PM10, c.O3)
}

// Dominant returns whichever of fine particulate or ozone carries the higher
// corrected score; particulate wins ties.
func (c CorrectedGrades) Dominant() (airquality.Pollutant, airquality.Grade) {
	if c.O3.Score() > c.PM25.Score() {
		return airquality.O3, c.O3
	}
	return airquality.PM25, c.PM25
}

// CacheEntry wraps a stored AdviceResult.
type CacheEntry struct {
	Key       string       `json:"key"`
	Payload   AdviceResult `json:"payload"`
	CreatedAt time.Time    `json:"createdAt"`
}
