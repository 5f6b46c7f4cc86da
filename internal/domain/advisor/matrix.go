package advisor

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/epilog/epilog-api/internal/domain/airquality"
)

// Fixed enrichment copy. Insertion is presence-checked so repeated
// enrichment passes never duplicate content.
const (
	ozoneWarningSentence = "오존 농도가 높은 상태예요. 한낮에는 농도가 더 올라갈 수 있어요."
	ozoneActionItem      = "오존이 높은 한낮(14~17시)에는 야외 활동 피하기"
	infantMaskWarning    = "영아는 마스크 착용 시 질식 위험이 있어요. 마스크 대신 외출을 줄여주세요."
	compoundRiskSentence = "(미세먼지와 오존 둘 다 높아요!)"
)

type matrixKey struct {
	age   AgeBand
	cond  Condition
	grade airquality.Grade
}

// Matrix is the immutable decision table: 80 primary cells plus the reduced
// legacy table and a generic last-resort entry. Loaded once at process start.
type Matrix struct {
	entries map[matrixKey]DecisionEntry
}

// LoadMatrix reads and validates the primary table from a JSON file,
// failing fast when any of the 80 cells is missing or incomplete.
func LoadMatrix(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read decision matrix: %w", err)
	}
	var raw []DecisionEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse decision matrix: %w", err)
	}
	return NewMatrix(raw)
}

// NewMatrix indexes and validates the table entries.
func NewMatrix(raw []DecisionEntry) (*Matrix, error) {
	entries := make(map[matrixKey]DecisionEntry, len(raw))
	for i, entry := range raw {
		grade, ok := airquality.GradeFromLabel(entry.GradeLabel)
		if !ok {
			return nil, fmt.Errorf("decision matrix entry %d: unknown grade %q", i, entry.GradeLabel)
		}
		entry.Grade = grade
		key := matrixKey{age: entry.AgeBand, cond: entry.Condition, grade: grade}
		if _, dup := entries[key]; dup {
			return nil, fmt.Errorf("decision matrix entry %d: duplicate cell %s/%s/%s", i, entry.AgeBand, entry.Condition, grade)
		}
		entries[key] = entry
	}

	for _, age := range AgeBands() {
		for _, cond := range Conditions() {
			for grade := airquality.GradeGood; grade <= airquality.GradeVeryBad; grade++ {
				entry, ok := entries[matrixKey{age: age, cond: cond, grade: grade}]
				if !ok {
					return nil, fmt.Errorf("decision matrix missing cell %s/%s/%s", age, cond, grade)
				}
				if strings.TrimSpace(entry.Headline) == "" {
					return nil, fmt.Errorf("decision matrix cell %s/%s/%s has empty headline", age, cond, grade)
				}
				if len(entry.ActionItems) == 0 {
					return nil, fmt.Errorf("decision matrix cell %s/%s/%s has no action items", age, cond, grade)
				}
			}
		}
	}
	return &Matrix{entries: entries}, nil
}

// Decide resolves the action plan for a corrected grade set. Weather
// sensitivity compounds with pollutant severity for the youngest bands.
func (m *Matrix) Decide(profile UserProfile, corrected CorrectedGrades, snapshot airquality.TelemetrySnapshot) Decision {
	final := corrected.Final()
	effective := final
	if profile.AgeBand.WeatherSensitive() && extremeTemperature(snapshot.Temperature) {
		effective = airquality.GradeFromScore(effective.Score() + 1)
	}

	entry := m.lookup(profile, effective)
	dominant, dominantGrade := corrected.Dominant()

	decision := Decision{
		Entry:          entry,
		FinalGrade:     final,
		EffectiveGrade: effective,
		Dominant:       dominant,
		DominantGrade:  dominantGrade,
		Corrected:      corrected,
	}
	return enrich(decision, profile)
}

func (m *Matrix) lookup(profile UserProfile, grade airquality.Grade) DecisionEntry {
	if grade == airquality.GradeUnknown {
		grade = airquality.GradeModerate
	}
	if entry, ok := m.entries[matrixKey{age: profile.AgeBand, cond: profile.Condition, grade: grade}]; ok {
		return entry
	}
	if entry, ok := legacyLookup(profile.AgeBand, grade); ok {
		return entry
	}
	return genericEntry(profile, grade)
}

func extremeTemperature(temperature float64) bool {
	return temperature < 5 || temperature > 30
}

// enrich applies the deterministic post-lookup rules. Append/prepend only,
// idempotent by presence check.
func enrich(d Decision, profile UserProfile) Decision {
	if d.Dominant == airquality.O3 && d.Corrected.O3 >= airquality.GradeBad {
		if !strings.Contains(d.Entry.Rationale, ozoneWarningSentence) {
			d.Entry.Rationale = strings.TrimSpace(d.Entry.Rationale + " " + ozoneWarningSentence)
		}
		d.Entry.ActionItems = appendMissing(d.Entry.ActionItems, ozoneActionItem)
	}
	if profile.AgeBand == AgeInfant {
		d.Entry.ActionItems = prependMissing(d.Entry.ActionItems, infantMaskWarning)
	}
	if d.Corrected.PM25 >= airquality.GradeBad && d.Corrected.O3 >= airquality.GradeBad {
		if !strings.Contains(d.Entry.Headline, compoundRiskSentence) {
			d.Entry.Headline = strings.TrimSpace(d.Entry.Headline + " " + compoundRiskSentence)
		}
	}
	return d
}

func appendMissing(items []string, item string) []string {
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(append([]string(nil), items...), item)
}

func prependMissing(items []string, item string) []string {
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append([]string{item}, items...)
}

func genericEntry(profile UserProfile, grade airquality.Grade) DecisionEntry {
	return DecisionEntry{
		AgeBand:    profile.AgeBand,
		Condition:  profile.Condition,
		Grade:      grade,
		GradeLabel: grade.String(),
		Headline:   "상태 확인 필요",
		Rationale:  "현재 대기질 상태를 정확히 판단하기 어려워요. 실시간 정보를 확인해 주세요.",
		ActionItems: []string{
			"실시간 대기질 정보를 다시 확인하기",
			"증상이 있으면 외출을 미루기",
		},
	}
}
