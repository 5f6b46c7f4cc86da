package advisor

import (
	"math"

	"github.com/epilog/epilog-api/internal/domain/airquality"
)

// diseaseTrigger escalates one pollutant's grade to a fixed value when the
// profile and weather match. Triggers are evaluated in order and the first
// match short-circuits further adjustment for that pollutant.
type diseaseTrigger struct {
	pollutant airquality.Pollutant
	target    airquality.Grade
	matches   func(profile UserProfile, snapshot airquality.TelemetrySnapshot, current airquality.Grade) bool
}

var diseaseTriggers = []diseaseTrigger{
	{
		pollutant: airquality.PM25,
		target:    airquality.GradeBad,
		matches: func(p UserProfile, s airquality.TelemetrySnapshot, _ airquality.Grade) bool {
			return p.Condition == ConditionAsthma && s.Temperature < 5
		},
	},
	{
		pollutant: airquality.PM25,
		target:    airquality.GradeBad,
		matches: func(p UserProfile, s airquality.TelemetrySnapshot, _ airquality.Grade) bool {
			return p.Condition == ConditionRhinitis && s.Humidity < 30
		},
	},
	{
		pollutant: airquality.O3,
		target:    airquality.GradeBad,
		matches: func(p UserProfile, s airquality.TelemetrySnapshot, _ airquality.Grade) bool {
			return p.Condition == ConditionAtopy && s.Temperature > 30
		},
	},
	{
		pollutant: airquality.PM25,
		target:    airquality.GradeVeryBad,
		matches: func(_ UserProfile, s airquality.TelemetrySnapshot, current airquality.Grade) bool {
			return s.Humidity > 80 && current >= airquality.GradeBad
		},
	},
}

// CorrectGrades recomputes the risk-driving pollutant grades from the
// snapshot: value-derived grades were already preferred when the readings
// were built, so correction starts from the stored grade, applies at most
// one disease trigger per pollutant, and otherwise weights the score by
// humidity. PM10 feeds the final reduction uncorrected.
func CorrectGrades(snapshot airquality.TelemetrySnapshot, profile UserProfile) CorrectedGrades {
	return CorrectedGrades{
		PM25: correctPollutant(airquality.PM25, snapshot, profile),
		O3:   correctPollutant(airquality.O3, snapshot, profile),
		PM10: snapshot.Grade(airquality.PM10),
	}
}

func correctPollutant(p airquality.Pollutant, snapshot airquality.TelemetrySnapshot, profile UserProfile) airquality.Grade {
	grade := snapshot.Grade(p)

	for _, trigger := range diseaseTriggers {
		if trigger.pollutant != p {
			continue
		}
		if trigger.matches(profile, snapshot, grade) {
			return trigger.target
		}
	}

	if grade == airquality.GradeUnknown {
		return grade
	}
	weighted := float64(grade.Score()) * humidityWeight(snapshot.Humidity)
	score := int(math.Round(weighted))
	if score < 1 {
		score = 1
	}
	if score > 4 {
		score = 4
	}
	return airquality.GradeFromScore(score)
}

func humidityWeight(humidity float64) float64 {
	switch {
	case humidity > 70:
		return 1.2
	case humidity < 30:
		return 1.1
	default:
		return 1.0
	}
}
