package airquality

// Grade is one of four ordered severity levels for a pollutant or decision.
type Grade int

const (
	GradeUnknown Grade = iota
	GradeGood
	GradeModerate
	GradeBad
	GradeVeryBad
)

// Pollutant identifies a measured species.
type Pollutant string

const (
	PM25 Pollutant = "pm25"
	PM10 Pollutant = "pm10"
	O3   Pollutant = "o3"
	NO2  Pollutant = "no2"
	CO   Pollutant = "co"
	SO2  Pollutant = "so2"
)

// Pollutants lists every measured species in canonical order.
func Pollutants() []Pollutant {
	return []Pollutant{PM25, PM10, O3, NO2, CO, SO2}
}

// Score returns the numeric severity (1..4), 0 when unknown.
func (g Grade) Score() int {
	if g < GradeGood || g > GradeVeryBad {
		return 0
	}
	return int(g)
}

func (g Grade) String() string {
	switch g {
	case GradeGood:
		return "good"
	case GradeModerate:
		return "moderate"
	case GradeBad:
		return "bad"
	case GradeVeryBad:
		return "very_bad"
	default:
		return "unknown"
	}
}

// KoreanLabel renders the grade the way the public air-quality feeds do.
func (g Grade) KoreanLabel() string {
	switch g {
	case GradeGood:
		return "좋음"
	case GradeModerate:
		return "보통"
	case GradeBad:
		return "나쁨"
	case GradeVeryBad:
		return "매우나쁨"
	default:
		return ""
	}
}

// GradeFromLabel maps a Korean or English label to a Grade.
func GradeFromLabel(label string) (Grade, bool) {
	switch label {
	case "좋음", "good":
		return GradeGood, true
	case "보통", "moderate", "normal":
		return GradeModerate, true
	case "나쁨", "bad":
		return GradeBad, true
	case "매우나쁨", "very_bad", "verybad", "very bad":
		return GradeVeryBad, true
	default:
		return GradeUnknown, false
	}
}

// GradeFromScore clamps a numeric severity back into the valid range.
func GradeFromScore(score int) Grade {
	switch {
	case score <= 0:
		return GradeUnknown
	case score >= 4:
		return GradeVeryBad
	default:
		return Grade(score)
	}
}

// MaxGrade returns the most severe of the given grades.
func MaxGrade(grades ...Grade) Grade {
	out := GradeUnknown
	for _, g := range grades {
		if g > out {
			out = g
		}
	}
	return out
}

// breakpoints holds the upper bound of good/moderate/bad per pollutant.
// PM values are µg/m³, gas values ppm. Bounds are inclusive on the lower class.
var breakpoints = map[Pollutant][3]float64{
	PM25: {15, 35, 75},
	PM10: {30, 80, 150},
	O3:   {0.030, 0.090, 0.150},
	NO2:  {0.030, 0.060, 0.200},
	CO:   {2.0, 9.0, 15.0},
	SO2:  {0.020, 0.050, 0.150},
}

// GradeForValue derives the grade from a raw measurement. The derived grade
// always takes precedence over any label delivered alongside the value.
func GradeForValue(p Pollutant, value float64) (Grade, bool) {
	bounds, ok := breakpoints[p]
	if !ok || value < 0 {
		return GradeUnknown, false
	}
	switch {
	case value <= bounds[0]:
		return GradeGood, true
	case value <= bounds[1]:
		return GradeModerate, true
	case value <= bounds[2]:
		return GradeBad, true
	default:
		return GradeVeryBad, true
	}
}
