package airquality

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGradeForValueBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		p     Pollutant
		value float64
		want  Grade
	}{
		{"pm25 good upper bound", PM25, 15, GradeGood},
		{"pm25 moderate lower edge", PM25, 15.1, GradeModerate},
		{"pm25 moderate upper bound", PM25, 35, GradeModerate},
		{"pm25 bad lower edge", PM25, 35.01, GradeBad},
		{"pm25 bad upper bound", PM25, 75, GradeBad},
		{"pm25 very bad", PM25, 75.5, GradeVeryBad},
		{"pm10 good upper bound", PM10, 30, GradeGood},
		{"pm10 very bad", PM10, 151, GradeVeryBad},
		{"o3 moderate upper bound", O3, 0.090, GradeModerate},
		{"o3 bad", O3, 0.091, GradeBad},
		{"no2 good upper bound", NO2, 0.030, GradeGood},
		{"co bad upper bound", CO, 15, GradeBad},
		{"so2 very bad", SO2, 0.151, GradeVeryBad},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := GradeForValue(tc.p, tc.value)
			require.True(t, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestGradeForValueRejectsNegative(t *testing.T) {
	_, ok := GradeForValue(PM25, -1)
	require.False(t, ok)
}

func TestNewReadingPrefersValueDerivedGrade(t *testing.T) {
	value := 40.0
	reading := NewReading(PM25, &value, GradeGood)
	require.Equal(t, GradeBad, reading.Grade)
}

func TestNewReadingFallsBackToLabelGrade(t *testing.T) {
	reading := NewReading(PM25, nil, GradeModerate)
	require.Equal(t, GradeModerate, reading.Grade)
	require.Nil(t, reading.Value)
}

func TestGradeFromLabel(t *testing.T) {
	for label, want := range map[string]Grade{
		"좋음": GradeGood, "보통": GradeModerate, "나쁨": GradeBad, "매우나쁨": GradeVeryBad,
		"good": GradeGood, "very_bad": GradeVeryBad,
	} {
		got, ok := GradeFromLabel(label)
		require.True(t, ok, label)
		require.Equal(t, want, got, label)
	}
	_, ok := GradeFromLabel("최악")
	require.False(t, ok)
}

func TestMaxGrade(t *testing.T) {
	require.Equal(t, GradeVeryBad, MaxGrade(GradeGood, GradeVeryBad, GradeBad))
	require.Equal(t, GradeUnknown, MaxGrade())
}
