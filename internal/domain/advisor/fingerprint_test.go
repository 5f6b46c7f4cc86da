package advisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/epilog/epilog-api/internal/domain/airquality"
)

func fingerprintSnapshot(observed *time.Time) airquality.TelemetrySnapshot {
	pm25 := 36.5
	o3 := 0.04
	return airquality.TelemetrySnapshot{
		StationID:  "역삼동",
		RegionName: "서울",
		Readings: map[airquality.Pollutant]airquality.PollutantReading{
			airquality.PM25: airquality.NewReading(airquality.PM25, &pm25, airquality.GradeUnknown),
			airquality.PM10: {Pollutant: airquality.PM10, Grade: airquality.GradeModerate},
			airquality.O3:   airquality.NewReading(airquality.O3, &o3, airquality.GradeUnknown),
		},
		ObservedAt: observed,
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	observed := time.Date(2026, 8, 24, 10, 30, 12, 0, time.UTC)
	profile := UserProfile{AgeBand: AgeToddler, Condition: ConditionAsthma}

	a := Fingerprint(fingerprintSnapshot(&observed), profile)
	b := Fingerprint(fingerprintSnapshot(&observed), profile)
	require.Equal(t, a, b)
}

func TestFingerprintShape(t *testing.T) {
	observed := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	profile := UserProfile{AgeBand: AgeToddler, Condition: ConditionAsthma}

	key := Fingerprint(fingerprintSnapshot(&observed), profile)
	require.Equal(t, "st:서울역삼동_pm25:3_pm10:2_o3:2_no2:0_age:toddler_cond:asthma_obs:202608241030_vals:36.5,n/a,0.04,n/a", key)
}

func TestFingerprintSecondsIgnored(t *testing.T) {
	early := time.Date(2026, 8, 24, 10, 30, 1, 0, time.UTC)
	late := time.Date(2026, 8, 24, 10, 30, 59, 0, time.UTC)
	profile := UserProfile{AgeBand: AgeInfant, Condition: ConditionGeneral}

	require.Equal(t,
		Fingerprint(fingerprintSnapshot(&early), profile),
		Fingerprint(fingerprintSnapshot(&late), profile),
	)
}

func TestFingerprintMissingStation(t *testing.T) {
	snapshot := fingerprintSnapshot(nil)
	snapshot.StationID = ""
	snapshot.RegionName = ""

	key := Fingerprint(snapshot, UserProfile{AgeBand: AgeInfant, Condition: ConditionGeneral})
	require.Contains(t, key, "st:n/a_")
}

func TestFingerprintSensitiveToMaterialChange(t *testing.T) {
	observed := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	profile := UserProfile{AgeBand: AgeToddler, Condition: ConditionAsthma}

	base := Fingerprint(fingerprintSnapshot(&observed), profile)

	changed := fingerprintSnapshot(&observed)
	pm25 := 80.0
	changed.Readings[airquality.PM25] = airquality.NewReading(airquality.PM25, &pm25, airquality.GradeUnknown)
	require.NotEqual(t, base, Fingerprint(changed, profile))

	otherProfile := UserProfile{AgeBand: AgeToddler, Condition: ConditionGeneral}
	require.NotEqual(t, base, Fingerprint(fingerprintSnapshot(&observed), otherProfile))
}
