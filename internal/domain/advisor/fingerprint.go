package advisor

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/epilog/epilog-api/internal/domain/airquality"
	"github.com/epilog/epilog-api/pkg/util"
)

// naToken stands in for absent fields so immaterial differences never
// change the key.
const naToken = "n/a"

// fingerprintPollutants are the species that can influence the decision or
// its enrichment; the rest never reach the output and stay out of the key.
var fingerprintPollutants = []airquality.Pollutant{
	airquality.PM25, airquality.PM10, airquality.O3, airquality.NO2,
}

// Fingerprint derives the deterministic cache key for one decision context.
// It is a pure function of the snapshot and profile: sensitive to material
// data changes, insensitive to whitespace and absent fields.
func Fingerprint(snapshot airquality.TelemetrySnapshot, profile UserProfile) string {
	var b strings.Builder

	b.WriteString("st:")
	b.WriteString(stationToken(snapshot.RegionName, snapshot.StationID))

	for _, p := range fingerprintPollutants {
		fmt.Fprintf(&b, "_%s:%d", p, snapshot.Grade(p).Score())
	}

	fmt.Fprintf(&b, "_age:%s_cond:%s", profile.AgeBand, profile.Condition)

	b.WriteString("_obs:")
	if snapshot.ObservedAt != nil {
		b.WriteString(util.MinuteBucket(*snapshot.ObservedAt))
	} else {
		b.WriteString(util.DayBucket(util.NowUTC()))
	}

	b.WriteString("_vals:")
	for i, p := range fingerprintPollutants {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(valueToken(snapshot, p))
	}

	return b.String()
}

// stationToken joins region and station with punctuation and spaces
// stripped, lowercased.
func stationToken(region, station string) string {
	joined := region + station
	if strings.TrimSpace(joined) == "" {
		return naToken
	}
	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range strings.ToLower(joined) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return naToken
	}
	return b.String()
}

func valueToken(snapshot airquality.TelemetrySnapshot, p airquality.Pollutant) string {
	value, ok := snapshot.Value(p)
	if !ok {
		return naToken
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
