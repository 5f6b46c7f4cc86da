package airquality

import "time"

// StalenessWindow is the maximum age of an observation before a tier is
// treated as a miss.
const StalenessWindow = 2 * time.Hour

// Placeholder ambient values used when a tier omits weather data.
const (
	DefaultTemperature = 22.0
	DefaultHumidity    = 45.0
)

// PollutantReading is a single pollutant measurement. Immutable once produced.
type PollutantReading struct {
	Pollutant Pollutant `json:"pollutant"`
	Value     *float64  `json:"value,omitempty"`
	Grade     Grade     `json:"grade"`
}

// NewReading builds a reading, preferring the value-derived grade and using
// the delivered label grade only when no numeric value is present.
func NewReading(p Pollutant, value *float64, labelGrade Grade) PollutantReading {
	reading := PollutantReading{Pollutant: p, Value: value, Grade: labelGrade}
	if value != nil {
		if derived, ok := GradeForValue(p, *value); ok {
			reading.Grade = derived
		}
	}
	return reading
}

// TelemetrySnapshot is one station's current readings plus weather. Owned
// exclusively by the request that fetched it.
type TelemetrySnapshot struct {
	StationID   string                        `json:"stationId"`
	RegionName  string                        `json:"regionName,omitempty"`
	Readings    map[Pollutant]PollutantReading `json:"readings"`
	Temperature float64                       `json:"temperature"`
	Humidity    float64                       `json:"humidity"`
	ObservedAt  *time.Time                    `json:"observedAt,omitempty"`
	Source      string                        `json:"source"`
}

// Reading returns the stored reading for a pollutant, zero value when absent.
func (s TelemetrySnapshot) Reading(p Pollutant) PollutantReading {
	if s.Readings == nil {
		return PollutantReading{Pollutant: p}
	}
	r, ok := s.Readings[p]
	if !ok {
		return PollutantReading{Pollutant: p}
	}
	return r
}

// Grade returns the grade recorded for a pollutant, GradeUnknown when absent.
func (s TelemetrySnapshot) Grade(p Pollutant) Grade {
	return s.Reading(p).Grade
}

// Value returns the raw numeric value for a pollutant when present.
func (s TelemetrySnapshot) Value(p Pollutant) (float64, bool) {
	r := s.Reading(p)
	if r.Value == nil {
		return 0, false
	}
	return *r.Value, true
}

// Fresh reports whether the observation falls inside the staleness window
// relative to now. Snapshots without a timestamp are treated as fresh; the
// static fallback has no observation time by construction.
func (s TelemetrySnapshot) Fresh(now time.Time) bool {
	if s.ObservedAt == nil {
		return true
	}
	return now.Sub(*s.ObservedAt) <= StalenessWindow
}

// SetWeather records temperature/humidity, defaulting missing values to the
// fixed placeholders instead of failing the request.
func (s *TelemetrySnapshot) SetWeather(temperature, humidity *float64) {
	s.Temperature = DefaultTemperature
	s.Humidity = DefaultHumidity
	if temperature != nil {
		s.Temperature = *temperature
	}
	if humidity != nil {
		s.Humidity = *humidity
	}
}
