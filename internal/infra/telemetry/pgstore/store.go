package pgstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/epilog/epilog-api/internal/domain/airquality"
)

// Store is the tier-1 primary telemetry store backed by Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs the store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Lookup finds the freshest row matching any resolver candidate. Rows whose
// region matches the inferred region sort first; when the query named the
// region explicitly, rows outside it are excluded entirely.
func (s *Store) Lookup(ctx context.Context, res airquality.Resolution) (airquality.TelemetrySnapshot, bool, error) {
	query := `
		SELECT station_name, region,
			pm25_value, pm25_grade, pm10_value, pm10_grade,
			o3_value, o3_grade, no2_value, no2_grade,
			co_value, co_grade, so2_value, so2_grade,
			temperature, humidity,
			data_time, measured_at, created_at
		FROM station_readings
		WHERE station_name = ANY($1)
	`
	args := []any{res.Candidates}
	if res.RegionExplicit {
		query += ` AND region = $2`
		args = append(args, res.Region)
		query += ` ORDER BY COALESCE(data_time, measured_at, created_at) DESC NULLS LAST LIMIT 1`
	} else if res.Region != "" {
		query += ` ORDER BY (region = $2) DESC, COALESCE(data_time, measured_at, created_at) DESC NULLS LAST LIMIT 1`
		args = append(args, res.Region)
	} else {
		query += ` ORDER BY COALESCE(data_time, measured_at, created_at) DESC NULLS LAST LIMIT 1`
	}

	row := s.pool.QueryRow(ctx, query, args...)

	var (
		stationName, region   string
		values                [6]*float64
		labels                [6]*string
		temperature, humidity *float64
		dataTime, measuredAt  *time.Time
		createdAt             *time.Time
	)
	if err := row.Scan(
		&stationName, &region,
		&values[0], &labels[0], &values[1], &labels[1],
		&values[2], &labels[2], &values[3], &labels[3],
		&values[4], &labels[4], &values[5], &labels[5],
		&temperature, &humidity,
		&dataTime, &measuredAt, &createdAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return airquality.TelemetrySnapshot{}, false, nil
		}
		return airquality.TelemetrySnapshot{}, false, err
	}

	pollutants := airquality.Pollutants()
	readings := make(map[airquality.Pollutant]airquality.PollutantReading, len(pollutants))
	for i, p := range pollutants {
		label := airquality.GradeUnknown
		if labels[i] != nil {
			label, _ = airquality.GradeFromLabel(*labels[i])
		}
		readings[p] = airquality.NewReading(p, values[i], label)
	}

	snapshot := airquality.TelemetrySnapshot{
		StationID:  stationName,
		RegionName: region,
		Readings:   readings,
		ObservedAt: firstTimestamp(dataTime, measuredAt, createdAt),
		Source:     "store",
	}
	snapshot.SetWeather(temperature, humidity)
	return snapshot, true, nil
}

// firstTimestamp picks the best available observation time, in priority order.
func firstTimestamp(candidates ...*time.Time) *time.Time {
	for _, ts := range candidates {
		if ts != nil && !ts.IsZero() {
			return ts
		}
	}
	return nil
}
