package airkorea

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/epilog/epilog-api/internal/domain/airquality"
)

// Client is the tier-2 live telemetry API.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

var kst = time.FixedZone("Asia/Seoul", 9*60*60)

// NewClient builds an API client.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch retrieves current readings for one station-name candidate. The
// response grade labels are ignored whenever a numeric value is present.
func (c *Client) Fetch(ctx context.Context, station string) (airquality.TelemetrySnapshot, bool, error) {
	if c.baseURL == "" {
		return airquality.TelemetrySnapshot{}, false, nil
	}

	params := url.Values{}
	params.Set("stationName", station)
	if c.serviceKey != "" {
		params.Set("serviceKey", c.serviceKey)
	}
	endpoint := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return airquality.TelemetrySnapshot{}, false, fmt.Errorf("build station request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return airquality.TelemetrySnapshot{}, false, fmt.Errorf("station request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return airquality.TelemetrySnapshot{}, false, fmt.Errorf("station request error: status=%d body=%s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return airquality.TelemetrySnapshot{}, false, fmt.Errorf("read station response: %w", err)
	}

	var rows []stationRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return airquality.TelemetrySnapshot{}, false, fmt.Errorf("decode station response: %w", err)
	}
	if len(rows) == 0 {
		return airquality.TelemetrySnapshot{}, false, nil
	}
	return rows[0].toSnapshot(), true, nil
}

type metric struct {
	Value *float64 `json:"value"`
	Grade string   `json:"grade"`
}

type stationRow struct {
	StationName string   `json:"stationName"`
	SidoName    string   `json:"sidoName"`
	DataTime    string   `json:"dataTime"`
	MeasureTime string   `json:"measureTime"`
	UpdatedAt   string   `json:"updatedAt"`
	PM25        metric   `json:"pm25"`
	PM10        metric   `json:"pm10"`
	O3          metric   `json:"o3"`
	NO2         metric   `json:"no2"`
	CO          metric   `json:"co"`
	SO2         metric   `json:"so2"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

func (r stationRow) toSnapshot() airquality.TelemetrySnapshot {
	metrics := map[airquality.Pollutant]metric{
		airquality.PM25: r.PM25,
		airquality.PM10: r.PM10,
		airquality.O3:   r.O3,
		airquality.NO2:  r.NO2,
		airquality.CO:   r.CO,
		airquality.SO2:  r.SO2,
	}
	readings := make(map[airquality.Pollutant]airquality.PollutantReading, len(metrics))
	for p, m := range metrics {
		label, _ := airquality.GradeFromLabel(m.Grade)
		readings[p] = airquality.NewReading(p, m.Value, label)
	}

	snapshot := airquality.TelemetrySnapshot{
		StationID:  r.StationName,
		RegionName: r.SidoName,
		Readings:   readings,
		ObservedAt: firstTimestamp(r.DataTime, r.MeasureTime, r.UpdatedAt),
		Source:     "live",
	}
	snapshot.SetWeather(r.Temperature, r.Humidity)
	return snapshot
}

// firstTimestamp tries the observation time fields in priority order.
func firstTimestamp(candidates ...string) *time.Time {
	for _, raw := range candidates {
		if ts := parseTime(raw); !ts.IsZero() {
			return &ts
		}
	}
	return nil
}

func parseTime(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return ts
	}
	// The feed emits KST wall-clock times without an offset.
	if ts, err := time.ParseInLocation("2006-01-02 15:04", trimmed, kst); err == nil {
		return ts
	}
	if ts, err := time.ParseInLocation("2006-01-02 15:04:05", trimmed, kst); err == nil {
		return ts
	}
	return time.Time{}
}
