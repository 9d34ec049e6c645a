package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/irontrack/internal/analytics"
	"github.com/meltforce/irontrack/internal/models"
	"github.com/meltforce/irontrack/internal/storage"
)

// HTTPClient implements DataSource by calling the IronTrack REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: *HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The
// API key may be empty when the server does not require one.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context, _ int) ([]models.Exercise, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Exercises []models.Exercise `json:"exercises"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return resp.Exercises, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, _, limit int) ([]models.Workout, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Workouts []models.Workout `json:"workouts"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return resp.Workouts, nil
}

func (c *HTTPClient) LastPerformances(ctx context.Context, _ int, exerciseIDs []string) (map[string]models.WorkoutExercise, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(exerciseIDs, ","))

	body, err := c.get(ctx, "/api/v1/workouts/last-performances", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Performances map[string]models.WorkoutExercise `json:"performances"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode last performances: %w", err)
	}
	return resp.Performances, nil
}

func (c *HTTPClient) MuscleDistribution(ctx context.Context, _ int) ([]analytics.MuscleCount, error) {
	body, err := c.get(ctx, "/api/v1/analytics/muscle-distribution", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Distribution []analytics.MuscleCount `json:"distribution"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode muscle distribution: %w", err)
	}
	return resp.Distribution, nil
}

func (c *HTTPClient) WeeklyVolume(ctx context.Context, _ int) ([]analytics.DayVolume, error) {
	body, err := c.get(ctx, "/api/v1/analytics/weekly-volume", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Days []analytics.DayVolume `json:"days"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode weekly volume: %w", err)
	}
	return resp.Days, nil
}

func (c *HTTPClient) ExerciseSeries(ctx context.Context, _ int, exerciseID string) ([]analytics.SeriesPoint, error) {
	body, err := c.get(ctx, "/api/v1/analytics/exercise-history/"+url.PathEscape(exerciseID), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Points []analytics.SeriesPoint `json:"points"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercise history: %w", err)
	}
	return resp.Points, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ int) (*storage.DataStats, error) {
	body, err := c.get(ctx, "/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.DataStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}
