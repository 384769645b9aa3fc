// Package weather fetches current conditions for coordinates from an
// openweathermap compatible endpoint. Temperatures are Kelvin as served.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	metrics "skyledger/internal/metrics"
	"skyledger/pkg/customerrors"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	metrics    *metrics.Metrics
}

func NewClient(baseURL, apiKey string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
	}
}

// Conditions is the subset of the weather payload the service stores.
type Conditions struct {
	Temperature float64
	Description string
}

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// ByCoordinates fetches the current conditions at lat/lon.
func (c *Client) ByCoordinates(ctx context.Context, lat, lon float64) (cond Conditions, err error) {
	defer func(start time.Time) {
		c.metrics.ObserveProvider("weather", start, err)
	}(time.Now())

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Conditions{}, customerrors.WrapUpstream(err, "weather")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Conditions{}, customerrors.WrapUpstream(err, "weather")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("status %d", resp.StatusCode)
		return Conditions{}, customerrors.WrapUpstream(err, "weather")
	}

	var payload weatherResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Conditions{}, customerrors.WrapUpstream(err, "weather")
	}

	cond = Conditions{Temperature: payload.Main.Temp}
	if len(payload.Weather) > 0 {
		cond.Description = payload.Weather[0].Description
	}
	return cond, nil
}
