// Package geoip resolves a client network address to coordinates using an
// ip-api compatible endpoint.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	metrics "skyledger/internal/metrics"
	"skyledger/pkg/customerrors"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.Metrics
}

func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
	}
}

// Geo is the position resolved for an address.
type Geo struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Status    string  `json:"status"`
}

// Locate resolves ip to coordinates and place names. Any transport or
// decode failure, and any non-success payload, fails the whole lookup.
func (c *Client) Locate(ctx context.Context, ip string) (geo Geo, err error) {
	defer func(start time.Time) {
		c.metrics.ObserveProvider("geoip", start, err)
	}(time.Now())

	url := fmt.Sprintf("%s/json/%s", c.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Geo{}, customerrors.WrapUpstream(err, "geoip")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Geo{}, customerrors.WrapUpstream(err, "geoip")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("status %d", resp.StatusCode)
		return Geo{}, customerrors.WrapUpstream(err, "geoip")
	}
	if err = json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return Geo{}, customerrors.WrapUpstream(err, "geoip")
	}
	if geo.Status != "" && geo.Status != "success" {
		err = fmt.Errorf("lookup failed for %q", ip)
		return Geo{}, customerrors.WrapUpstream(err, "geoip")
	}
	return geo, nil
}
