// Package baidu provides a client for Baidu-compatible LBS REST endpoints:
// geocoding, reverse geocoding, and radius place search.
package baidu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/parcelworks/siteassess/internal/model"
)

const defaultBaseURL = "https://api.map.baidu.com"

// Client performs map provider lookups.
type Client interface {
	// Geocode resolves an address to a coordinate.
	Geocode(ctx context.Context, address string) (*model.Coordinate, error)
	// ReverseGeocode resolves a coordinate to a formatted address and district.
	ReverseGeocode(ctx context.Context, coord model.Coordinate) (*ReverseResult, error)
	// SearchNearby returns places matching query within radiusMeters of origin.
	SearchNearby(ctx context.Context, query string, origin model.Coordinate, radiusMeters int) ([]model.PointOfInterest, error)
}

// ReverseResult is the useful subset of a reverse geocoding response.
type ReverseResult struct {
	FormattedAddress string
	District         string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing provider calls at qps with the given burst.
func WithRateLimit(qps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
}

type httpClient struct {
	ak      string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a map provider client authenticated with the access key.
func NewClient(ak string, opts ...Option) Client {
	c := &httpClient{
		ak:      ak,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(20), 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type geocodeResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg,omitempty"`
	Result struct {
		Location struct {
			Lng float64 `json:"lng"`
			Lat float64 `json:"lat"`
		} `json:"location"`
	} `json:"result"`
}

func (c *httpClient) Geocode(ctx context.Context, address string) (*model.Coordinate, error) {
	params := url.Values{
		"address": {address},
		"output":  {"json"},
		"ak":      {c.ak},
	}

	var resp geocodeResponse
	if err := c.getJSON(ctx, "/geocoding/v3", params, &resp); err != nil {
		return nil, eris.Wrap(err, "baidu: geocode")
	}
	if resp.Status != 0 {
		return nil, eris.Errorf("baidu: geocode status %d (%s)", resp.Status, resp.Msg)
	}

	return &model.Coordinate{
		Lng: resp.Result.Location.Lng,
		Lat: resp.Result.Location.Lat,
	}, nil
}

type reverseResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg,omitempty"`
	Result struct {
		FormattedAddress string `json:"formatted_address"`
		AddressComponent struct {
			District string `json:"district"`
		} `json:"addressComponent"`
	} `json:"result"`
}

func (c *httpClient) ReverseGeocode(ctx context.Context, coord model.Coordinate) (*ReverseResult, error) {
	params := url.Values{
		"location":  {formatLocation(coord)},
		"output":    {"json"},
		"ak":        {c.ak},
		"coordtype": {"bd09ll"},
	}

	var resp reverseResponse
	if err := c.getJSON(ctx, "/reverse_geocoding/v3", params, &resp); err != nil {
		return nil, eris.Wrap(err, "baidu: reverse geocode")
	}
	if resp.Status != 0 {
		return nil, eris.Errorf("baidu: reverse geocode status %d (%s)", resp.Status, resp.Msg)
	}

	return &ReverseResult{
		FormattedAddress: resp.Result.FormattedAddress,
		District:         resp.Result.AddressComponent.District,
	}, nil
}

type placeSearchResponse struct {
	Status  int    `json:"status"`
	Msg     string `json:"message,omitempty"`
	Results []struct {
		Name     string `json:"name"`
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		Address    string `json:"address"`
		DetailInfo struct {
			Distance *float64 `json:"distance"`
		} `json:"detail_info"`
	} `json:"results"`
}

func (c *httpClient) SearchNearby(ctx context.Context, query string, origin model.Coordinate, radiusMeters int) ([]model.PointOfInterest, error) {
	params := url.Values{
		"query":    {query},
		"location": {formatLocation(origin)},
		"radius":   {fmt.Sprintf("%d", radiusMeters)},
		"output":   {"json"},
		"ak":       {c.ak},
		"scope":    {"2"},
	}

	var resp placeSearchResponse
	if err := c.getJSON(ctx, "/place/v2/search", params, &resp); err != nil {
		return nil, eris.Wrap(err, "baidu: place search")
	}
	if resp.Status != 0 {
		return nil, eris.Errorf("baidu: place search status %d (%s)", resp.Status, resp.Msg)
	}

	pois := make([]model.PointOfInterest, 0, len(resp.Results))
	for _, r := range resp.Results {
		pois = append(pois, model.PointOfInterest{
			Name:     r.Name,
			Location: model.Coordinate{Lng: r.Location.Lng, Lat: r.Location.Lat},
			Distance: r.DetailInfo.Distance,
			Address:  r.Address,
		})
	}
	return pois, nil
}

// getJSON performs a rate-limited GET and unmarshals the JSON body into out.
func (c *httpClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit")
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "parse response")
	}
	return nil
}

// formatLocation renders a coordinate in the provider's "lat,lng" order.
func formatLocation(c model.Coordinate) string {
	return fmt.Sprintf("%v,%v", c.Lat, c.Lng)
}
