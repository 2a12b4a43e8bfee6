package Geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultOpenCageURL = "https://api.opencagedata.com"
	sourceOpenCage     = "opencage"
)

// OpenCage response structures
type openCageResponse struct {
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Results []openCageResult `json:"results"`
}

type openCageResult struct {
	Formatted string `json:"formatted"`
	Geometry  struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"geometry"`
}

// OpenCage queries the OpenCage forward geocoding API.
type OpenCage struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenCage returns a client for baseURL (DefaultOpenCageURL when empty).
func NewOpenCage(apiKey, baseURL string, timeout time.Duration) *OpenCage {
	if baseURL == "" {
		baseURL = DefaultOpenCageURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenCage{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Geocode returns the best match for name.
func (o *OpenCage) Geocode(ctx context.Context, name string) (Location, error) {
	if o.apiKey == "" {
		return Location{}, ErrMissingAPIKey
	}
	query := strings.TrimSpace(name)
	if query == "" {
		return Location{}, fmt.Errorf("%w: empty name", ErrNotFound)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", o.apiKey)
	params.Set("limit", "1")
	params.Set("no_annotations", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/geocode/v1/json?"+params.Encode(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Location{}, fmt.Errorf("%w: read response: %v", ErrLookupFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("%w: OpenCage returned status %d", ErrLookupFailed, resp.StatusCode)
	}

	var parsed openCageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Location{}, fmt.Errorf("%w: decode response: %v", ErrLookupFailed, err)
	}
	if len(parsed.Results) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	best := parsed.Results[0]
	raw, _ := json.Marshal(best)
	return Location{
		Name:             name,
		Lat:              best.Geometry.Lat,
		Lon:              best.Geometry.Lng,
		FormattedAddress: best.Formatted,
		Source:           sourceOpenCage,
		Raw:              raw,
	}, nil
}
