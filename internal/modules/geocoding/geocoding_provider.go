// Package geocoding turns typed addresses and pincodes into coordinates.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"homechef-delivery/internal/config"
	"homechef-delivery/internal/models"

	"golang.org/x/oauth2/clientcredentials"
)

// Provider is an external geocoding backend.
type Provider interface {
	GeocodeAddress(ctx context.Context, q models.AddressQuery) (*models.GeocodeResult, error)
	LookupPincode(ctx context.Context, pincode string) (*models.PincodeResult, error)
}

// GoogleProvider calls a Google-Geocoding-compatible JSON API.
type GoogleProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	region     string
}

// NewGoogleProvider builds a provider from config. Providers fronted by an OAuth2
// token endpoint get a client-credentials HTTP client; others use the API key.
func NewGoogleProvider(cfg config.GeocodingConfig) *GoogleProvider {
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		client = cc.Client(context.Background())
		client.Timeout = cfg.Timeout
	}
	region := cfg.Region
	if region == "" {
		region = "IN"
	}
	return &GoogleProvider{
		httpClient: client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		region:     region,
	}
}

// googleGeocodeResponse is the part of the Geocoding API response we read.
type googleGeocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		PartialMatch     bool   `json:"partial_match"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// GeocodeAddress resolves a structured address. Partial or approximate matches
// are returned with LowConfidence set.
func (p *GoogleProvider) GeocodeAddress(ctx context.Context, q models.AddressQuery) (*models.GeocodeResult, error) {
	params := url.Values{}
	params.Set("address", q.Line())
	params.Set("components", "country:"+p.region)

	resp, err := p.call(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("provider.GeocodeAddress: %w", err)
	}

	r := resp.Results[0]
	result := &models.GeocodeResult{
		Coordinate:       models.Coordinate{Latitude: r.Geometry.Location.Lat, Longitude: r.Geometry.Location.Lng},
		Accuracy:         models.AccuracyExact,
		Source:           models.SourceProvider,
		FormattedAddress: r.FormattedAddress,
		LowConfidence:    r.PartialMatch || r.Geometry.LocationType == "APPROXIMATE",
	}
	for _, c := range r.AddressComponents {
		if hasType(c.Types, "postal_code") {
			result.Pincode = c.LongName
		}
	}
	result.Area = pickArea(resp)
	return result, nil
}

// LookupPincode resolves the centroid and locality of a pincode.
func (p *GoogleProvider) LookupPincode(ctx context.Context, pincode string) (*models.PincodeResult, error) {
	params := url.Values{}
	params.Set("components", fmt.Sprintf("postal_code:%s|country:%s", pincode, p.region))

	resp, err := p.call(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("provider.LookupPincode: %w", err)
	}

	loc := resp.Results[0].Geometry.Location
	return &models.PincodeResult{
		Coordinate: models.Coordinate{Latitude: loc.Lat, Longitude: loc.Lng},
		Pincode:    pincode,
		Area:       pickArea(resp),
		Source:     models.SourceProvider,
	}, nil
}

func (p *GoogleProvider) call(ctx context.Context, params url.Values) (*googleGeocodeResponse, error) {
	if p.apiKey != "" {
		params.Set("key", p.apiKey)
	}
	params.Set("region", strings.ToLower(p.region))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/geocode/json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	res, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call geocoder: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned HTTP %d after %s", res.StatusCode, time.Since(start))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var out googleGeocodeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	switch out.Status {
	case "OK":
		if len(out.Results) == 0 {
			return nil, models.ErrGeocodeFailed
		}
		return &out, nil
	case "ZERO_RESULTS":
		return nil, models.ErrGeocodeFailed
	default:
		return nil, fmt.Errorf("geocoder status %s: %s", out.Status, out.ErrorMessage)
	}
}

// areaTypes are address component types in order of preference for "area".
var areaTypes = []string{"sublocality_level_1", "sublocality", "neighborhood", "locality"}

func pickArea(resp *googleGeocodeResponse) string {
	comps := resp.Results[0].AddressComponents
	for _, t := range areaTypes {
		for _, c := range comps {
			if hasType(c.Types, t) {
				return c.LongName
			}
		}
	}
	return ""
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
