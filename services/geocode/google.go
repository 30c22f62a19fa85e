// Package geocode resolves free-text addresses and ZIP codes to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"harvestmap/apperrors"
	"harvestmap/models"

	"go.uber.org/zap"
)

const DefaultGoogleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Resolver turns a postal address or a bare ZIP code into a coordinate.
// Both entry points share the same lookup; only the caller's intent differs.
type Resolver interface {
	ResolveAddress(ctx context.Context, address string) (models.Coordinate, error)
	ResolveZIP(ctx context.Context, zip string) (models.Coordinate, error)
}

// googleResponse is the subset of the Google Geocoding API response we read.
type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// GoogleResolver calls the Google Geocoding API. Every call is a fresh request:
// there is no retry and no cache. Callers bound latency through ctx.
type GoogleResolver struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewGoogleResolver(apiKey, baseURL string, client *http.Client, logger *zap.Logger) *GoogleResolver {
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleResolver{apiKey: apiKey, baseURL: baseURL, client: client, logger: logger}
}

func (g *GoogleResolver) ResolveAddress(ctx context.Context, address string) (models.Coordinate, error) {
	return g.lookup(ctx, address)
}

func (g *GoogleResolver) ResolveZIP(ctx context.Context, zip string) (models.Coordinate, error) {
	return g.lookup(ctx, zip)
}

func (g *GoogleResolver) lookup(ctx context.Context, query string) (models.Coordinate, error) {
	if strings.TrimSpace(query) == "" {
		return models.Coordinate{}, apperrors.Geocode("empty geocoding query", nil)
	}
	if g.apiKey == "" {
		return models.Coordinate{}, apperrors.Geocode("geocoding is not configured", nil)
	}

	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.Coordinate{}, apperrors.Geocode("failed to build geocoding request", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("Geocoding request failed", zap.String("query", query), zap.Error(err))
		return models.Coordinate{}, apperrors.Geocode("geocoding service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("Geocoding service returned non-OK HTTP status",
			zap.String("query", query), zap.Int("status", resp.StatusCode))
		return models.Coordinate{}, apperrors.Geocode(fmt.Sprintf("geocoding service returned HTTP %d", resp.StatusCode), nil)
	}

	var data googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return models.Coordinate{}, apperrors.Geocode("failed to decode geocoding response", err)
	}

	if data.Status != "OK" || len(data.Results) == 0 {
		g.logger.Warn("Address could not be geocoded",
			zap.String("query", query),
			zap.String("status", data.Status),
			zap.String("detail", data.ErrorMessage))
		return models.Coordinate{}, apperrors.Geocode("address not recognized", errors.New(data.Status))
	}

	loc := data.Results[0].Geometry.Location
	coord := models.Coordinate{Latitude: loc.Lat, Longitude: loc.Lng}
	if err := coord.Validate(); err != nil {
		return models.Coordinate{}, apperrors.Geocode("geocoding service returned an invalid coordinate", err)
	}
	return coord, nil
}
