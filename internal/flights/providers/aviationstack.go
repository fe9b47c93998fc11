package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/flight-data-pipeline/internal/flights"
)

// DefaultAviationstackURL is the real-time flights endpoint.
const DefaultAviationstackURL = "https://api.aviationstack.com/v1/flights"

// AviationstackProvider implements flights.PageSource for aviationstack.com.
type AviationstackProvider struct {
	name      string
	accessKey string
	baseURL   string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

func NewAviationstackProvider(client *http.Client, baseURL, accessKey string) *AviationstackProvider {
	if baseURL == "" {
		baseURL = DefaultAviationstackURL
	}
	return &AviationstackProvider{
		name:      "aviationstack",
		accessKey: accessKey,
		baseURL:   baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
		},
		circuit: newCircuitBreaker("aviationstack"),
	}
}

func (p *AviationstackProvider) Name() string {
	return p.name
}

// Page requests one page of flight records. Records are returned verbatim.
func (p *AviationstackProvider) Page(ctx context.Context, offset, limit int) ([]json.RawMessage, error) {
	if p.accessKey == "" {
		return nil, fmt.Errorf("%w: aviationstack access key is not configured", flights.ErrUpstreamRequest)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("access_key", p.accessKey)
		values.Set("limit", strconv.Itoa(limit))
		values.Set("offset", strconv.Itoa(offset))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Data  *[]json.RawMessage `json:"data"`
		Error *apiError          `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", flights.ErrUpstreamParse, err)
	}

	// The API occasionally reports errors with a 200 status.
	if payload.Error != nil {
		return nil, fmt.Errorf("%w: %s", flights.ErrUpstreamRequest, payload.Error)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("%w: response has no data field", flights.ErrUpstreamParse)
	}

	return *payload.Data, nil
}
