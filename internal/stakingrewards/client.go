package stakingrewards

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"stakingfetcher/internal/fetcher"
	"stakingfetcher/internal/logger"
	"stakingfetcher/internal/ratelimit"
)

// DefaultBaseURL is the public GraphQL endpoint.
const DefaultBaseURL = "https://api.stakingrewards.com/public/query"

// APIKeyHeader carries the credential on every request.
const APIKeyHeader = "X-API-Key"

// historicalMetricsQuery selects providers by slug and, for each, the
// requested metrics created after timeStart in ascending creation order.
const historicalMetricsQuery = `
query getHistoricalMetrics($slugs:[String!],$limit:Int,$offset:Int, $metricKeys:[String!],$timeStart:Date, $isActive:Boolean){
  providers(where:{slugs:$slugs, isActive:$isActive},limit:20){
    name
    metrics(where:{metricKeys:$metricKeys, createdAt_gt:$timeStart},limit:$limit, offset:$offset, order:{createdAt:asc}){
      defaultValue
      createdAt
      label
    }
  }
}
`

// Variables are the GraphQL variables of historicalMetricsQuery.
type Variables struct {
	Slugs      []string `json:"slugs"`
	Limit      int      `json:"limit"`
	Offset     int      `json:"offset"`
	MetricKeys []string `json:"metricKeys"`
	TimeStart  string   `json:"timeStart"`
	IsActive   bool     `json:"isActive"`
}

// Request is the POST body sent to the endpoint.
type Request struct {
	Query     string    `json:"query"`
	Variables Variables `json:"variables"`
}

// Response is the subset of the GraphQL response this client reads.
// Pointers distinguish a missing key from an empty list.
type Response struct {
	Data *struct {
		Providers *[]fetcher.ProviderRecord `json:"providers"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client fetches one day of historical provider metrics per call.
type Client struct {
	apiKey     string
	activeOnly bool
	limiter    *ratelimit.Limiter
	client     *resty.Client
}

var _ fetcher.Fetcher = (*Client)(nil)

type options struct {
	timeout time.Duration
	limiter *ratelimit.Limiter
}

// Option customizes a Client.
type Option func(*options)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLimiter throttles requests through l.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// NewClient creates a client bound to one credential and endpoint.
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	o := options{timeout: fetcher.DefaultRequestTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:     apiKey,
		activeOnly: true,
		limiter:    o.limiter,
		client:     fetcher.NewHTTPClient(baseURL, o.timeout),
	}
}

// NewRequest builds the request body for one cutoff date. The metrics
// limit equals the number of requested keys, assuming at most one
// observation per key per day.
func NewRequest(slugs, metricKeys []string, cutoff time.Time, activeOnly bool) Request {
	return Request{
		Query: historicalMetricsQuery,
		Variables: Variables{
			Slugs:      slugs,
			Limit:      len(metricKeys),
			Offset:     0,
			MetricKeys: metricKeys,
			TimeStart:  cutoff.Format(fetcher.DateLayout),
			IsActive:   activeOnly,
		},
	}
}

// Fetch retrieves the providers array for observations created after cutoff.
func (c *Client) Fetch(ctx context.Context, slugs, metricKeys []string, cutoff time.Time) ([]fetcher.ProviderRecord, error) {
	if err := c.limiter.Wait(ctx, ratelimit.APIStakingRewards); err != nil {
		return nil, fetcher.ClassifyTransportError(err)
	}

	var result Response
	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader(APIKeyHeader, c.apiKey).
		SetBody(NewRequest(slugs, metricKeys, cutoff, c.activeOnly)).
		SetResult(&result).
		Post("")

	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics for %s: %w", cutoff.Format(fetcher.DateLayout), fetcher.ClassifyTransportError(err))
	}

	logger.L().Debug().
		Str("cutoff", cutoff.Format(fetcher.DateLayout)).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("stakingrewards query")

	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	if len(result.Errors) > 0 {
		messages := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			messages = append(messages, e.Message)
		}
		return nil, fetcher.NewQueryError(messages)
	}

	if result.Data == nil {
		return nil, fetcher.NewValidationError("data missing from response")
	}
	if result.Data.Providers == nil {
		return nil, fetcher.NewValidationError("data.providers missing from response")
	}

	return *result.Data.Providers, nil
}

// NewFactory returns a constructor of clients sharing baseURL and opts,
// one per credential.
func NewFactory(baseURL string, opts ...Option) func(apiKey string) fetcher.Fetcher {
	return func(apiKey string) fetcher.Fetcher {
		return NewClient(apiKey, baseURL, opts...)
	}
}
