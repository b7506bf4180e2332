// Package apiclient is the portal's single point of communication with the
// remote booking API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/spec-kit/booking-portal/internal/config"
	"github.com/spec-kit/booking-portal/internal/observability"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

const maxResponseBytes = 4 << 20

// Client issues JSON requests against the booking API. Every request carries
// a bearer token and an Accept-Language header unless the caller set them.
type Client struct {
	baseURL       string
	http          *http.Client
	breaker       *gobreaker.CircuitBreaker
	tokens        TokenSource
	defaultLocale string
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Token overrides the automatic consumer token.
	Token  string
	Header http.Header
}

// New builds a client from configuration.
func New(cfg config.APIConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	jar, _ := cookiejar.New(nil)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "booking-api",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    time.Duration(cfg.BreakerIntervalSec) * time.Second,
		Timeout:     time.Duration(cfg.BreakerOpenTimeoutSec) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests || counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.BreakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("api circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		http:          &http.Client{Timeout: cfg.Timeout(), Jar: jar},
		breaker:       breaker,
		tokens:        noToken{},
		defaultLocale: cfg.DefaultLocale,
		logger:        logger,
		metrics:       metrics,
	}
}

// WithTokenSource returns a view of the client that reads the automatic
// bearer token from ts. The view shares the transport and circuit breaker but
// has its own cookie jar.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	clone := *c
	httpClient := *c.http
	httpClient.Jar, _ = cookiejar.New(nil)
	clone.http = &httpClient
	if ts == nil {
		ts = noToken{}
	}
	clone.tokens = ts
	return &clone
}

// Do performs req and decodes a successful JSON response into out (when non-nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	raw, err := c.call(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err))
	}
	return nil
}

type response struct {
	status int
	body   []byte
}

var errUpstream = errors.New("upstream error")

func (c *Client) call(ctx context.Context, req Request) (json.RawMessage, error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}
		res := &response{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return res, errUpstream
		}
		return res, nil
	})

	res, _ := result.(*response)
	status := 0
	if res != nil {
		status = res.status
	}
	c.metrics.RecordAPICall(req.Path, req.Method, status, time.Since(start))

	if err != nil && !errors.Is(err, errUpstream) {
		c.logger.Debug("api transport failure",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err))
		return nil, apperrors.NewTransportError(err)
	}
	if status < 200 || status >= 300 {
		return nil, decodeError(status, res.body)
	}
	return json.RawMessage(res.body), nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	if httpReq.Header.Get("Authorization") == "" {
		token := req.Token
		if token == "" {
			token = c.tokens.Token(ctx)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if httpReq.Header.Get("Accept-Language") == "" {
		locale := LocaleFrom(ctx)
		if locale == "" {
			locale = c.defaultLocale
		}
		if locale != "" {
			httpReq.Header.Set("Accept-Language", locale)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// errorBody is the API's error envelope.
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func decodeError(status int, body []byte) error {
	var payload errorBody
	_ = json.Unmarshal(body, &payload)

	message := payload.Message
	if message == "" {
		message = payload.Error
	}
	var details map[string]any
	if len(payload.Errors) > 0 {
		details = make(map[string]any, len(payload.Errors))
		for field, msgs := range payload.Errors {
			details[field] = strings.Join(msgs, " ")
		}
	}
	return apperrors.FromHTTPStatus(status, message, details)
}
