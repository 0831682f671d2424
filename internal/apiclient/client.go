// Package apiclient is the HTTP pipeline between daoban and its backend.
// Every failure is classified once here and published as an ErrorEvent.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Publisher receives error events. *events.Bus[ErrorEvent] satisfies it.
type Publisher interface {
	Publish(ErrorEvent)
}

// Client issues requests against the backend.
type Client struct {
	cfg          Config
	base         *url.URL
	http         *http.Client
	interceptors []RequestInterceptor
	publisher    Publisher
	observer     Observer
	log          *zap.Logger
	now          func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithInterceptors appends interceptors after the built-in ones.
func WithInterceptors(ics ...RequestInterceptor) Option {
	return func(c *Client) { c.interceptors = append(c.interceptors, ics...) }
}

// WithClock sets the time source used for cache busting and latency.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger used for payload repair notes.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client. publisher and observer may be nil.
func New(cfg Config, publisher Publisher, observer Observer, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid api config: %w", err)
	}
	base, _ := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if observer == nil {
		observer = NoopObserver{}
	}

	c := &Client{
		cfg:  cfg,
		base: base,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		publisher: publisher,
		observer:  observer,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.interceptors = append([]RequestInterceptor{
		JSONHeaders(),
		RequestID(),
		NewCacheBuster(c.now).Interceptor(),
	}, c.interceptors...)
	return c, nil
}

// Do sends req and returns the 2xx response, or an *APIError. Do never
// panics; a non-silent failure is also published.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	start := c.now()
	desc, body, err := c.describe(req)
	if err != nil {
		return nil, c.fail(req.Silent, start, "", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := c.build(ctx, desc, body)
	if err != nil {
		return nil, c.fail(req.Silent, start, "", err)
	}
	requestID := httpReq.Header.Get("X-Request-ID")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.fail(req.Silent, start, requestID, networkError(desc, err, c.cfg.Timeout))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.fail(req.Silent, start, requestID, networkError(desc, err, c.cfg.Timeout))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		title, message, retryable := classifyStatus(httpResp.StatusCode, serverMessage(respBody))
		return nil, c.fail(req.Silent, start, requestID, &APIError{
			Kind:      KindServer,
			Status:    httpResp.StatusCode,
			Title:     title,
			Message:   message,
			Retryable: retryable,
			Request:   desc,
		})
	}

	c.observer.OnRequestComplete(RequestEvent{
		RequestID: requestID,
		Method:    desc.Method,
		Path:      desc.Path,
		Status:    httpResp.StatusCode,
		Latency:   c.now().Sub(start),
		Success:   true,
	})
	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   respBody,
	}, nil
}

// Replay re-issues the request identified by desc. The replay is not
// silent, so a repeated failure is published again.
func (c *Client) Replay(ctx context.Context, desc RequestDescriptor) (*Response, error) {
	req := Request{
		Method: desc.Method,
		Path:   desc.Path,
		Params: desc.Params,
	}
	if len(desc.Body) > 0 {
		req.Body = desc.Body
	}
	return c.Do(ctx, req)
}

// Notify publishes err as an error event. It is how callers that issued
// silent requests report their terminal failure.
func (c *Client) Notify(err error) {
	if err == nil || c.publisher == nil {
		return
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		c.publisher.Publish(ErrorEvent{Err: err, Title: "Request Failed", Message: err.Error()})
		return
	}
	ev := ErrorEvent{
		Err:       apiErr,
		Title:     apiErr.Title,
		Message:   apiErr.Message,
		Retryable: apiErr.Retryable,
	}
	if apiErr.Retryable {
		desc := apiErr.Request
		ev.Retry = &desc
	}
	c.publisher.Publish(ev)
}

func (c *Client) describe(req Request) (RequestDescriptor, []byte, error) {
	desc := RequestDescriptor{
		Method: strings.ToUpper(req.Method),
		Path:   req.Path,
		Params: cloneParams(req.Params),
	}
	if !allowedMethods[desc.Method] {
		return desc, nil, requestError(desc, fmt.Errorf("unsupported method %q", req.Method))
	}
	if !strings.HasPrefix(desc.Path, "/") {
		return desc, nil, requestError(desc, fmt.Errorf("path %q must start with /", req.Path))
	}
	if req.Body == nil {
		return desc, nil, nil
	}
	body, err := json.Marshal(req.Body)
	if err != nil {
		return desc, nil, requestError(desc, fmt.Errorf("marshaling body: %w", err))
	}
	desc.Body = body
	return desc, body, nil
}

func (c *Client) build(ctx context.Context, desc RequestDescriptor, body []byte) (*http.Request, error) {
	ref, err := url.Parse(desc.Path)
	if err != nil {
		return nil, requestError(desc, fmt.Errorf("parsing path: %w", err))
	}
	target := *c.base
	target.Path = c.base.Path + ref.Path
	target.RawQuery = desc.Params.Encode()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, desc.Method, target.String(), reader)
	if err != nil {
		return nil, requestError(desc, fmt.Errorf("creating request: %w", err))
	}
	for _, ic := range c.interceptors {
		if err := ic(httpReq, desc); err != nil {
			return nil, requestError(desc, fmt.Errorf("interceptor: %w", err))
		}
	}
	return httpReq, nil
}

func (c *Client) fail(silent bool, start time.Time, requestID string, err error) error {
	apiErr, _ := AsAPIError(err)
	c.observer.OnRequestComplete(RequestEvent{
		RequestID: requestID,
		Method:    apiErr.Request.Method,
		Path:      apiErr.Request.Path,
		Status:    apiErr.Status,
		Latency:   c.now().Sub(start),
		Success:   false,
		Kind:      apiErr.Kind,
	})
	if !silent {
		c.Notify(apiErr)
	}
	return apiErr
}

func requestError(desc RequestDescriptor, cause error) *APIError {
	return &APIError{
		Kind:    KindRequest,
		Title:   "Request Error",
		Message: cause.Error(),
		Request: desc,
		cause:   cause,
	}
}

func networkError(desc RequestDescriptor, cause error, timeout time.Duration) *APIError {
	message := "no response from server"
	if errors.Is(cause, context.DeadlineExceeded) || isTimeout(cause) {
		message = fmt.Sprintf("no response within %s", timeout)
	}
	return &APIError{
		Kind:      KindNetwork,
		Title:     "Network Error",
		Message:   message,
		Retryable: true,
		Request:   desc,
		cause:     cause,
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// serverMessage extracts {"message": "..."} from an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
