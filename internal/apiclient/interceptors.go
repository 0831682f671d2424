package apiclient

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const cacheBustParam = "_t"

// RequestInterceptor runs on every outgoing request after it is built and
// before it is sent. Returning an error aborts the call as a request error.
type RequestInterceptor func(req *http.Request, desc RequestDescriptor) error

// JSONHeaders sets the JSON content negotiation headers.
func JSONHeaders() RequestInterceptor {
	return func(req *http.Request, _ RequestDescriptor) error {
		req.Header.Set("Accept", "application/json")
		if req.Body != nil && req.Body != http.NoBody {
			req.Header.Set("Content-Type", "application/json")
		}
		return nil
	}
}

// RequestID tags each request with a fresh X-Request-ID.
func RequestID() RequestInterceptor {
	return func(req *http.Request, _ RequestDescriptor) error {
		req.Header.Set("X-Request-ID", uuid.NewString())
		return nil
	}
}

// CacheBuster stamps GET requests with a strictly increasing millisecond
// timestamp so intermediate caches never serve a stale document.
type CacheBuster struct {
	now  func() time.Time
	last atomic.Int64
}

// NewCacheBuster returns a CacheBuster reading time from now.
func NewCacheBuster(now func() time.Time) *CacheBuster {
	if now == nil {
		now = time.Now
	}
	return &CacheBuster{now: now}
}

// Next returns the next stamp. It is the current unix millisecond time,
// bumped past the previous stamp when the clock has not advanced.
func (c *CacheBuster) Next() int64 {
	for {
		prev := c.last.Load()
		next := c.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if c.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Interceptor adapts the buster to the request pipeline.
func (c *CacheBuster) Interceptor() RequestInterceptor {
	return func(req *http.Request, _ RequestDescriptor) error {
		if req.Method != http.MethodGet {
			return nil
		}
		q := req.URL.Query()
		q.Set(cacheBustParam, strconv.FormatInt(c.Next(), 10))
		req.URL.RawQuery = q.Encode()
		return nil
	}
}
