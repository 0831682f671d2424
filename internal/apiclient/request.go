package apiclient

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Request describes one call relative to the configured base URL.
type Request struct {
	Method string
	Path   string
	Params url.Values
	Body   any

	// Silent suppresses the error event for this call. The caller is then
	// responsible for reporting the terminal failure through Client.Notify.
	Silent bool
}

// RequestDescriptor is the replayable identity of a request. Params never
// include the cache-busting stamp; Body is the exact JSON that was sent.
type RequestDescriptor struct {
	Method string          `json:"method"`
	Path   string          `json:"path"`
	Params url.Values      `json:"params,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// Response is a successful (2xx) reply, passed through unchanged.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// ErrorEvent is what the client publishes when a call fails.
type ErrorEvent struct {
	Err       error
	Title     string
	Message   string
	Retryable bool

	// Retry is set for retryable failures and identifies the exact request
	// to hand to Client.Replay.
	Retry *RequestDescriptor
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

func cloneParams(v url.Values) url.Values {
	if len(v) == 0 {
		return nil
	}
	out := make(url.Values, len(v))
	for k, vals := range v {
		if k == cacheBustParam {
			continue
		}
		out[k] = append([]string(nil), vals...)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// CallOption adjusts a request built by an endpoint helper.
type CallOption func(*Request)

// Silent marks the call as silent.
func Silent() CallOption {
	return func(r *Request) { r.Silent = true }
}
