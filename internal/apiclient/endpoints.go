package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/alexanderramin/daoban/internal/domain"
)

// Ack is the acknowledgement body returned by auth and save endpoints.
type Ack struct {
	Success  *bool  `json:"success,omitempty"`
	Message  string `json:"message,omitempty"`
	Username string `json:"username,omitempty"`
}

// Rejected reports whether the backend explicitly refused the operation.
func (a Ack) Rejected() bool {
	return a.Success != nil && !*a.Success
}

func newRequest(method, path string, params url.Values, body any, opts []CallOption) Request {
	req := Request{Method: method, Path: path, Params: params, Body: body}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// Login authenticates creds. A 2xx reply carrying success=false is
// reported as a non-retryable server error.
func (c *Client) Login(ctx context.Context, creds domain.Credentials, opts ...CallOption) (Ack, error) {
	if err := creds.Validate(); err != nil {
		return Ack{}, err
	}
	return c.postAck(ctx, newRequest(http.MethodPost, "/auth/login", nil, creds, opts), "Login Failed")
}

// Register creates an account. It does not start a session.
func (c *Client) Register(ctx context.Context, reg domain.Registration, opts ...CallOption) (Ack, error) {
	if err := (domain.Credentials{Username: reg.Username, Password: reg.Password}).Validate(); err != nil {
		return Ack{}, err
	}
	return c.postAck(ctx, newRequest(http.MethodPost, "/auth/register", nil, reg, opts), "Registration Failed")
}

// Logout ends the session on the backend.
func (c *Client) Logout(ctx context.Context, opts ...CallOption) error {
	_, err := c.Do(ctx, newRequest(http.MethodPost, "/auth/logout", nil, nil, opts))
	return err
}

// GetUserData fetches the stored document for username. Fields the backend
// omits are absent from the returned patch.
func (c *Client) GetUserData(ctx context.Context, username string, opts ...CallOption) (domain.DocumentPatch, error) {
	if username == "" {
		return domain.DocumentPatch{}, &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	params := url.Values{"username": {username}}
	resp, err := c.Do(ctx, newRequest(http.MethodGet, "/user/data", params, nil, opts))
	if err != nil {
		return domain.DocumentPatch{}, err
	}
	if len(resp.Body) == 0 {
		return domain.DocumentPatch{}, nil
	}
	patch, err := domain.DecodeDocumentPatch(resp.Body)
	if err != nil {
		return domain.DocumentPatch{}, fmt.Errorf("loading user data for %s: %w", username, err)
	}
	return patch, nil
}

// SaveUserData repairs doc and stores it for username. Invalid monthly
// overrides are dropped and non-numeric required fields become 0 before
// sending; each repair is logged.
func (c *Client) SaveUserData(ctx context.Context, username string, doc *domain.Document, opts ...CallOption) error {
	if doc == nil {
		return &domain.ValidationError{Field: "document", Reason: "must not be nil"}
	}
	if username == "" {
		return &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	prepared, notes := doc.PrepareForSave()
	for _, note := range notes {
		c.log.Warn("repaired user document before save", zap.String("username", username), zap.String("note", note))
	}
	params := url.Values{"username": {username}}
	_, err := c.Do(ctx, newRequest(http.MethodPost, "/user/data", params, prepared, opts))
	return err
}

func (c *Client) postAck(ctx context.Context, req Request, rejectedTitle string) (Ack, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return Ack{}, err
	}
	var ack Ack
	if err := resp.Decode(&ack); err != nil {
		c.log.Debug("ignoring undecodable ack", zap.String("path", req.Path), zap.Error(err))
		return Ack{}, nil
	}
	if ack.Rejected() {
		desc, _, _ := c.describe(req)
		message := ack.Message
		if message == "" {
			message = "the server rejected the request"
		}
		apiErr := &APIError{
			Kind:    KindServer,
			Status:  resp.Status,
			Title:   rejectedTitle,
			Message: message,
			Request: desc,
		}
		if !req.Silent {
			c.Notify(apiErr)
		}
		return ack, apiErr
	}
	return ack, nil
}
