// Package remote implements the week store API against a lifedots server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tableflip.dev/lifedots/pkg/api"
	"tableflip.dev/lifedots/pkg/app"
	"tableflip.dev/lifedots/pkg/week"
)

// Client talks to the HTTP API served by package api.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
	log   *zap.Logger
}

var _ app.API = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the server at baseURL, authenticating with
// token when it is not empty.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("remote: server url required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		base:  u,
		token: token,
		http:  &http.Client{Timeout: 15 * time.Second},
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetWeek implements app.API.
func (c *Client) GetWeek(ctx context.Context, weekNumber int) (*week.Record, error) {
	var out *week.Record
	if err := c.do(ctx, http.MethodGet, weekPath(weekNumber, ""), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertJournalEntry implements app.API.
func (c *Client) UpsertJournalEntry(ctx context.Context, weekNumber int, journalText string) (*week.Record, error) {
	var out *week.Record
	body := map[string]string{"journalText": journalText}
	if err := c.do(ctx, http.MethodPut, weekPath(weekNumber, "/journal"), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateReminders implements app.API.
func (c *Client) UpdateReminders(ctx context.Context, weekNumber int, reminders string) (*week.Record, error) {
	var out *week.Record
	body := map[string]string{"reminders": reminders}
	if err := c.do(ctx, http.MethodPut, weekPath(weekNumber, "/reminders"), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertWeekData implements app.API.
func (c *Client) UpsertWeekData(ctx context.Context, weekNumber int, journalText, reminders *string) (*week.Record, error) {
	var out *week.Record
	body := struct {
		JournalText *string `json:"journalText,omitempty"`
		Reminders   *string `json:"reminders,omitempty"`
	}{journalText, reminders}
	if err := c.do(ctx, http.MethodPatch, weekPath(weekNumber, ""), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAllWeeks implements app.API.
func (c *Client) GetAllWeeks(ctx context.Context) ([]week.Summary, error) {
	var out []week.Summary
	if err := c.do(ctx, http.MethodGet, "/weeks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser implements app.API.
func (c *Client) GetUser(ctx context.Context) (*week.User, error) {
	var out *week.User
	if err := c.do(ctx, http.MethodGet, "/user", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateBirthdate implements app.API.
func (c *Client) UpdateBirthdate(ctx context.Context, birthdate string) (*week.User, error) {
	var out *week.User
	body := map[string]string{"birthdate": birthdate}
	if err := c.do(ctx, http.MethodPut, "/user/birthdate", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func weekPath(n int, suffix string) string {
	return fmt.Sprintf("/weeks/%d%s", n, suffix)
}

// StatusError is returned for server failures that map onto no store error.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: %d %s", e.Code, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
	Code  int    `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	target := c.base.String() + api.Prefix + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(api.RequestIDHeader, uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("remote call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.String("request_id", req.Header.Get(api.RequestIDHeader)))

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(data))
		if eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
	}
	switch resp.StatusCode {
	case http.StatusBadRequest:
		return &week.ValidationError{Field: eb.Field, Message: eb.Error}
	case http.StatusUnauthorized:
		return app.ErrUnauthenticated
	case http.StatusNotFound:
		if eb.Error == week.ErrNoBirthDate.Error() {
			return week.ErrNoBirthDate
		}
		return fmt.Errorf("%w: %s", week.ErrNotFound, eb.Error)
	default:
		return &StatusError{Code: resp.StatusCode, Message: eb.Error}
	}
}
