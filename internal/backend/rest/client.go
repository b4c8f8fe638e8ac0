// Package rest talks to a hosted PostgREST table API and its object storage
// API over HTTP.
package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/JonMunkholm/leadsync/internal/core"
)

// Client is an authenticated HTTP client for one backend project.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient returns a client that sends key as both the apikey header and
// the bearer token. timeout bounds each request.
func NewClient(baseURL, key string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("apikey", key)
	client.SetAuthToken(key)
	client.SetHeader("user-agent", "leadsync/1")
	client.SetLogger(restyLogger{slog.Default().With("component", "rest")})

	return &Client{http: client, baseURL: baseURL}
}

// BaseURL returns the project URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody covers both PostgREST ({code, message}) and storage
// ({statusCode, error, message}) error shapes.
type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode string `json:"statusCode"`
}

// checkResponse maps a non-success response to a *core.RemoteError.
func checkResponse(res *resty.Response) error {
	if res.IsSuccess() {
		return nil
	}

	body := string(res.Body())
	var parsed errorBody
	_ = json.Unmarshal(res.Body(), &parsed)

	return core.ClassifyRemote(res.StatusCode(), parsed.Code, body)
}

type restyLogger struct {
	l *slog.Logger
}

func (r restyLogger) Errorf(format string, v ...any) {
	r.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Warnf(format string, v ...any) {
	r.l.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r restyLogger) Debugf(format string, v ...any) {
	r.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
