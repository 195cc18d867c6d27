// Package api is the HTTP transport adapter for the backend REST API. It
// attaches the bearer token, issues the call and normalizes every outcome
// into a result or a typed failure; expected failure modes never panic.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource yields the current bearer token, if any. The session store
// implements it; the adapter itself never mutates the session, a 401 included.
type TokenSource interface {
	Token() (string, bool)
}

// Recorder receives upstream observability signals. Nil-safe via noopRecorder.
type Recorder interface {
	RecordUpstreamStatus(status int)
	RecordUpstreamLatency(d time.Duration)
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any            // JSON-encoded when non-nil
	Form   *MultipartForm // multipart/form-data when non-nil; wins over Body
}

type MultipartForm struct {
	Fields    map[string]string
	FileField string
	FileName  string
	File      []byte
}

type Result struct {
	Status int
	Body   json.RawMessage
}

func (r Result) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

type Client struct {
	base    *url.URL
	httpc   *http.Client
	tokens  TokenSource
	metrics Recorder
}

func New(baseURL string, timeout time.Duration, tokens TokenSource, metrics Recorder) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}

	if metrics == nil {
		metrics = noopRecorder{}
	}

	return &Client{
		base:    base,
		httpc:   &http.Client{Timeout: timeout},
		tokens:  tokens,
		metrics: metrics,
	}, nil
}

// Do issues the request and returns the decoded envelope. Failures come back
// as *NetworkError (no response) or *ServerError (non-2xx with payload).
func (c *Client) Do(ctx context.Context, req Request) (Result, error) {
	target, err := c.base.Parse(strings.TrimLeft(req.Path, "/"))
	if err != nil {
		return Result{}, fmt.Errorf("invalid request path %q: %w", req.Path, err)
	}
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return Result{}, err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	if token, ok := c.tokens.Token(); ok {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.httpc.Do(httpReq)
	c.metrics.RecordUpstreamLatency(time.Since(started))
	if err != nil {
		c.metrics.RecordUpstreamStatus(0)
		return Result{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamStatus(resp.StatusCode)

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Result{}, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &ServerError{
			StatusCode: resp.StatusCode,
			Message:    backendMessage(payload),
			Body:       payload,
		}
	}

	return Result{Status: resp.StatusCode, Body: payload}, nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Form != nil {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for field, value := range req.Form.Fields {
			if err := w.WriteField(field, value); err != nil {
				return nil, "", err
			}
		}
		if len(req.Form.File) > 0 {
			part, err := w.CreateFormFile(req.Form.FileField, req.Form.FileName)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(req.Form.File); err != nil {
				return nil, "", err
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	}

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}

	return nil, "", nil
}

type noopRecorder struct{}

func (noopRecorder) RecordUpstreamStatus(int)           {}
func (noopRecorder) RecordUpstreamLatency(time.Duration) {}
