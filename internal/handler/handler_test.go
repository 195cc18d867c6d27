package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"learnhub-web/internal/api"
	"learnhub-web/internal/cache"
	"learnhub-web/internal/endpoint"
	"learnhub-web/internal/session"
	"learnhub-web/internal/storage"
)

func newTestRegistry(t *testing.T, h http.Handler) *endpoint.Registry {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	st, err := storage.New(filepath.Join(t.TempDir(), "session.json"), "")
	require.NoError(t, err)
	sess := session.New(st)

	client, err := api.New(srv.URL, 5*time.Second, sess, nil)
	require.NoError(t, err)

	return endpoint.NewRegistry(client, cache.New(time.Minute, nil), sess)
}

func newDeadBackendRegistry(t *testing.T, baseURL string) *endpoint.Registry {
	t.Helper()

	st, err := storage.New(filepath.Join(t.TempDir(), "session.json"), "")
	require.NoError(t, err)
	sess := session.New(st)

	client, err := api.New(baseURL, time.Second, sess, nil)
	require.NoError(t, err)

	return endpoint.NewRegistry(client, cache.New(time.Minute, nil), sess)
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}
