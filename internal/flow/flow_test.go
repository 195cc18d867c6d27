package flow

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
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
