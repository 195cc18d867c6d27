package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func newTestClient(t *testing.T, h http.HandlerFunc, token staticToken) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, 5*time.Second, token, nil)
	require.NoError(t, err)
	return client
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true}`))
	}, staticToken("abc123"))

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "courses/getAll-courses"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, staticToken(""))

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "courses/getAll-courses"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ServerErrorCarriesPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":false,"message":"insufficient course seats"}`))
	}, staticToken(""))

	_, err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "payments/create-order", Body: map[string]any{}})
	require.Error(t, err)

	var srvErr *ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusUnprocessableEntity, srvErr.StatusCode)
	assert.Equal(t, "insufficient course seats", srvErr.Message)
}

func TestClient_NetworkErrorWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := New(srv.URL, time.Second, staticToken(""), nil)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "courses/getAll-courses"})
	require.Error(t, err)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestClient_JSONBody(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.Write([]byte(`{"message":"ok"}`))
	}, staticToken(""))

	_, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "auth/login/request-otp",
		Body:   map[string]string{"phone": "+919876543210"},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"phone":"+919876543210"}`, string(gotBody))
}

func TestClient_MultipartForm(t *testing.T) {
	var gotName string
	var gotFile []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotName = r.FormValue("name")

		file, _, err := r.FormFile("profileImage")
		require.NoError(t, err)
		defer file.Close()
		gotFile = make([]byte, 4)
		file.Read(gotFile)

		w.Write([]byte(`{"user":{"id":"u1"}}`))
	}, staticToken("abc123"))

	_, err := client.Do(context.Background(), Request{
		Method: http.MethodPut,
		Path:   "users/u1",
		Form: &MultipartForm{
			Fields:    map[string]string{"name": "Jane Doe"},
			FileField: "profileImage",
			FileName:  "avatar.png",
			File:      []byte{0x89, 'P', 'N', 'G'},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", gotName)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, gotFile)
}

func TestClient_DecodesResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"courses":[{"id":"c1","title":"Go"}]}`))
	}, staticToken(""))

	res, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "courses/getAll-courses"})
	require.NoError(t, err)

	var out struct {
		Success bool `json:"success"`
		Courses []struct {
			ID string `json:"id"`
		} `json:"courses"`
	}
	require.NoError(t, res.Decode(&out))
	assert.True(t, out.Success)
	require.Len(t, out.Courses, 1)
	assert.Equal(t, "c1", out.Courses[0].ID)
}
