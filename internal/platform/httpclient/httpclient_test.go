package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "k1", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))

		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", time.Second)
	require.NoError(t, err)
	c.Headers["X-Api-Key"] = "k1"

	var out struct {
		Echo string `json:"echo"`
	}
	err = c.DoJSON(context.Background(), http.MethodPost, "v1/echo", map[string]string{"X-Extra": "yes", " ": "skip"}, map[string]string{"msg": "hola"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hola", out.Echo)
}

func TestDoJSON_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)

	err = c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestResolveURL(t *testing.T) {
	c, err := New("", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.HTTP.Timeout)

	_, err = c.resolveURL("/relative")
	assert.Error(t, err)

	u, err := c.resolveURL("https://iam.local/verify")
	require.NoError(t, err)
	assert.Equal(t, "https://iam.local/verify", u)

	_, err = New("not a url", 0)
	assert.Error(t, err)
	assert.Equal(t, 0, StatusOf(assert.AnError))
}
