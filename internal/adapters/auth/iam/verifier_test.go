package iam

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

func newIAM(t *testing.T, h http.HandlerFunc) *Verifier {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	v, err := NewVerifier(Config{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second})
	require.NoError(t, err)
	return v
}

func TestVerify_OK(t *testing.T) {
	v := newIAM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, verifyPath, r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get(apiKeyHeader))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var in verifyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "tok-1", in.Token)

		_ = json.NewEncoder(w).Encode(verifyResponse{UserID: " u-1 ", Email: "a@b.c"})
	})

	claims, err := v.Verify(context.Background(), " tok-1 ")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: ErrUnauthorized},
		{name: "upstream down", status: http.StatusBadGateway, want: ErrUpstream},
		{name: "missing user", status: http.StatusOK, body: verifyResponse{Email: "x@y.z"}, want: ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newIAM(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != nil {
					_ = json.NewEncoder(w).Encode(tt.body)
				}
			})

			_, err := v.Verify(context.Background(), "tok")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerify_EmptyToken(t *testing.T) {
	v := newIAM(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no debe llamar al IAM sin token")
	})
	_, err := v.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNewVerifier_NotConfigured(t *testing.T) {
	_, err := NewVerifier(Config{BaseURL: "http://iam.local"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	var v *Verifier
	_, err = v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
