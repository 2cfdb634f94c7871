// Package iam verifica bearer tokens contra el servicio de identidad externo.
package iam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-adoption/internal/platform/httpclient"
	"pet-adoption/internal/ports/auth"
)

const (
	verifyPath   = "/v1/tokens/verify"
	apiKeyHeader = "X-Api-Key"
)

var (
	ErrNotConfigured = errors.New("iam verifier not configured")
	ErrUnauthorized  = errors.New("iam unauthorized")
	ErrUpstream      = errors.New("iam upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier.
type Verifier struct {
	client *httpclient.Client
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	c, err := httpclient.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("iam client: %w", err)
	}
	c.Headers[apiKeyHeader] = strings.TrimSpace(cfg.APIKey)
	return &Verifier{client: c}, nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	TenantID string `json:"tenant_id"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	var out verifyResponse
	err := v.client.DoJSON(ctx, http.MethodPost, verifyPath,
		map[string]string{"Authorization": "Bearer " + token},
		verifyRequest{Token: token},
		&out,
	)
	if err != nil {
		switch httpclient.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return auth.Claims{}, ErrUnauthorized
		default:
			return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	uid := strings.TrimSpace(out.UserID)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}

	return auth.Claims{
		UserID:   uid,
		Email:    strings.TrimSpace(out.Email),
		TenantID: strings.TrimSpace(out.TenantID),
	}, nil
}
