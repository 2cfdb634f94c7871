package auth

import "strings"

// Claims representa la información extraída del token.
// El marketplace no maneja roles: la autorización se decide por propiedad.
type Claims struct {
	UserID   string
	Email    string
	TenantID string
}

// Authenticated es falso para claims vacías o con UserID en blanco.
func (c Claims) Authenticated() bool {
	return strings.TrimSpace(c.UserID) != ""
}
