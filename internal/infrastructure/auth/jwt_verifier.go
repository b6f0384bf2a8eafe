// Package auth contiene los adaptadores de ports.IdentityVerifier.
package auth

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/pkg/jwt"
)

var _ ports.IdentityVerifier = (*JWTVerifier)(nil)

// JWTVerifier valida tokens HS256 con un secreto compartido.
type JWTVerifier struct {
	secret string
	issuer string
}

// NewJWTVerifier construye el verificador. issuer vacío = no se valida el emisor.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: secret, issuer: issuer}
}

// Verify devuelve el subject del token.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	sub, err := jwt.Parse(v.secret, v.issuer, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return sub, nil
}
