package ports

import "context"

// IdentityVerifier valida la credencial del llamante y devuelve su identificador (owner).
// Un token inválido o expirado devuelve un error que envuelve domain.ErrUnauthorized.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (subject string, err error)
}
