package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/domain"
	"github.com/jhoicas/facturacion-pe/pkg/config"
)

var _ ports.IdentityVerifier = (*FirebaseVerifier)(nil)

// idTokenVerifier subconjunto de *auth.Client que se usa.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier valida ID tokens emitidos por Firebase Auth.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier inicializa la app de Firebase. Sin CredentialsPath se usan las
// credenciales por defecto de Google (la verificación solo necesita el ProjectID).
func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: inicializar app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: cliente de auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify devuelve el UID del usuario.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if tok.UID == "" {
		return "", fmt.Errorf("%w: token sin uid", domain.ErrUnauthorized)
	}
	return tok.UID, nil
}
