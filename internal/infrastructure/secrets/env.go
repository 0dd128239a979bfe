package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"goldrates-service/internal/application"
)

// EnvStore resolves secrets from process environment variables. Local
// development loads them from .env via godotenv in cmd/.
type EnvStore struct{}

var _ application.SecretStore = EnvStore{}

func (EnvStore) Get(_ context.Context, name string) (string, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return "", fmt.Errorf("%w: secret %s", application.ErrConfig, name)
	}
	return v, nil
}
