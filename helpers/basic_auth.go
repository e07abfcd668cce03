package helpers

import (
	"net/http"

	"code.cloudfoundry.org/lager/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/routepool/routepool/models"
)

type BasicAuthenticationMiddleware struct {
	usernameHash []byte
	passwordHash []byte
	logger       lager.Logger
}

func CreateBasicAuthMiddleware(logger lager.Logger, ba models.BasicAuth) (*BasicAuthenticationMiddleware, error) {
	usernameHash, err := hashFor(ba.UsernameHash, ba.Username)
	if err != nil {
		logger.Error("failed-basic-auth-username-hash", err)
		return nil, err
	}
	passwordHash, err := hashFor(ba.PasswordHash, ba.Password)
	if err != nil {
		logger.Error("failed-basic-auth-password-hash", err)
		return nil, err
	}
	return &BasicAuthenticationMiddleware{
		usernameHash: usernameHash,
		passwordHash: passwordHash,
		logger:       logger,
	}, nil
}

func (bam *BasicAuthenticationMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bam.usernameHash == nil && bam.passwordHash == nil {
			next.ServeHTTP(w, r)
			return
		}

		username, password, authOK := r.BasicAuth()
		if !authOK ||
			bcrypt.CompareHashAndPassword(bam.usernameHash, []byte(username)) != nil ||
			bcrypt.CompareHashAndPassword(bam.passwordHash, []byte(password)) != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hashFor(hash string, cleartext string) ([]byte, error) {
	if hash != "" {
		return []byte(hash), nil
	}
	if cleartext == "" {
		return nil, nil
	}
	if len(cleartext) > 72 {
		cleartext = cleartext[:72]
	}
	// MinCost is enough, the config already carried the value in cleartext
	return bcrypt.GenerateFromPassword([]byte(cleartext), bcrypt.MinCost)
}
