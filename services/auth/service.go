package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-pkgz/auth/v2"
	"github.com/go-pkgz/auth/v2/avatar"
	"github.com/go-pkgz/auth/v2/logger"
	"github.com/go-pkgz/auth/v2/provider"
	"github.com/go-pkgz/auth/v2/token"

	"watchdeck/config"
	"watchdeck/services/accounts"
)

// New constructs the session-issuing auth collaborator: a go-pkgz auth
// service with a direct credential provider backed by the accounts table.
// The rest of the application only ever consumes the token user it injects;
// session issuance itself stays behind this boundary.
func New(cfg config.AuthSettings, baseURL string, accts *accounts.Service) *auth.Service {
	opts := auth.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return cfg.Secret, nil
		}),
		TokenDuration:  time.Duration(cfg.TokenDurationMin) * time.Minute,
		CookieDuration: time.Duration(cfg.CookieDurationHrs) * time.Hour,
		Issuer:         "watchdeck",
		URL:            baseURL,
		AvatarStore:    avatar.NewLocalFS(cfg.AvatarDir),
		ClaimsUpd: token.ClaimsUpdFunc(func(claims token.Claims) token.Claims {
			if claims.User == nil {
				return claims
			}
			// The direct provider puts the login (email) into Name; enrich
			// the token with the account's canonical email and admin claim.
			acct, err := accts.GetByEmail(context.Background(), claims.User.Name)
			if err != nil {
				return claims
			}
			claims.User.Email = acct.Email
			claims.User.SetAdmin(acct.IsAdmin)
			return claims
		}),
		Validator: token.ValidatorFunc(func(_ string, claims token.Claims) bool {
			return claims.User != nil
		}),
		Logger: logger.Std,
	}

	svc := auth.NewService(opts)
	svc.AddDirectProvider("local", provider.CredCheckerFunc(func(user, password string) (bool, error) {
		_, err := accts.CheckCredentials(context.Background(), user, password)
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}))

	return svc
}
