package middleware

import (
	"net/http"
	"strings"

	"github.com/deppfellow/guardian/internal/errs"
	"github.com/deppfellow/guardian/internal/server"
	"github.com/labstack/echo/v4"
)

// securePrefix is added to the session cookie name when it is served over HTTPS.
const securePrefix = "__Secure-"

type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// RequireCredentials rejects requests that carry neither the provider's
// session cookie nor a bearer token. It does not validate them: the provider
// does that on the forwarded call.
func (auth *AuthMiddleware) RequireCredentials(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if HasCredentials(c.Request(), auth.server.Config.Provider.SessionCookie) {
			return next(c)
		}

		GetLogger(c).Debug().
			Str("function", "RequireCredentials").
			Str("request_id", GetRequestID(c)).
			Msg("request without credentials")

		return errs.NewUnauthorizedError("Unauthorized", false)
	}
}

// HasCredentials reports whether r carries a non-empty session cookie named
// cookieName (plain or __Secure- prefixed) or a bearer Authorization header.
func HasCredentials(r *http.Request, cookieName string) bool {
	for _, name := range []string{cookieName, securePrefix + cookieName} {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return true
		}
	}

	scheme, token, ok := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	return ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != ""
}
