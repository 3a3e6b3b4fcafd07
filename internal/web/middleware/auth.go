package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/JonMunkholm/VendorHub/internal/core"
	"github.com/JonMunkholm/VendorHub/internal/logging"
)

// RoleAdmin is the role claim that grants access to every vendor and the
// admin routes.
const RoleAdmin = "admin"

// Claims are the access-token claims the API understands.
type Claims struct {
	VendorID string `json:"vendor_id,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts verified claims to the caller identity used by the core.
func (c *Claims) Actor() core.Actor {
	return core.Actor{
		UserID:   c.Subject,
		VendorID: c.VendorID,
		Admin:    c.Role == RoleAdmin,
	}
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	Secret []byte
	Issuer string        // optional; enforced when set
	Leeway time.Duration // clock skew tolerated on exp/nbf
}

var (
	errMissingToken = errors.New("unauthorized: missing bearer token")
	errInvalidToken = errors.New("unauthorized: invalid or expired token")
	errForbidden    = errors.New("forbidden: insufficient permissions")
)

// Authenticate verifies the HS256 bearer token on every request and stores
// the caller in the request context. Requests without a valid token get 401.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return cfg.Secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				reject(w, r, http.StatusUnauthorized, errMissingToken, "AUTH001")
				return
			}

			claims := &Claims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
				slog.Warn("auth: token rejected",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				reject(w, r, http.StatusUnauthorized, errInvalidToken, "AUTH001")
				return
			}
			if claims.Subject == "" || (claims.Role != RoleAdmin && claims.VendorID == "") {
				reject(w, r, http.StatusUnauthorized, errInvalidToken, "AUTH001")
				return
			}

			actor := claims.Actor()
			ctx := core.ContextWithActor(r.Context(), actor)
			ctx = logging.ContextWithUser(ctx, actor.UserID, actor.VendorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !core.ActorFromContext(r.Context()).Admin {
			reject(w, r, http.StatusForbidden, errForbidden, "AUTH002")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireVendorAccess rejects callers that may not act on the vendor named
// by the URL parameter param.
func RequireVendorAccess(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			vendorID := chi.URLParam(r, param)
			if !core.ActorFromContext(r.Context()).CanAccessVendor(vendorID) {
				reject(w, r, http.StatusForbidden, errForbidden, "AUTH002")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SignToken issues an HS256 token for claims. Used by tooling and tests.
func SignToken(secret []byte, claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// reject writes the standard error envelope. It mirrors the web package's
// error shape without importing it.
func reject(w http.ResponseWriter, r *http.Request, status int, err error, code string) {
	msg := core.MapError(err)
	if msg.Code == "" {
		msg.Code = code
	}
	logging.FromContext(r.Context()).Debug("auth: request rejected",
		"path", r.URL.Path,
		"status", status,
		"code", msg.Code,
	)
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="vendorhub"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
