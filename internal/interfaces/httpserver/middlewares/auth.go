package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/formgrid/forms-api/internal/domain/user"
	"github.com/formgrid/forms-api/internal/interfaces/httpserver/responses"
	"github.com/formgrid/forms-api/internal/utils/platformerrors"
)

const (
	// UserContextKey stores the resolved *user.User in the gin context.
	UserContextKey = "authenticated_user"
)

// AuthConfig carries the settings needed to verify bearer tokens.
type AuthConfig struct {
	Secret string
	Issuer string
}

// Authenticator verifies bearer tokens and resolves them to platform users.
type Authenticator struct {
	cfg         AuthConfig
	userService *user.Service
}

func NewAuthenticator(cfg AuthConfig, userService *user.Service) *Authenticator {
	return &Authenticator{cfg: cfg, userService: userService}
}

type tokenClaims struct {
	Email *string `json:"email,omitempty"`
	Name  *string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		u, err := a.resolve(reqCtx)
		if err != nil {
			responses.HandleErrorWithStatus(reqCtx, http.StatusUnauthorized, err, "authentication required")
			reqCtx.Abort()
			return
		}
		reqCtx.Set(UserContextKey, u)
		reqCtx.Next()
	}
}

// Optional resolves the user when a bearer token is present but lets
// anonymous requests through. A malformed token is still rejected so a
// respondent never silently loses their identity.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		if extractBearerToken(reqCtx) == "" {
			reqCtx.Next()
			return
		}
		u, err := a.resolve(reqCtx)
		if err != nil {
			responses.HandleErrorWithStatus(reqCtx, http.StatusUnauthorized, err, "invalid bearer token")
			reqCtx.Abort()
			return
		}
		reqCtx.Set(UserContextKey, u)
		reqCtx.Next()
	}
}

func (a *Authenticator) resolve(reqCtx *gin.Context) (*user.User, error) {
	ctx := reqCtx.Request.Context()

	raw := extractBearerToken(reqCtx)
	if raw == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerTransport, platformerrors.ErrorTypeUnauthorized, "missing bearer token", nil, "0b1c2d3e-4f5a-4bc2-9dbe-8f9a0b1c2d3e")
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerTransport, platformerrors.ErrorTypeUnauthorized, "unexpected signing method", nil, "1c2d3e4f-5a6b-4cd3-8ecf-9a0b1c2d3e4f")
		}
		return []byte(a.cfg.Secret), nil
	}, jwt.WithIssuer(a.cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerTransport, platformerrors.ErrorTypeUnauthorized, "invalid token", err, "2d3e4f5a-6b7c-4de4-9fda-0b1c2d3e4f5a")
	}
	if !token.Valid {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerTransport, platformerrors.ErrorTypeUnauthorized, "invalid token", nil, "3e4f5a6b-7c8d-4ef5-8aeb-1c2d3e4f5a6b")
	}

	return a.userService.ResolveSubject(ctx, claims.Subject, claims.Email, claims.Name)
}

func extractBearerToken(reqCtx *gin.Context) string {
	header := reqCtx.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(reqCtx *gin.Context) *user.User {
	val, ok := reqCtx.Get(UserContextKey)
	if !ok {
		return nil
	}
	u, ok := val.(*user.User)
	if !ok {
		return nil
	}
	return u
}
