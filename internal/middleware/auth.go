package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/bizboard/internal/utils"
	"github.com/huangang/bizboard/pkg/response"
)

const ContextUserID = "user_id"

// SessionVerifier answers who, if anyone, is signed in on a request.
type SessionVerifier interface {
	SessionUser(r *http.Request) (uint, bool)
}

// JWTSessionVerifier accepts the session cookie first, then a Bearer token.
type JWTSessionVerifier struct {
	CookieName string
}

func NewJWTSessionVerifier(cookieName string) *JWTSessionVerifier {
	if cookieName == "" {
		cookieName = "session"
	}
	return &JWTSessionVerifier{CookieName: cookieName}
}

func (v *JWTSessionVerifier) SessionUser(r *http.Request) (uint, bool) {
	claims, ok := v.claims(r)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

func (v *JWTSessionVerifier) claims(r *http.Request) (*utils.Claims, bool) {
	if cookie, err := r.Cookie(v.CookieName); err == nil && cookie.Value != "" {
		if claims, err := utils.ParseToken(cookie.Value); err == nil {
			return claims, true
		}
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

type userCtxKey struct{}

// WithUserID stores the session user on a request context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userCtxKey{}, userID)
}

// UserIDFromContext returns the session user stored by AuthRequired or the
// edge router.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userCtxKey{}).(uint)
	return id, ok && id != 0
}

// AuthRequired rejects requests without a valid session with 401 JSON.
func AuthRequired(sessions SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c.Request.Context())
		if !ok {
			userID, ok = sessions.SessionUser(c.Request)
		}
		if !ok {
			response.AbortWithError(c, response.NewUnauthorized("authentication required"))
			return
		}

		c.Set(ContextUserID, userID)
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	if id, ok := UserIDFromContext(c.Request.Context()); ok {
		return id
	}
	return 0
}
