package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"appointment-booking-api/internal/model"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identifier resolves a bearer token to the caller.
type Identifier interface {
	Identify(raw string) (model.Identity, error)
}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}

// Policy maps full gRPC method names to the role they require.
// Methods not listed are open.
type Policy map[string]model.Role

func bearer(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func Auth(idn Identifier, policy Policy) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		want, guarded := policy[info.FullMethod]
		if !guarded {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		// token from authorization: Bearer <jwt>
		raw := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw = bearer(vals[0])
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		id, err := idn.Identify(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}
		if id.Role != want {
			return nil, status.Error(codes.PermissionDenied, "access denied")
		}

		return next(WithIdentity(ctx, id), req)
	}
}

// RequireRole rejects requests without a valid token (401) or whose token
// carries a different role (403).
func RequireRole(idn Identifier, role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c.GetHeader("Authorization"))
		if raw == "" {
			deny(c, http.StatusUnauthorized, "no token")
			return
		}

		id, err := idn.Identify(raw)
		if err != nil {
			deny(c, http.StatusUnauthorized, "bad token")
			return
		}
		if id.Role != role {
			deny(c, http.StatusForbidden, "access denied")
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func deny(c *gin.Context, code int, msg string) {
	c.String(code, msg)
	c.Abort()
}
