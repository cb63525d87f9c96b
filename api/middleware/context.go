package middleware

import (
	"context"

	"github.com/praveensri2018/sivanyaAPI/pkg/enums"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxTier    contextKey = "user_tier"
	ctxIsAdmin contextKey = "is_admin"
)

func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

func TierFromContext(ctx context.Context) enums.UserTier {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTier).(enums.UserTier); ok {
		return v
	}
	return ""
}

func IsAdminFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(ctxIsAdmin).(bool); ok {
		return v
	}
	return false
}

// WithIdentity injects the authenticated identity into the context.
func WithIdentity(ctx context.Context, userID int64, tier enums.UserTier, isAdmin bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxTier, tier)
	return context.WithValue(ctx, ctxIsAdmin, isAdmin)
}
