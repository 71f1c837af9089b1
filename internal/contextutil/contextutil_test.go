package contextutil_test

import (
	"context"
	"testing"

	"paycompliance/internal/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequestAndUserID(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "rid-1")
	ctx = contextutil.WithUserID(ctx, "user-1")

	assert.Equal(t, "rid-1", contextutil.GetRequestID(ctx))
	assert.Equal(t, "user-1", contextutil.GetUserID(ctx))
	assert.Empty(t, contextutil.GetRequestID(context.Background()))
}

func TestGetLogger_Fallbacks(t *testing.T) {
	base := zap.NewExample()
	scoped := base.With(zap.String("request_id", "rid-1"))

	assert.Same(t, scoped, contextutil.GetLogger(contextutil.WithLogger(context.Background(), scoped), base))
	assert.Same(t, base, contextutil.GetLogger(context.Background(), base))
	assert.NotNil(t, contextutil.GetLogger(context.Background(), nil))
}
