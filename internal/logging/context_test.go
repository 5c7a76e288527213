package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestContextFields(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))

	ctx := WithCommand(context.Background(), "update")
	ctx = WithOperationID(ctx, "op-9")
	ctx = WithProjectID(ctx, "p1")

	tl := NewTestLogger()
	tl.Info(ctx, "done")
	tl.AssertLogged(t, zapcore.InfoLevel, "done")
	tl.AssertField(t, "done", "command", "update")
	tl.AssertField(t, "done", "project.id", "p1")
	tl.AssertOperation(t, "done")
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	FromContext(ctx).Warn(ctx, "via context")
	tl.AssertLogged(t, zapcore.WarnLevel, "via context")
	tl.AssertNoCredentials(t)
}
