package traces

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), "", zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "pipeline.tick", Stage("persist"), RiskScore(0.42))
	defer span.End()

	assert.NotNil(t, ctx)
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
}
