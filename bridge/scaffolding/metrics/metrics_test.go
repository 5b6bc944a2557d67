package metrics_test

import (
	"context"
	"expvar"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jrazmi/smarttasks/bridge/scaffolding/metrics"
)

func TestCountersNeedContext(t *testing.T) {
	assert.Zero(t, metrics.AddRequests(context.Background()))
}

func TestCounters(t *testing.T) {
	ctx := metrics.Set(context.Background())

	before := metrics.AddRequests(ctx)
	assert.Equal(t, before+1, metrics.AddRequests(ctx))

	errsBefore := metrics.AddErrors(ctx)
	assert.Equal(t, errsBefore+1, metrics.AddErrors(ctx))

	assert.Positive(t, metrics.AddGoroutines(ctx))
	assert.NotNil(t, expvar.Get("panics"))
	assert.NotNil(t, expvar.Get("suggestions"))

	metrics.AddResponse(ctx, 404)
	responses, ok := expvar.Get("responses").(*expvar.Map)
	if assert.True(t, ok) {
		assert.NotNil(t, responses.Get("4xx"))
	}
}
