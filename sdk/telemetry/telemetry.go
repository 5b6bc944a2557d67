// Package telemetry carries per-request trace identifiers through contexts.
package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type telKey int

const traceIDKey telKey = iota + 1

// NoTrace is reported when a context carries no trace id.
const NoTrace = "00000000-0000-0000-0000-000000000000"

type Telemetry struct{}

func NewTelemetry() Telemetry {
	return Telemetry{}
}

// SetTraceID stores a fresh trace id on the context.
func (t Telemetry) SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, traceIDKey, uuid.NewString())
}

func (t Telemetry) GetTraceID(ctx context.Context) string {
	return GetTraceID(ctx)
}

// GetTraceID reads the trace id without a Telemetry value.
func GetTraceID(ctx context.Context) string {
	v, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return NoTrace
	}
	return v
}
