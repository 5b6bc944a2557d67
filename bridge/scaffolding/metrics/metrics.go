// Package metrics constructs the request metrics the server publishes at
// /debug/vars.
package metrics

import (
	"context"
	"expvar"
	"runtime"
	"strconv"
	"sync"
)

// This holds the single instance of the metrics value needed for collecting
// metrics. The expvar package is already based on a singleton for the
// different metrics that are registered with the package so there isn't much
// choice here.
var (
	m    *metricsData
	once sync.Once
)

type metricsData struct {
	goroutines  *expvar.Int
	requests    *expvar.Int
	errors      *expvar.Int
	panics      *expvar.Int
	suggestions *expvar.Int
	responses   *expvar.Map
}

func initMetrics() {
	once.Do(func() {
		m = &metricsData{
			goroutines:  expvar.NewInt("goroutines"),
			requests:    expvar.NewInt("requests"),
			errors:      expvar.NewInt("errors"),
			panics:      expvar.NewInt("panics"),
			suggestions: expvar.NewInt("suggestions"),
			responses:   expvar.NewMap("responses"),
		}
	})
}

type ctxKey int

const key ctxKey = 1

// Set sets the metrics data into the context.
func Set(ctx context.Context) context.Context {
	initMetrics()
	return context.WithValue(ctx, key, m)
}

func get(ctx context.Context) *metricsData {
	v, ok := ctx.Value(key).(*metricsData)
	if !ok {
		return nil
	}
	return v
}

// AddGoroutines refreshes the goroutine metric.
func AddGoroutines(ctx context.Context) int64 {
	if v := get(ctx); v != nil {
		g := int64(runtime.NumGoroutine())
		v.goroutines.Set(g)
		return g
	}
	return 0
}

// AddRequests increments the request metric by 1.
func AddRequests(ctx context.Context) int64 {
	if v := get(ctx); v != nil {
		v.requests.Add(1)
		return v.requests.Value()
	}
	return 0
}

// AddErrors increments the errors metric by 1.
func AddErrors(ctx context.Context) int64 {
	if v := get(ctx); v != nil {
		v.errors.Add(1)
		return v.errors.Value()
	}
	return 0
}

// AddPanics increments the panics metric by 1.
func AddPanics(ctx context.Context) int64 {
	if v := get(ctx); v != nil {
		v.panics.Add(1)
		return v.panics.Value()
	}
	return 0
}

// AddSuggestions counts suggestion requests handled by the proxy endpoint.
func AddSuggestions(ctx context.Context) int64 {
	if v := get(ctx); v != nil {
		v.suggestions.Add(1)
		return v.suggestions.Value()
	}
	return 0
}

// AddResponse counts a response under its status class, "2xx" through "5xx".
func AddResponse(ctx context.Context, status int) {
	if v := get(ctx); v != nil {
		v.responses.Add(strconv.Itoa(status/100)+"xx", 1)
	}
}
