package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var errMissing = errors.New("record not found")

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := Tracer
	Tracer = tp.Tracer("test")
	t.Cleanup(func() {
		Tracer = prev
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func spanAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRepositorySpan_Statuses(t *testing.T) {
	isMissing := func(err error) bool { return errors.Is(err, errMissing) }

	tests := []struct {
		name    string
		err     error
		want    codes.Code
		outcome bool
	}{
		{"success", nil, codes.Unset, false},
		{"expected miss", errMissing, codes.Unset, true},
		{"failure", errors.New("connection reset"), codes.Error, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recordSpans(t)

			_, span := StartRepositorySpan(context.Background(), "get_by_id", "posts")
			EndSpan(span, tt.err, isMissing)

			ended := rec.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, "posts.get_by_id", ended[0].Name())
			assert.Equal(t, tt.want, ended[0].Status().Code)

			table, ok := spanAttr(ended[0].Attributes(), "db.sql.table")
			require.True(t, ok)
			assert.Equal(t, "posts", table.AsString())

			_, hasOutcome := spanAttr(ended[0].Attributes(), "db.outcome")
			assert.Equal(t, tt.outcome, hasOutcome)
		})
	}
}

func TestEndSpan_NilPredicateTreatsEveryErrorAsFailure(t *testing.T) {
	rec := recordSpans(t)

	_, span := StartRepositorySpan(context.Background(), "create", "likes")
	EndSpan(span, errMissing, nil)

	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, codes.Error, rec.Ended()[0].Status().Code)
}

func TestInitTracing_Disabled(t *testing.T) {
	prev := Tracer
	t.Cleanup(func() { Tracer = prev })

	shutdown, err := InitTracing(context.Background(), TracingConfig{ServiceName: "pulse-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{
		ServiceName: "pulse-test",
		Enabled:     true,
		Exporter:    "zipkin",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported tracing exporter "zipkin"`)
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(0).Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler(1.5).Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
