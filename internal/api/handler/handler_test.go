package handler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ats-go/internal/ai"
	"ats-go/internal/parser"
	"ats-go/internal/processor"
	"ats-go/internal/service"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("job %w", service.ErrNotFound), consts.StatusNotFound},
		{"ai unavailable", ai.ErrAIServiceUnavailable, consts.StatusServiceUnavailable},
		{"extraction", &parser.ExtractionError{Filename: "a.pdf", Cause: parser.ErrNoExtractableText}, consts.StatusBadRequest},
		{"unsupported", parser.ErrUnsupportedFileType, consts.StatusBadRequest},
		{"missing email", processor.ErrMissingEmail, consts.StatusBadRequest},
		{"invalid input", fmt.Errorf("%w: bad", service.ErrInvalidInput), consts.StatusBadRequest},
		{"transaction", processor.NewTransactionError("a.pdf", errors.New("locked")), consts.StatusInternalServerError},
		{"unknown", errors.New("boom"), consts.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestWriteError_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")
	h := New(Deps{})

	ctx, span := tracer.Start(context.Background(), "GET /api/v1/jobs/:job_id")
	c := app.NewContext(0)
	h.writeError(ctx, c, fmt.Errorf("job %w", service.ErrNotFound))
	span.End()

	assert.Equal(t, consts.StatusNotFound, c.Response.StatusCode())
	assert.JSONEq(t, `{"detail":"job not found"}`, string(c.Response.Body()))

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "404", attrs["http.status_code"])
	assert.Equal(t, "client_error", attrs["error.category"])
	assert.Equal(t, "http", attrs["error.type"])
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	h := New(Deps{})
	c := app.NewContext(0)
	h.writeError(context.Background(), c, errors.New("dial tcp 10.0.0.1:3306: refused"))

	assert.Equal(t, consts.StatusInternalServerError, c.Response.StatusCode())
	assert.JSONEq(t, `{"detail":"internal server error"}`, string(c.Response.Body()))
}
