package otelx

import (
	"context"
	"errors"
	"testing"
)

func TestInitNoEndpoint(t *testing.T) {
	tp, shutdown, err := Init(context.Background(), "")
	if err != nil {
		t.Fatalf("Init(\"\") returned error: %v", err)
	}
	defer shutdown(context.Background())

	tracer := NewTracer(tp)
	ran := false
	if err := tracer.Span(context.Background(), "test", func(context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("Span returned error: %v", err)
	}
	if !ran {
		t.Fatal("Span did not run fn")
	}
}

func TestZeroTracerSpan(t *testing.T) {
	var tracer Tracer
	ran := false
	err := tracer.Span(context.Background(), "test", func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("Span returned error: %v", err)
	}
	if !ran {
		t.Fatal("Span did not run fn on the zero Tracer")
	}
}

func TestSpanPropagatesError(t *testing.T) {
	tp, shutdown, err := Init(context.Background(), "")
	if err != nil {
		t.Fatalf("Init(\"\") returned error: %v", err)
	}
	defer shutdown(context.Background())

	tracer := NewTracer(tp)
	wantErr := errors.New("boom")
	err = tracer.Span(context.Background(), "test", func(context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Span error = %v, want %v", err, wantErr)
	}
}
