package net_test

import (
	"context"
	"testing"

	pnet "feedbackhub/internal/platform/net"
)

func TestWithRequest_And_Getters(t *testing.T) {
	base := context.Background()

	t.Run("sets both ids", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "req-123", "proj-abc")

		if got := pnet.RequestID(ctx); got != "req-123" {
			t.Fatalf("RequestID got %q want %q", got, "req-123")
		}
		if got := pnet.ProjectID(ctx); got != "proj-abc" {
			t.Fatalf("ProjectID got %q want %q", got, "proj-abc")
		}
	})

	t.Run("sets only request id", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "r-only", "")

		if got := pnet.RequestID(ctx); got != "r-only" {
			t.Fatalf("RequestID got %q want %q", got, "r-only")
		}
		if got := pnet.ProjectID(ctx); got != "" {
			t.Fatalf("ProjectID got %q want empty", got)
		}
	})

	t.Run("sets only project id", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "", "p-only")

		if got := pnet.RequestID(ctx); got != "" {
			t.Fatalf("RequestID got %q want empty", got)
		}
		if got := pnet.ProjectID(ctx); got != "p-only" {
			t.Fatalf("ProjectID got %q want %q", got, "p-only")
		}
	})

	t.Run("no ids returns same ctx and empty getters", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "", "")

		if ctx != base {
			t.Fatalf("expected ctx to be unchanged when both ids empty")
		}
		if got := pnet.RequestID(ctx); got != "" {
			t.Fatalf("RequestID got %q want empty", got)
		}
		if got := pnet.ProjectID(ctx); got != "" {
			t.Fatalf("ProjectID got %q want empty", got)
		}
	})
}
