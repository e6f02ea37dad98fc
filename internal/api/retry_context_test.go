package api

import (
	"context"
	"testing"
)

func TestRetryCountersRoundTrip(t *testing.T) {
	rc := &RetryCounters{}
	ctx := WithRetryCounters(context.Background(), rc)
	if got := getRetryCounters(ctx); got != rc {
		t.Fatal("expected the attached counters")
	}
	if getRetryCounters(context.Background()) != nil {
		t.Fatal("expected nil without counters")
	}
	wrong := context.WithValue(context.Background(), retryCtxKey{}, "nope")
	if getRetryCounters(wrong) != nil {
		t.Fatal("expected nil for a foreign value")
	}
}

func TestRetryCountersNestedOverride(t *testing.T) {
	outer := &RetryCounters{Total: 1}
	inner := &RetryCounters{Total: 2}
	ctx1 := WithRetryCounters(context.Background(), outer)
	ctx2 := WithRetryCounters(ctx1, inner)

	if getRetryCounters(ctx2) != inner {
		t.Error("nested context should carry the inner counters")
	}
	if getRetryCounters(ctx1) != outer {
		t.Error("parent context should keep the outer counters")
	}
}
