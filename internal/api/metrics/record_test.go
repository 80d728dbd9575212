package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/orderflow/orderflow/internal/core/domain"
)

func TestReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{domain.ErrOrderNotFound, "not_found"},
		{fmt.Errorf("get: %w", domain.ErrForbidden), "forbidden"},
		{domain.ErrInvalidTransition, "invalid"},
		{fmt.Errorf("create: %w: x", domain.ErrPersistence), "persistence"},
		{fmt.Errorf("boom"), "internal"},
	}
	for _, tc := range cases {
		if got := Reason(tc.err); got != tc.want {
			t.Fatalf("Reason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestRecordSignIn(t *testing.T) {
	before := testutil.ToFloat64(SignInTotal.WithLabelValues("failure"))
	RecordSignIn(false)
	if got := testutil.ToFloat64(SignInTotal.WithLabelValues("failure")); got != before+1 {
		t.Fatalf("expected failure counter to grow by one, got %v -> %v", before, got)
	}
}
