package ports

import "context"

// SubmissionGuard remembers one-shot form tokens so a form that is posted
// twice is applied once.
type SubmissionGuard interface {
	// FirstUse records token and reports whether it had not been seen yet.
	FirstUse(ctx context.Context, token string) (bool, error)
}
