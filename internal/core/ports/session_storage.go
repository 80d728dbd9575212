package ports

import "context"

// SessionStorage is a key-value surface scoped to a single browser.
// Get reports found=false when the key is not set.
type SessionStorage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SessionStorageFactory returns the storage of one browser scope.
type SessionStorageFactory interface {
	Scope(browserID string) SessionStorage
}
