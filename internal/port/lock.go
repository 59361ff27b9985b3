package port

import (
	"context"
	"time"
)

// Lock is an owned handle for one acquisition. Release is idempotent and only
// ever deletes the lock when the stored token still matches this acquisition,
// so an expired lock re-acquired by another caller is never released here.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker provides distributed mutual exclusion with set-if-absent semantics
// and a caller-chosen expiry as a safety net against crash-without-release.
type Locker interface {
	// AcquireLock returns (nil, nil) when the resource is already held:
	// not obtaining the lock is a retryable condition, not a fault.
	AcquireLock(ctx context.Context, resource string, expiry time.Duration) (Lock, error)
	// TryAcquireLock reports whether the resource could be locked, without
	// returning a handle.
	TryAcquireLock(ctx context.Context, resource string, expiry time.Duration) (bool, error)
}
