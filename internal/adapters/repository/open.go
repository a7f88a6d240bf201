package repository

import "context"

// New returns the Store for driver. The memory driver ignores dsn.
func New(ctx context.Context, driver Driver, dsn string, opts ...Option) (Store, error) {
	if driver == DriverMemory {
		return NewMemoryStore(), nil
	}
	return Open(ctx, driver, dsn, opts...)
}
