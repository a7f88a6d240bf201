package drill

import "errors"

// Sentinel kinds for drill failures.
var (
	ErrUnhealthy    = errors.New("trainer unhealthy")
	ErrStatus       = errors.New("unexpected status")
	ErrUnavailable  = errors.New("question unavailable")
	ErrVerification = errors.New("ledger verification failed")
	ErrConfig       = errors.New("invalid drill config")
)
