package service

// MetricsRecorder records operational counters for the access-control
// core. Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	// RecordRedemption counts one redemption attempt by outcome
	// (ok, not_found_or_consumed, partial, invalid, unauthenticated, error).
	RecordRedemption(outcome string)

	// SetActiveSessions reports the number of live session observers.
	SetActiveSessions(n int)
}
