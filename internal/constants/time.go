package constants

import "time"

// ScopedTokenTTL is the lifetime requested for user-scoped hub tokens.
// Tokens are revoked right after the wrapped operation, the TTL is only a
// backstop against leaked tokens.
const ScopedTokenTTL = 5 * time.Minute

// ReconcilePollInterval is the delay between state polls while driving a
// desired app to its remote state (delete, create and stop phases).
const ReconcilePollInterval = 1 * time.Second

// ReadinessPollInterval is the delay between polls of the service status
// endpoint before reconciliation starts.
const ReadinessPollInterval = 500 * time.Millisecond

// ReadinessTimeout bounds the readiness gate. Reconciliation proceeds
// regardless once it elapses.
const ReadinessTimeout = 15 * time.Second

// DefaultContextTimeout is the default timeout for context operations.
const DefaultContextTimeout = 10 * time.Second

// TestContextTimeout is the timeout for test contexts.
const TestContextTimeout = 5 * time.Second
