package clients

import "time"

const (
	VALKEY_RETRIES     = 3
	VALKEY_RETRY_DELAY = 250 * time.Millisecond

	// VALKEY_PROCESSED_KEY is the set of request ids that already produced a
	// result or failure message.
	VALKEY_PROCESSED_KEY     = "sentiment:processed_requests"
	VALKEY_PROCESSED_TTL     = 24 * time.Hour
	VALKEY_RESULT_KEY_PREFIX = "sentiment:analysis:"
)
