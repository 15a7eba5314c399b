package kafka_client

import "time"

const (
	KAFKA_TOPIC_ANALYSIS_REQUESTS = "analysis-requests" // batches of records to analyze
	KAFKA_TOPIC_ANALYSIS_RESULTS  = "analysis-results"  // one result or failure per request
)

const (
	MAX_RETRIES     = 5
	RETRY_DELAY     = 2 * time.Second
	PUBLISH_RETRIES = 3
	FLUSH_TIMEOUT   = 5 * time.Second
)
