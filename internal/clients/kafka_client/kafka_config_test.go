package kafka_client

import (
	"testing"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/config"
	"github.com/stretchr/testify/assert"
)

func TestNewKafkaConfigDefaultsTopics(t *testing.T) {
	cfg := NewKafkaConfig(config.KafkaSettings{Broker: "kafka:9092", GroupID: "g"})

	assert.Equal(t, KAFKA_TOPIC_ANALYSIS_REQUESTS, cfg.RequestTopic)
	assert.Equal(t, KAFKA_TOPIC_ANALYSIS_RESULTS, cfg.ResultTopic)
	assert.Equal(t, "kafka:9092", (*cfg.consumerConfigMap())["bootstrap.servers"])
	assert.Equal(t, false, (*cfg.consumerConfigMap())["enable.auto.commit"])
	assert.Equal(t, true, (*cfg.producerConfigMap())["enable.idempotence"])
}

func TestNewKafkaConfigKeepsExplicitTopics(t *testing.T) {
	cfg := NewKafkaConfig(config.KafkaSettings{RequestTopic: "in", ResultTopic: "out"})

	assert.Equal(t, "in", cfg.RequestTopic)
	assert.Equal(t, "out", cfg.ResultTopic)
}
