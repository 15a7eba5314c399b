package kafka_client

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/config"
)

type KafkaConfig struct {
	Broker       string
	GroupID      string
	RequestTopic string
	ResultTopic  string
}

func NewKafkaConfig(settings config.KafkaSettings) KafkaConfig {
	cfg := KafkaConfig{
		Broker:       settings.Broker,
		GroupID:      settings.GroupID,
		RequestTopic: settings.RequestTopic,
		ResultTopic:  settings.ResultTopic,
	}
	if cfg.RequestTopic == "" {
		cfg.RequestTopic = KAFKA_TOPIC_ANALYSIS_REQUESTS
	}
	if cfg.ResultTopic == "" {
		cfg.ResultTopic = KAFKA_TOPIC_ANALYSIS_RESULTS
	}
	return cfg
}

func (c KafkaConfig) consumerConfigMap() *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":  c.Broker,
		"group.id":           c.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
		"isolation.level":    "read_committed",
	}
}

func (c KafkaConfig) producerConfigMap() *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":                     c.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
	}
}
