// Package events publishes confirmed swaps to kafka for downstream
// consumers (analytics, alerting). Publishing is fire-and-forget: a
// broker outage never fails a confirmation.
package events

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"
	"github.com/tekrabyte/tekraswap/config"
	"github.com/tekrabyte/tekraswap/core/model"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

var producerClient *kafka.Producer
var once sync.Once

func getProducerInst() *kafka.Producer {
	once.Do(func() {
		cfg := config.GetKafkaConfig()

		var kafkaconf = &kafka.ConfigMap{
			"api.version.request": "true",
			"message.max.bytes":   1000000,
			"linger.ms":           10,
			"retries":             30,
			"retry.backoff.ms":    1000,
			"acks":                "1"}
		kafkaconf.SetKey("bootstrap.servers", cfg.Host)

		switch cfg.Protocol {
		case "plaintext":
			kafkaconf.SetKey("security.protocol", "plaintext")
		case "sasl_ssl":
			kafkaconf.SetKey("security.protocol", "sasl_ssl")
			kafkaconf.SetKey("sasl.username", cfg.Username)
			kafkaconf.SetKey("sasl.password", cfg.Password)
			kafkaconf.SetKey("sasl.mechanism", "PLAIN")
			kafkaconf.SetKey("enable.ssl.certificate.verification", "false")
			kafkaconf.SetKey("ssl.endpoint.identification.algorithm", "None")
			kafkaconf.SetKey("ssl.ca.location", cfg.CAPath)
		case "sasl_plaintext":
			kafkaconf.SetKey("sasl.mechanism", "PLAIN")
			kafkaconf.SetKey("security.protocol", "sasl_plaintext")
			kafkaconf.SetKey("sasl.username", cfg.Username)
			kafkaconf.SetKey("sasl.password", cfg.Password)
		default:
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": "unknown protocol" + cfg.Protocol}).Error("unknown kafka protocol")
			os.Exit(1)
		}

		client, err := kafka.NewProducer(kafkaconf)
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("connect kafka failed")
			os.Exit(1)
		}

		go func(p *kafka.Producer) {
			for e := range p.Events() {
				switch ev := e.(type) {
				case *kafka.Message:
					if ev.TopicPartition.Error != nil {
						logger.Logrus.WithFields(logrus.Fields{"Data": ev.TopicPartition}).Error("Delivery message failed")
					}
				}
			}
		}(client)

		producerClient = client
	})
	return producerClient
}

// KafkaPublisher emits confirmed swap records to the configured topic.
type KafkaPublisher struct {
	topic    string
	producer *kafka.Producer
}

// NewKafkaPublisher returns nil when no broker host is configured, which
// disables event publishing altogether.
func NewKafkaPublisher() *KafkaPublisher {
	cfg := config.GetKafkaConfig()
	if cfg.Host == "" {
		logger.Logrus.Info("kafka host not configured, swap events disabled")
		return nil
	}

	return &KafkaPublisher{
		topic:    cfg.SwapTopic,
		producer: getProducerInst(),
	}
}

func (p *KafkaPublisher) PublishSwapConfirmed(rec *model.SwapRecord) {
	bt, err := json.Marshal(rec)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"TransactionID": rec.ID, "ErrMsg": err}).Error("PublishSwapConfirmed marshal failed")
		return
	}

	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(rec.UserPublicKey),
		Value:          bt,
	}, nil)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"TransactionID": rec.ID, "ErrMsg": err}).Error("PublishSwapConfirmed produce failed")
	}
}

// Close flushes pending deliveries on shutdown.
func (p *KafkaPublisher) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
