package messaging

import (
	"crypto/tls"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"analytics-exporter/internal/config"
)

// KafkaProducer is a generic Kafka message producer
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaProducer creates a Kafka producer from the application Kafka settings
func NewKafkaProducer(cfg config.KafkaConfig) (*KafkaProducer, error) {
	log.Printf("[DEBUG] KafkaProducer - initializing with brokers: %v, topic: %s", cfg.Brokers, cfg.Topic)

	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		log.Printf("[DEBUG] KafkaProducer - failed to create producer: %v", err)
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("[DEBUG] KafkaProducer - producer created successfully")
	return NewKafkaProducerWithClient(producer, cfg.Topic), nil
}

// NewKafkaProducerWithClient wraps an existing sarama producer
func NewKafkaProducerWithClient(producer sarama.SyncProducer, topic string) *KafkaProducer {
	return &KafkaProducer{
		producer: producer,
		topic:    topic,
	}
}

// NewSaramaConfig translates the application Kafka settings into a sarama config
func NewSaramaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	sc.Producer.Retry.Max = cfg.Retries
	sc.Producer.Return.Successes = true
	sc.Producer.Timeout = cfg.Timeout
	sc.Producer.Compression = compressionCodec(cfg.CompressionType)

	if cfg.SASL.Enabled {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.Mechanism = sarama.SASLMechanism(strings.ToUpper(cfg.SASL.Mechanism))
		sc.Net.SASL.User = cfg.SASL.Username
		sc.Net.SASL.Password = cfg.SASL.Password
	}

	if cfg.TLS.Enabled {
		sc.Net.TLS.Enable = true
		sc.Net.TLS.Config = &tls.Config{InsecureSkipVerify: cfg.TLS.InsecureSkipVerify}
	}

	return sc
}

func compressionCodec(name string) sarama.CompressionCodec {
	switch strings.ToLower(name) {
	case "gzip":
		return sarama.CompressionGZIP
	case "lz4":
		return sarama.CompressionLZ4
	case "zstd":
		return sarama.CompressionZSTD
	case "none", "":
		return sarama.CompressionNone
	default:
		return sarama.CompressionSnappy
	}
}

// SendMessage sends a message to Kafka with the specified key, value, and headers
func (k *KafkaProducer) SendMessage(key string, value []byte, headers map[string]string) error {
	log.Printf("[DEBUG] KafkaProducer - sending message with key: %s", key)

	kafkaHeaders := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, sarama.RecordHeader{
			Key:   []byte(k),
			Value: []byte(v),
		})
	}

	kafkaMessage := &sarama.ProducerMessage{
		Topic:     k.topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Headers:   kafkaHeaders,
		Timestamp: time.Now(),
	}

	partition, offset, err := k.producer.SendMessage(kafkaMessage)
	if err != nil {
		log.Printf("[DEBUG] KafkaProducer - failed to send message: %v", err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	log.Printf("[DEBUG] KafkaProducer - message sent successfully to partition %d at offset %d", partition, offset)
	return nil
}

// SendNotificationMessage publishes n keyed by its job ID
func (k *KafkaProducer) SendNotificationMessage(n *NotificationMessage) error {
	payload, err := n.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	headers := map[string]string{
		"event-type": n.EventType,
		"org-id":     n.OrgID,
		"version":    n.Version,
	}
	return k.SendMessage(n.JobID(), payload, headers)
}

// Close closes the Kafka producer
func (k *KafkaProducer) Close() error {
	log.Printf("[DEBUG] KafkaProducer - closing producer")
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}
