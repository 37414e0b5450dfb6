package kafka

import (
	"fmt"

	"github.com/Shopify/sarama"
)

type Message struct {
	Key   string
	Value []byte
}

type IProducer interface {
	Push(messages []Message) error
	Close() error
}

type producer struct {
	host  string
	topic string
	conn  sarama.SyncProducer
}

func NewProducer(host string, topic string) (IProducer, error) {
	saramaConf := sarama.NewConfig()
	saramaConf.Producer.Return.Successes = true
	saramaConf.Producer.Return.Errors = true
	saramaConf.Producer.RequiredAcks = sarama.WaitForAll

	client, err := sarama.NewClient([]string{host}, saramaConf)
	if err != nil {
		return nil, fmt.Errorf("kafka client %s: %w", host, err)
	}

	conn, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return NewProducerFromSync(conn, host, topic), nil
}

// NewProducerFromSync wraps an existing sarama producer.
func NewProducerFromSync(conn sarama.SyncProducer, host string, topic string) IProducer {
	return &producer{
		conn:  conn,
		host:  host,
		topic: topic,
	}
}

func (p producer) Push(messages []Message) error {
	if len(messages) == 0 {
		return nil
	}
	return p.conn.SendMessages(toKafkaMessages(messages, p.topic))
}

func (p producer) Close() error {
	return p.conn.Close()
}

func toKafkaMessages(messages []Message, topic string) []*sarama.ProducerMessage {
	var res []*sarama.ProducerMessage
	for _, message := range messages {
		msg := &sarama.ProducerMessage{
			Topic: topic,
			Value: sarama.ByteEncoder(message.Value),
		}
		if message.Key != "" {
			msg.Key = sarama.StringEncoder(message.Key)
		}
		res = append(res, msg)
	}
	return res
}
