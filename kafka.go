package dotxch

import (
	"context"
	"errors"
	"github.com/segmentio/kafka-go"
	"strings"
	"time"
)

const eventWriteTimeout = 10 * time.Second

// EventWriter publishes one serialized event. Events sharing a key keep their order.
type EventWriter interface {
	Write(key string, body []byte) error
	Close()
}

// KWriter publishes domain events keyed by domain name, so every event
// of one name lands on the same partition.
type KWriter struct {
	w *kafka.Writer
}

// NewKWriter brokers is a comma separated host:port list.
func NewKWriter(topic, brokers string) (*KWriter, error) {
	addrs := make([]string, 0)
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	if len(addrs) == 0 {
		return nil, errors.New("kafka brokers can not be empty")
	}
	return &KWriter{w: &kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: eventWriteTimeout,
	}}, nil
}

func (kw *KWriter) Write(key string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), eventWriteTimeout)
	defer cancel()
	return kw.w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: body})
}

func (kw *KWriter) Close() {
	if err := kw.w.Close(); err != nil {
		log.Warn("kafka writer close", "err", err)
	}
}
