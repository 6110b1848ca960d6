package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/couchcryptid/metar-signage/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces one report event per run to a Kafka topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes ev and writes it keyed by station, so reports for one
// station stay ordered on one partition.
func (p *Publisher) Publish(ctx context.Context, ev domain.ReportEvent) error {
	out, err := domain.SerializeReportEvent(ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, toMessage(out)); err != nil {
		return fmt.Errorf("publish report event: %w", err)
	}
	p.logger.Debug("report event published", "topic", p.writer.Topic, "station", ev.Station)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// toMessage maps an OutputEvent onto a Kafka message. Headers are sorted by
// key so the wire order is stable.
func toMessage(out domain.OutputEvent) kafkago.Message {
	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(out.Headers[k])})
	}
	return kafkago.Message{
		Key:     out.Key,
		Value:   out.Value,
		Headers: headers,
	}
}
