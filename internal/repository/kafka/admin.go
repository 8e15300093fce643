package kafka

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type TopicSpec struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	MaxWait           time.Duration
}

// EnsureTopic creates the feed topic if it does not exist yet and waits until
// partitions are visible. Failure is logged, not fatal: the writer is
// configured with AllowAutoTopicCreation as a fallback.
func EnsureTopic(ctx context.Context, brokers []string, spec TopicSpec, log *zap.Logger) error {
	if spec.NumPartitions <= 0 {
		spec.NumPartitions = 1
	}
	if spec.ReplicationFactor <= 0 {
		spec.ReplicationFactor = 1
	}
	if spec.MaxWait <= 0 {
		spec.MaxWait = 5 * time.Second
	}

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		log.Warn("kafka dial failed", zap.Error(err))
		return err
	}
	defer conn.Close()

	ctrl, err := conn.Controller()
	if err != nil {
		log.Warn("kafka controller lookup failed", zap.Error(err))
		return err
	}
	cc, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port)))
	if err != nil {
		log.Warn("kafka controller dial failed", zap.Error(err))
		return err
	}
	defer cc.Close()

	if err := cc.CreateTopics(kafka.TopicConfig{
		Topic:             spec.Name,
		NumPartitions:     spec.NumPartitions,
		ReplicationFactor: spec.ReplicationFactor,
	}); err != nil {
		log.Debug("create topic (may already exist)", zap.String("topic", spec.Name), zap.Error(err))
	}

	deadline := time.Now().Add(spec.MaxWait)
	for time.Now().Before(deadline) {
		if ps, err := conn.ReadPartitions(spec.Name); err == nil && len(ps) > 0 {
			log.Info("topic ready", zap.String("topic", spec.Name))
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	log.Warn("topic not confirmed ready in time", zap.String("topic", spec.Name))
	return nil
}
