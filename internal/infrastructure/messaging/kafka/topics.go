package kafka

import (
	"context"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// TopicConfig describes a topic to create.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
}

// ConnInterface abstracts the controller connection for testing.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates topics on the cluster controller.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

func NewTopicManager(ctx context.Context, brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to dial kafka")
	}
	controller, err := conn.Controller()
	_ = conn.Close()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to find kafka controller")
	}
	ctrl, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to dial kafka controller")
	}
	return &TopicManager{conn: ctrl, logger: logger}, nil
}

func (m *TopicManager) TopicExists(_ context.Context, name string) (bool, error) {
	parts, err := m.conn.ReadPartitions(name)
	if err != nil {
		// Unknown topics surface as an error from the metadata request.
		return false, nil
	}
	return len(parts) > 0, nil
}

// EnsureTopics creates the topics that do not exist yet.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics ...TopicConfig) error {
	for _, t := range topics {
		exists, err := m.TopicExists(ctx, t.Name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if t.NumPartitions <= 0 {
			t.NumPartitions = 3
		}
		if t.ReplicationFactor <= 0 {
			t.ReplicationFactor = 1
		}
		if err := m.conn.CreateTopics(kafka.TopicConfig{
			Topic:             t.Name,
			NumPartitions:     t.NumPartitions,
			ReplicationFactor: t.ReplicationFactor,
		}); err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create topic").WithDetail(t.Name)
		}
		m.logger.Info("kafka topic created", logging.String("topic", t.Name), logging.Int("partitions", t.NumPartitions))
	}
	return nil
}

func (m *TopicManager) Close() error {
	return m.conn.Close()
}

// DefaultTopics lists the topics claimtrack writes to.
func DefaultTopics(dashboardTopic string) []TopicConfig {
	if dashboardTopic == "" {
		dashboardTopic = TopicDashboardViewed
	}
	return []TopicConfig{{Name: dashboardTopic, NumPartitions: 6, ReplicationFactor: 1}}
}

// RecordSyncTopics lists the topics the sync worker reads and dead-letters to.
func RecordSyncTopics(recordsTopic, deadLetterTopic string) []TopicConfig {
	if recordsTopic == "" {
		recordsTopic = TopicClaimRecordUpdated
	}
	if deadLetterTopic == "" {
		deadLetterTopic = TopicClaimRecordDeadLetter
	}
	return []TopicConfig{
		{Name: recordsTopic, NumPartitions: 6, ReplicationFactor: 1},
		{Name: deadLetterTopic, NumPartitions: 1, ReplicationFactor: 1},
	}
}
