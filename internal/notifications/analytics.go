package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/charlesng35/pitchbase/internal/models"
	"github.com/charlesng35/pitchbase/pkg/logger"
)

// Analytics event names.
const (
	EventProfileDeleted      = "profile_deleted"
	EventOrganizationCreated = "organization_created"
)

// Analytics records product analytics. Delivery is best-effort.
type Analytics interface {
	Identify(ctx context.Context, profile models.Profile) error
	Track(ctx context.Context, event string, properties map[string]any) error
}

// AnalyticsEvent is the wire form published for identify and track calls.
type AnalyticsEvent struct {
	Type       string         `json:"type"`
	Event      string         `json:"event,omitempty"`
	UserID     string         `json:"user_id,omitempty"`
	Traits     map[string]any `json:"traits,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

func identifyEvent(profile models.Profile, now time.Time) AnalyticsEvent {
	traits := map[string]any{
		"email":      profile.Email,
		"created_at": profile.CreatedAt,
	}
	if profile.Name != nil {
		traits["name"] = *profile.Name
	}
	if profile.AvatarURL != nil {
		traits["avatar_url"] = *profile.AvatarURL
	}
	return AnalyticsEvent{Type: "identify", UserID: profile.ID, Traits: traits, Timestamp: now}
}

// LogAnalytics writes analytics calls to the structured log. It is used when no broker is configured.
type LogAnalytics struct {
	log *zap.Logger
}

// NewLogAnalytics constructs a LogAnalytics.
func NewLogAnalytics() *LogAnalytics {
	return &LogAnalytics{log: logger.WithModule("analytics")}
}

// Identify implements Analytics.
func (a *LogAnalytics) Identify(_ context.Context, profile models.Profile) error {
	a.log.Info("identify", zap.String("profile_id", profile.ID), zap.String("email", profile.Email))
	return nil
}

// Track implements Analytics.
func (a *LogAnalytics) Track(_ context.Context, event string, properties map[string]any) error {
	a.log.Info("track", zap.String("event", event), zap.Any("properties", properties))
	return nil
}

// KafkaConfig configures the analytics producer.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAnalytics publishes analytics events as JSON to a Kafka topic keyed by profile id.
type KafkaAnalytics struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaAnalytics builds a synchronous producer for cfg.Topic.
func NewKafkaAnalytics(cfg KafkaConfig) (*KafkaAnalytics, error) {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, broker := range cfg.Brokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	if len(brokers) == 0 {
		return nil, errors.New("kafka analytics: at least one broker is required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("kafka analytics: topic is required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newKafkaAnalytics(writer), nil
}

func newKafkaAnalytics(writer messageWriter) *KafkaAnalytics {
	return &KafkaAnalytics{
		writer: writer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Identify implements Analytics.
func (a *KafkaAnalytics) Identify(ctx context.Context, profile models.Profile) error {
	return a.publish(ctx, profile.ID, identifyEvent(profile, a.now()))
}

// Track implements Analytics.
func (a *KafkaAnalytics) Track(ctx context.Context, event string, properties map[string]any) error {
	key := ""
	if id, ok := properties["profile_id"].(string); ok {
		key = id
	}
	return a.publish(ctx, key, AnalyticsEvent{
		Type:       "track",
		Event:      event,
		UserID:     key,
		Properties: properties,
		Timestamp:  a.now(),
	})
}

func (a *KafkaAnalytics) publish(ctx context.Context, key string, event AnalyticsEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka analytics: encode %s: %w", event.Type, err)
	}
	if err := a.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		return fmt.Errorf("kafka analytics: publish %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (a *KafkaAnalytics) Close() error {
	if a == nil || a.writer == nil {
		return nil
	}
	return a.writer.Close()
}
