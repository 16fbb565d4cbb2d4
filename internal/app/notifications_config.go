package app

import (
	"strings"

	"github.com/charlesng35/pitchbase/internal/notifications"
	"github.com/charlesng35/pitchbase/pkg/mail"
)

// SMTPSettings converts EmailConfig to the mail package representation.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.From,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// KafkaConfig converts the analytics settings into the notifications package representation.
func (c AnalyticsConfig) KafkaConfig() notifications.KafkaConfig {
	brokers := make([]string, 0, len(c.Kafka.Brokers))
	for _, broker := range c.Kafka.Brokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return notifications.KafkaConfig{
		Brokers: brokers,
		Topic:   strings.TrimSpace(c.Kafka.Topic),
	}
}
