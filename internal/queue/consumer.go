package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/splitlease/message-curation/internal/model"
	"github.com/splitlease/message-curation/internal/repository"
)

// StartAuditConsumer connects to RabbitMQ, declares the audit.recorded
// queue (durable), and starts consuming events. Each event is written to
// the audit_logs table (INSERT IGNORE on event_id, so redeliveries are
// harmless) and appended to logs/audit.log in a single-line format. The
// function runs a reconnect loop and keeps running through broker outages,
// rejecting malformed messages so the server continues operating.
func StartAuditConsumer(audits *repository.AuditRepo) error {
	url := BrokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("audit-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, audits); err != nil {
			log.Printf("audit-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, audits *repository.AuditRepo) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("audit-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(auditQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(auditQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleEvent(d.Body, audits); err != nil {
			log.Printf("audit-consumer: handle event failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleEvent(body []byte, audits *repository.AuditRepo) error {
	var ev AuditRecordedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.EventID == "" {
		return errors.New("event missing event_id")
	}

	recordedAt, err := time.Parse(time.RFC3339, ev.RecordedAt)
	if err != nil {
		recordedAt = time.Now().UTC()
	}
	rec := model.AuditLog{
		EventID:    ev.EventID,
		UserID:     ev.UserID,
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		Metadata:   ev.Metadata,
		CreatedAt:  recordedAt,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := audits.Insert(ctx, rec); err != nil {
		return fmt.Errorf("insert audit row: %w", err)
	}

	if err := appendLogLine(ev); err != nil {
		return fmt.Errorf("append log line: %w", err)
	}
	return nil
}

func appendLogLine(ev AuditRecordedEvent) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "audit.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLogLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatLogLine renders one event as a single log line with metadata keys
// in stable order.
func formatLogLine(ev AuditRecordedEvent) string {
	meta := "{}"
	if len(ev.Metadata) > 0 {
		keys := make([]string, 0, len(ev.Metadata))
		for k := range ev.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%q", k, ev.Metadata[k]))
		}
		meta = "{" + strings.Join(pairs, " ") + "}"
	}
	return fmt.Sprintf("[%s] %s | event_id=%s | user_id=%d | entity=%s/%d | metadata=%s\n",
		ev.RecordedAt, ev.Action, ev.EventID, ev.UserID, ev.EntityType, ev.EntityID, meta)
}
