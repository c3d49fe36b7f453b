// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
)

// MessageWriter is the part of *kafka.Writer the publisher uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher sends a ballot-cast notice for every committed ballot.
// Messages carry a salted hash of the voter ID and the cast time, never
// the choices.
type KafkaPublisher struct {
	writer MessageWriter
	salt   string
}

/*
NewKafkaPublisher configures the writer for durability over latency:

  - Balancer Hash keeps all events of one voter hash on one partition.
  - RequiredAcks RequireAll waits for every in-sync replica.
  - Compression Snappy, since payloads are small JSON documents.
*/
func NewKafkaPublisher(brokers []string, topic, salt string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
	}
	return &KafkaPublisher{writer: w, salt: salt}
}

func newPublisherWithWriter(w MessageWriter, salt string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, salt: salt}
}

func (kp *KafkaPublisher) PublishBallotCast(ctx context.Context, voterID string, castAt time.Time) error {
	event := models.BallotCastEvent{
		VoterHash: auth.HashVoterID(voterID, kp.salt),
		CastAt:    castAt.UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ballot cast event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.VoterHash),
		Value: payload,
		Time:  event.CastAt,
	}
	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (kp *KafkaPublisher) Close() error {
	if err := kp.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}
