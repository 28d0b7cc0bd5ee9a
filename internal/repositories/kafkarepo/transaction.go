package kafkarepo

import (
	"context"
	"encoding/json"
	"fmt"

	"monetization-service/internal/models"

	"github.com/segmentio/kafka-go"
)

type TransactionRepository struct {
	writer *kafka.Writer
}

func NewTransactionRepository(writer *kafka.Writer) *TransactionRepository {
	return &TransactionRepository{
		writer: writer,
	}
}

// PublishTransaction sends a committed ledger record to Kafka for downstream
// consumers (notifications, analytics).
func (r *TransactionRepository) PublishTransaction(ctx context.Context, event models.TransactionEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal kafka message: %w", err)
	}

	// Use userID as key to guarantee ordering per user
	err = r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: msgBytes,
	})

	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}
