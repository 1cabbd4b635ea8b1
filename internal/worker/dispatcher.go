package worker

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/mq"
)

// processJob is the queue message for one extraction run.
type processJob struct {
	DocumentID uint `json:"document_id"`
}

// InlineDispatcher runs extraction synchronously. Used when no broker is
// configured.
type InlineDispatcher struct {
	processor *Processor
}

func NewInlineDispatcher(processor *Processor) *InlineDispatcher {
	return &InlineDispatcher{processor: processor}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, documentID uint) error {
	return d.processor.Process(ctx, documentID)
}

// QueueDispatcher hands extraction off to the worker process through the
// broker.
type QueueDispatcher struct {
	publisher mq.Publisher
}

func NewQueueDispatcher(publisher mq.Publisher) *QueueDispatcher {
	return &QueueDispatcher{publisher: publisher}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, documentID uint) error {
	return d.publisher.Publish(ctx, mq.KeyDocumentProcess, processJob{DocumentID: documentID})
}

// JobConsumer drains processing jobs from the queue and runs them.
type JobConsumer struct {
	processor *Processor
	log       zerolog.Logger
}

func NewJobConsumer(processor *Processor, log zerolog.Logger) *JobConsumer {
	return &JobConsumer{processor: processor, log: log}
}

// Handle decodes one delivery and processes it, acking on success. Failed
// jobs are nacked without requeue so a poison message cannot loop forever.
func (c *JobConsumer) Handle(ctx context.Context) func(amqp091.Delivery) {
	return func(msg amqp091.Delivery) {
		var job processJob
		if err := json.Unmarshal(msg.Body, &job); err != nil {
			c.log.Error().Err(err).Msg("malformed job payload")
			_ = msg.Nack(false, false)
			return
		}
		if err := c.processor.Process(ctx, job.DocumentID); err != nil {
			c.log.Error().Err(err).Uint("document_id", job.DocumentID).Msg("job failed")
			_ = msg.Nack(false, false)
			return
		}
		_ = msg.Ack(false)
	}
}
