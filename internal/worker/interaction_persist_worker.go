package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"docuchat/internal/model"
	"docuchat/internal/repository"
)

// InteractionPersistWorker drains the interaction queue into MySQL. The ask
// path never waits on it; a dropped row costs history, not the answer.
type InteractionPersistWorker struct {
	conn      *amqp.Connection
	repo      *repository.InteractionRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewInteractionPersistWorker(conn *amqp.Connection, repo *repository.InteractionRepository, queueName string) *InteractionPersistWorker {
	return &InteractionPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *InteractionPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var interaction model.Interaction
				if err := json.Unmarshal(d.Body, &interaction); err != nil {
					log.Printf("worker decode interaction failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&interaction); err != nil {
					log.Printf("worker persist interaction failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *InteractionPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
