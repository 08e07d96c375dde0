package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/jitter"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	notificationWait = 30 * time.Second
	reconnectBase    = time.Second
	reconnectMax     = 30 * time.Second
	markTimeout      = 5 * time.Second
)

// OutboxWorker публикует события из outbox в Kafka.
// Просыпается по LISTEN/NOTIFY и по таймауту ожидания уведомления.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	channel   string
	batchSize int
	dbConnStr string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
	channel string,
	batchSize int,
) *OutboxWorker {
	if batchSize <= 0 {
		batchSize = 10
	}

	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		channel:   channel,
		batchSize: batchSize,
		dbConnStr: dbConnStr,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		// Обрабатываем "остатки" при старте
		w.logger.Infof("Draining pending outbox events on startup...")
		w.drain(ctx)

		w.listen(ctx)
	}()
}

// Stop останавливает воркер и ждёт завершения текущего батча.
func (w *OutboxWorker) Stop(_ context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	return nil
}

func (w *OutboxWorker) listen(ctx context.Context) {
	for attempt := 0; ; attempt++ {
		conn, err := w.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			delay := jitter.ExponentialBackoff(reconnectBase, reconnectMax, attempt, jitter.DefaultJitter)
			w.logger.Warnf("LISTEN connect failed, retrying in %v: %v", delay, err)
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return
			}
		}

		attempt = -1
		err = w.waitLoop(ctx, conn)
		_ = conn.Close(context.Background())
		if ctx.Err() != nil {
			return
		}
		w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
	}
}

func (w *OutboxWorker) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, w.dbConnStr)
	if err != nil {
		return nil, e.Wrap("failed to connect for LISTEN", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{w.channel}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return nil, e.Wrap("failed to LISTEN", err)
	}

	w.logger.Infof("Subscribed to '%s' channel", w.channel)
	return conn, nil
}

// waitLoop возвращается только при потере соединения или отмене ctx.
func (w *OutboxWorker) waitLoop(ctx context.Context, conn *pgx.Conn) error {
	for {
		waitCtx, cancel := context.WithTimeout(ctx, notificationWait)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				// страховка от потерянных уведомлений
				w.drain(ctx)
				continue
			}
			return err
		}

		if notif != nil && notif.Channel == w.channel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch публикует один батч. hasMore = false, если батч неполный
// или ни одно событие не удалось опубликовать.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	published := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			w.logger.Warnf("publish failed, event returned to pending: event_id=%s, retryable=%t, error=%v",
				event.EventID, isRetryableError(err), err)
			if err := w.mark(ctx, event.ID, w.repo.MarkAsPending); err != nil {
				w.logger.Warnf("mark pending failed: %v", err)
			}
			continue
		}

		published++
		if err := w.mark(ctx, event.ID, w.repo.MarkAsProcessed); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return published > 0 && len(events) == w.batchSize, nil
}

// mark обновляет статус события со своим таймаутом, не наследуя отмену ctx:
// остановка воркера не должна оставлять событие в processing.
func (w *OutboxWorker) mark(ctx context.Context, id int64, fn func(context.Context, int64) error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()

	return fn(ctx, id)
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	return w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.AggregateID, event.Payload))
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
