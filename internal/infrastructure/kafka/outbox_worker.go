package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	reconnectBase = 2 * time.Second
	reconnectMax  = time.Minute
)

// listenConn — соединение, подписанное на канал outbox.
type listenConn interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// OutboxWorker публикует события заказов из outbox в Kafka.
// Воркер просыпается по NOTIFY и раз в ListenTimeout, чтобы подобрать возвращённые в очередь события.
type OutboxWorker struct {
	repo     usecase.OutboxRepository
	logger   logger.Logger
	producer usecase.MessageProducer
	cfg      *cfg.OutboxCfg

	dial    func(ctx context.Context) (listenConn, error)
	backoff func(attempt int) time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	cfg *cfg.OutboxCfg,
	dbConnStr string,
) *OutboxWorker {
	w := &OutboxWorker{
		repo:     repo,
		logger:   logger,
		producer: producer,
		cfg:      cfg,
		backoff: func(attempt int) time.Duration {
			return jitter.ExponentialBackoff(reconnectBase, reconnectMax, attempt, jitter.DefaultJitter)
		},
	}
	w.dial = func(ctx context.Context) (listenConn, error) {
		return listen(ctx, dbConnStr, cfg.Channel)
	}
	return w
}

// listen открывает отдельное соединение и подписывает его на канал.
func listen(ctx context.Context, dbConnStr, channel string) (listenConn, error) {
	c, err := pgx.Connect(ctx, dbConnStr)
	if err != nil {
		return nil, e.Wrap("failed to connect for LISTEN", err)
	}

	if _, err := c.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		_ = c.Close(ctx)
		return nil, e.Wrap("failed to LISTEN", err)
	}

	return c, nil
}

// Start запускает воркер. Stop или отмена ctx останавливают его.
func (w *OutboxWorker) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.logger.Infof("Draining pending outbox events on startup...")
		w.drain(runCtx)

		w.listenOutboxNotifications(runCtx)
	}()
}

// Stop прерывает ожидание уведомления и ждёт выхода воркера.
func (w *OutboxWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	conn, ok := w.connect(ctx)
	if !ok {
		return
	}
	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	for {
		waitCtx, cancel := context.WithTimeout(ctx, w.cfg.ListenTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				w.drain(ctx)
				continue
			}

			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			_ = conn.Close(ctx)

			if conn, ok = w.connect(ctx); !ok {
				return
			}
			w.drain(ctx)
			continue
		}

		if notif != nil && notif.Channel == w.cfg.Channel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

// connect повторяет подписку с backoff до успеха. false — воркер остановлен.
func (w *OutboxWorker) connect(ctx context.Context) (listenConn, bool) {
	for attempt := 0; ; attempt++ {
		conn, err := w.dial(ctx)
		if err == nil {
			w.logger.Infof("Subscribed to '%s' channel", w.cfg.Channel)
			return conn, true
		}
		if ctx.Err() != nil {
			return nil, false
		}
		w.logger.Warnf("LISTEN connect failed: %v", err)

		if !sleep(ctx, w.backoff(attempt)) {
			return nil, false
		}
	}
}

// sleep ждёт d и возвращает false, если ctx отменён раньше.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
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

// processBatch публикует одну пачку. hasMore == false, если пачка пуста
// или брокер временно недоступен: повтор будет при следующем пробуждении.
func (w *OutboxWorker) processBatch(ctx context.Context) (hasMore bool, err error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	hasMore = true
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			if isRetryableError(err) {
				w.logger.Warnf("event %s returned to queue: %v", event.EventID, err)
				if err := w.repo.ReturnToPending(ctx, event.ID); err != nil {
					w.logger.Warnf("return to pending failed: %v", err)
				}
				hasMore = false
				continue
			}

			w.logger.Errorf(err, "event %s (%s) dropped", event.EventID, event.EventType)
			continue
		}

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return hasMore, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	if err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.AggregateID, event.Payload)); err != nil {
		if isRetryableError(err) {
			return e.Wrap("Temporary Kafka failure, will retry", err)
		}
		return e.Wrap("Permanent Kafka failure", err)
	}
	return nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBrokerUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
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
