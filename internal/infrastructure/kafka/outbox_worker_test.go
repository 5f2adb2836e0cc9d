package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOutbox struct {
	events    []*usecase.OutboxEvent
	processed []int64
	returned  []int64
	claimErr  error
}

func (m *memOutbox) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	event.ID = int64(len(m.events) + 1)
	event.Status = usecase.Pending
	m.events = append(m.events, event)
	return event, nil
}

func (m *memOutbox) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	if m.claimErr != nil {
		return nil, m.claimErr
	}

	var out []*usecase.OutboxEvent
	for _, ev := range m.events {
		if ev.Status == usecase.Pending && len(out) < limit {
			ev.Status = usecase.Processing
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memOutbox) MarkAsProcessed(_ context.Context, id int64) error {
	m.events[id-1].Status = usecase.Processed
	m.processed = append(m.processed, id)
	return nil
}

func (m *memOutbox) ReturnToPending(_ context.Context, id int64) error {
	m.events[id-1].Status = usecase.Pending
	m.returned = append(m.returned, id)
	return nil
}

type stubProducer struct {
	keys []string
	errs map[string]error
}

func (p *stubProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	if err := p.errs[req.Key]; err != nil {
		return err
	}
	p.keys = append(p.keys, req.Key)
	return nil
}

func newTestWorker(repo *memOutbox, producer *stubProducer) *OutboxWorker {
	return NewOutboxWorker(repo, logger.NewNopLogger(), producer, &cfg.OutboxCfg{
		BatchSize:     2,
		ListenTimeout: time.Second,
		Channel:       "outbox_pending",
	}, "")
}

func seedEvents(repo *memOutbox, keys ...string) {
	for _, k := range keys {
		_, _ = repo.Create(context.Background(), &usecase.OutboxEvent{
			EventID:     "ev-" + k,
			EventType:   usecase.EventOrderPlaced,
			AggregateID: k,
			Payload:     []byte("{}"),
		})
	}
}

func TestOutboxWorker_DrainPublishesEverything(t *testing.T) {
	repo := &memOutbox{}
	producer := &stubProducer{}
	seedEvents(repo, "o1", "o2", "o3")

	newTestWorker(repo, producer).drain(context.Background())

	assert.Equal(t, []string{"o1", "o2", "o3"}, producer.keys)
	assert.Equal(t, []int64{1, 2, 3}, repo.processed)
}

func TestOutboxWorker_RetryableFailureReturnsToQueue(t *testing.T) {
	repo := &memOutbox{}
	producer := &stubProducer{errs: map[string]error{"o1": ErrBrokerUnavailable}}
	seedEvents(repo, "o1", "o2", "o3")

	w := newTestWorker(repo, producer)

	hasMore, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)
	assert.Equal(t, []int64{1}, repo.returned)
	assert.Equal(t, []int64{2}, repo.processed)
	assert.Equal(t, usecase.Pending, repo.events[0].Status)

	delete(producer.errs, "o1")
	w.drain(context.Background())
	assert.ElementsMatch(t, []int64{1, 2, 3}, repo.processed)
}

func TestOutboxWorker_PermanentFailureIsDropped(t *testing.T) {
	repo := &memOutbox{}
	producer := &stubProducer{errs: map[string]error{"o1": errors.New("message too large")}}
	seedEvents(repo, "o1")

	w := newTestWorker(repo, producer)
	w.drain(context.Background())

	assert.Empty(t, repo.returned)
	assert.Empty(t, repo.processed)
	assert.Equal(t, usecase.Processing, repo.events[0].Status)
}

func TestOutboxWorker_ClaimError(t *testing.T) {
	repo := &memOutbox{claimErr: errors.New("db down")}
	w := newTestWorker(repo, &stubProducer{})

	_, err := w.processBatch(context.Background())
	assert.Error(t, err)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("dial tcp 10.0.0.1:9092: i/o timeout")))
	assert.True(t, isRetryableError(context.DeadlineExceeded))
	assert.False(t, isRetryableError(errors.New("message too large")))
	assert.False(t, isRetryableError(nil))
}

// fakeListenConn отдаёт заранее заданные ошибки, затем ждёт отмены ctx.
type fakeListenConn struct {
	mu       sync.Mutex
	errs     []error
	closed   bool
	waitedOn bool // WaitForNotification после Close
}

func (c *fakeListenConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	c.mu.Lock()
	if c.closed {
		c.waitedOn = true
	}
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *fakeListenConn) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeListenConn) usedAfterClose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waitedOn
}

// fakeDialer проигрывает сценарий подключений: nil в steps — неудачный dial.
// После конца сценария каждый dial возвращает новое соединение без ошибок.
type fakeDialer struct {
	mu    sync.Mutex
	steps []*fakeListenConn
	conns []*fakeListenConn
	calls int
}

func (d *fakeDialer) dial(context.Context) (listenConn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	conn := &fakeListenConn{}
	if len(d.steps) > 0 {
		conn = d.steps[0]
		d.steps = d.steps[1:]
		if conn == nil {
			return nil, errors.New("connection refused")
		}
	}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) snapshot() (int, []*fakeListenConn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls, append([]*fakeListenConn(nil), d.conns...)
}

func (c *fakeListenConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestOutboxWorker_ReconnectRetriesUntilSubscribed(t *testing.T) {
	lost := &fakeListenConn{errs: []error{errors.New("unexpected EOF")}}
	healthy := &fakeListenConn{}
	dialer := &fakeDialer{steps: []*fakeListenConn{lost, nil, nil, healthy}}

	w := newTestWorker(&memOutbox{}, &stubProducer{})
	w.cfg.ListenTimeout = time.Hour
	w.dial = dialer.dial
	w.backoff = func(int) time.Duration { return time.Millisecond }

	w.Start(context.Background())

	require.Eventually(t, func() bool {
		_, conns := dialer.snapshot()
		return len(conns) == 2
	}, 2*time.Second, time.Millisecond)

	w.Stop()

	calls, _ := dialer.snapshot()
	assert.Equal(t, 4, calls)
	assert.True(t, lost.isClosed())
	assert.False(t, lost.usedAfterClose())
	assert.True(t, healthy.isClosed())
}

func TestOutboxWorker_StopDuringReconnect(t *testing.T) {
	lost := &fakeListenConn{errs: []error{errors.New("unexpected EOF")}}
	dialer := &fakeDialer{steps: []*fakeListenConn{lost, nil, nil, nil, nil, nil}}

	w := newTestWorker(&memOutbox{}, &stubProducer{})
	w.dial = dialer.dial
	w.backoff = func(int) time.Duration { return time.Hour }

	w.Start(context.Background())
	require.Eventually(t, func() bool {
		calls, _ := dialer.snapshot()
		return calls == 2
	}, time.Second, time.Millisecond)

	w.Stop()

	assert.True(t, lost.isClosed())
	assert.False(t, lost.usedAfterClose())
}

func TestOutboxWorker_StopInterruptsListenWait(t *testing.T) {
	dialer := &fakeDialer{}

	w := newTestWorker(&memOutbox{}, &stubProducer{})
	w.cfg.ListenTimeout = time.Hour
	w.dial = dialer.dial

	w.Start(context.Background())
	require.Eventually(t, func() bool {
		_, conns := dialer.snapshot()
		return len(conns) == 1
	}, time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on ListenTimeout")
	}

	_, conns := dialer.snapshot()
	assert.True(t, conns[0].isClosed())
}
