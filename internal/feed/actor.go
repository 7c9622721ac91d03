package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"github.com/gxscan/gxscan/internal/token"
	"go.uber.org/zap"
)

// ErrClosed is returned from Send after Close has been issued.
var ErrClosed = errors.New("feed: actor closed")

var errSessionClosed = errors.New("feed: session closed")

// Config tunes the actor's transport and batching behavior.
type Config struct {
	// BatchWindow is the longest a received record waits before its
	// batch is flushed.
	BatchWindow time.Duration
	// BatchSize flushes a batch early once this many records are
	// pending.
	BatchSize int
	// InitialReconnectDelay seeds the reconnect backoff.
	InitialReconnectDelay time.Duration
	// MaxReconnectDelay caps the reconnect backoff.
	MaxReconnectDelay time.Duration
	// HandshakeTimeout bounds a single dial attempt.
	HandshakeTimeout time.Duration
	// ReadTimeout bounds a single read; the upstream feed pings well
	// within it.
	ReadTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BatchWindow:           250 * time.Millisecond,
		BatchSize:             64,
		InitialReconnectDelay: time.Second,
		MaxReconnectDelay:     30 * time.Second,
		HandshakeTimeout:      10 * time.Second,
		ReadTimeout:           90 * time.Second,
	}
}

// Actor owns the live feed connection in its own goroutine and talks
// to the rest of the application only through channels: commands in,
// Events out. It never shares mutable state with the render loop.
type Actor struct {
	cfg    Config
	logger *zap.Logger

	ctrl   chan command
	events chan Event

	cancel context.CancelFunc
	done   chan struct{}
}

// New starts the actor. It idles until Init delivers a feed URL.
func New(cfg Config, logger *zap.Logger) *Actor {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Actor{
		cfg:    cfg,
		logger: logger,
		ctrl:   make(chan command, 8),
		events: make(chan Event, 256),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go a.run(ctx)
	return a
}

// Events returns the outbound event channel. It is closed when the
// actor terminates.
func (a *Actor) Events() <-chan Event { return a.events }

// Init instructs the actor to open a persistent connection to url.
func (a *Actor) Init(url string) error {
	return a.send(command{kind: cmdInit, url: url})
}

// RequestInitial asks the upstream to resend the full snapshot of
// current records. The actor already issues the request on every
// fresh connection, so this is for explicit refreshes; when not
// connected it is a no-op.
func (a *Actor) RequestInitial() error {
	return a.send(command{kind: cmdRequestInitial})
}

// Close terminates the actor unconditionally, including any reconnect
// attempt in progress.
func (a *Actor) Close() {
	a.cancel()
	<-a.done
}

func (a *Actor) send(cmd command) error {
	select {
	case a.ctrl <- cmd:
		return nil
	case <-a.done:
		return ErrClosed
	}
}

func (a *Actor) run(ctx context.Context) {
	defer close(a.done)
	defer close(a.events)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-a.ctrl:
			switch cmd.kind {
			case cmdInit:
				a.serve(ctx, cmd.url)
				if ctx.Err() != nil {
					return
				}
			case cmdRequestInitial:
				// Not connected yet; the snapshot request is issued
				// automatically on connect.
			}
		}
	}
}

// serve runs the connect/read/reconnect cycle until the actor closes.
func (a *Actor) serve(ctx context.Context, url string) {
	var epoch uint64

	for {
		conn, err := a.dial(ctx, url)
		if err != nil {
			// Only Close or context cancellation stops the dial loop.
			return
		}

		epoch++
		a.emit(ctx, ConnectionStatus{Connected: true, Epoch: epoch})
		a.logger.Info("Feed connected",
			zap.String("url", url), zap.Uint64("epoch", epoch))

		err = a.pump(ctx, conn, epoch)
		_ = conn.Close()

		if errors.Is(err, errSessionClosed) || ctx.Err() != nil {
			return
		}

		a.emit(ctx, ConnectionStatus{Connected: false, Err: err.Error(), Epoch: epoch})
		a.logger.Warn("Feed disconnected",
			zap.Uint64("epoch", epoch), zap.Error(err))
	}
}

// dial connects with bounded exponential backoff. It only returns an
// error when the actor is shutting down.
func (a *Actor) dial(ctx context.Context, url string) (*websocket.Conn, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = a.cfg.InitialReconnectDelay
	policy.MaxInterval = a.cfg.MaxReconnectDelay

	notify := func(err error, wait time.Duration) {
		a.logger.Info("Feed dial retry",
			zap.Duration("backoff", wait), zap.Error(err))
	}

	operation := func() (*websocket.Conn, error) {
		dialer := websocket.Dialer{HandshakeTimeout: a.cfg.HandshakeTimeout}
		conn, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, fmt.Errorf("feed dial %s: %w", url, err)
		}
		return conn, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithNotify(notify))
}

// pump reads wire messages and coalesces them into batches until the
// connection fails or the actor closes. Batching bounds the message
// rate toward the render loop: a batch flushes when BatchSize records
// are pending or BatchWindow elapses since the first pending record,
// whichever comes first.
func (a *Actor) pump(ctx context.Context, conn *websocket.Conn, epoch uint64) error {
	incoming := make(chan []token.Record, 64)
	readErr := make(chan error, 1)

	go func() {
		for {
			_ = conn.SetReadDeadline(time.Now().Add(a.cfg.ReadTimeout))
			_, payload, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			if records := a.decode(payload); len(records) > 0 {
				select {
				case incoming <- records:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	// Ask for the current snapshot on every fresh connection.
	if err := a.writeRequestInitial(conn); err != nil {
		return err
	}

	var pending []token.Record
	flushTimer := time.NewTimer(a.cfg.BatchWindow)
	flushTimer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		a.emit(ctx, Batch{Records: pending, Epoch: epoch})
		pending = nil
	}

	for {
		select {
		case <-ctx.Done():
			return errSessionClosed

		case cmd := <-a.ctrl:
			switch cmd.kind {
			case cmdRequestInitial:
				if err := a.writeRequestInitial(conn); err != nil {
					flush()
					return err
				}
			case cmdInit:
				// Already connected; a second INIT is a no-op.
			}

		case records := <-incoming:
			if len(pending) == 0 {
				flushTimer.Reset(a.cfg.BatchWindow)
			}
			pending = append(pending, records...)
			if len(pending) >= a.cfg.BatchSize {
				flushTimer.Stop()
				flush()
			}

		case <-flushTimer.C:
			flush()

		case err := <-readErr:
			flush()
			return err
		}
	}
}

func (a *Actor) writeRequestInitial(conn *websocket.Conn) error {
	req := map[string]string{"action": "request_initial"}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("request initial snapshot: %w", err)
	}
	return nil
}

// decode parses a wire payload as either a record array or a single
// record. Malformed payloads are logged and dropped whole; malformed
// records inside a valid array are dropped later by the store.
func (a *Actor) decode(payload []byte) []token.Record {
	var records []token.Record
	if err := json.Unmarshal(payload, &records); err == nil {
		return records
	}

	var single token.Record
	if err := json.Unmarshal(payload, &single); err == nil {
		return []token.Record{single}
	}

	a.logger.Warn("Dropping undecodable feed message",
		zap.Int("bytes", len(payload)))
	return nil
}

func (a *Actor) emit(ctx context.Context, ev Event) {
	select {
	case a.events <- ev:
	case <-ctx.Done():
	}
}
