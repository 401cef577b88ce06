// Package mailer delivers outbound mail through an SMTP relay. The Transport
// probes a list of candidate ports, keeps the first working connection and
// retries sends with a linear backoff.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"invoice-server/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DefaultFrom     = "no-reply@example.com"
	DefaultAttempts = 3
	DefaultBackoff  = 500 * time.Millisecond
)

// FallbackPorts are tried, in order, after the configured port.
var FallbackPorts = []int{2525, 587, 465}

// ErrConnection marks failures of the underlying SMTP session. Dialers wrap
// session-level errors with it so the Transport knows to re-probe.
var ErrConnection = errors.New("smtp connection failure")

var sendAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mail_send_attempts_total",
	Help: "SMTP send attempts partitioned by result.",
}, []string{"result"})

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Conn is a verified SMTP session.
type Conn interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// Dialer opens and verifies a session on the given port.
type Dialer interface {
	Dial(ctx context.Context, port int) (Conn, error)
}

type Transport struct {
	dialer   Dialer
	ports    []int
	from     string
	attempts int
	backoff  time.Duration
	log      logging.Logger

	// One SMTP conversation cannot be shared, so the cached session is used
	// under mu.
	mu   sync.Mutex
	conn Conn
	port int
}

type Option func(*Transport)

func WithFrom(from string) Option {
	return func(t *Transport) {
		if from != "" {
			t.from = from
		}
	}
}

func WithBackoff(d time.Duration) Option {
	return func(t *Transport) { t.backoff = d }
}

func WithAttempts(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.attempts = n
		}
	}
}

func WithLogger(log logging.Logger) Option {
	return func(t *Transport) {
		if log != nil {
			t.log = log
		}
	}
}

func NewTransport(dialer Dialer, port int, opts ...Option) *Transport {
	t := &Transport{
		dialer:   dialer,
		ports:    CandidatePorts(port),
		from:     DefaultFrom,
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CandidatePorts returns the configured port followed by the fallbacks, with
// zero values dropped and duplicates removed keeping the first occurrence.
func CandidatePorts(configured int) []int {
	seen := make(map[int]bool, len(FallbackPorts)+1)
	ports := make([]int, 0, len(FallbackPorts)+1)
	for _, p := range append([]int{configured}, FallbackPorts...) {
		if p <= 0 || seen[p] {
			continue
		}
		seen[p] = true
		ports = append(ports, p)
	}
	return ports
}

func (t *Transport) Ports() []int {
	return append([]int(nil), t.ports...)
}

// Conn returns the cached session, establishing one if needed.
func (t *Transport) Conn(ctx context.Context) (Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connLocked(ctx)
}

func (t *Transport) connLocked(ctx context.Context) (Conn, error) {
	if t.conn != nil {
		return t.conn, nil
	}

	var lastErr error
	for _, port := range t.ports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		conn, err := t.dialer.Dial(ctx, port)
		if err != nil {
			t.log.Warn(ctx, "smtp port unavailable", "port", port, "error", err)
			lastErr = err
			continue
		}
		t.log.Info(ctx, "smtp connection established", "port", port)
		t.conn = conn
		t.port = port
		return conn, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no smtp ports configured")
	}
	return nil, fmt.Errorf("smtp connect: %w", lastErr)
}

// Port reports the port of the cached session, or 0 when there is none.
func (t *Transport) Port() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return 0
	}
	return t.port
}

// Invalidate drops the cached session so the next send re-probes the ports.
func (t *Transport) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.invalidateLocked()
}

func (t *Transport) invalidateLocked() {
	if t.conn != nil {
		_ = t.conn.Close()
	}
	t.conn = nil
	t.port = 0
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.port = 0
	return err
}

// Send delivers msg, retrying on failure. Connection-class failures drop the
// cached session before the next attempt. The last error is returned.
func (t *Transport) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = t.from
	}

	var lastErr error
	for attempt := 1; attempt <= t.attempts; attempt++ {
		lastErr = t.trySend(ctx, msg)
		if lastErr == nil {
			sendAttempts.WithLabelValues("success").Inc()
			return nil
		}
		sendAttempts.WithLabelValues("failure").Inc()
		t.log.Warn(ctx, "mail send failed", "attempt", attempt, "to", msg.To, "error", lastErr)

		if attempt == t.attempts {
			break
		}
		if err := sleep(ctx, t.backoff*time.Duration(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

func (t *Transport) trySend(ctx context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	conn, err := t.connLocked(ctx)
	if err != nil {
		return err
	}
	if err := conn.Send(ctx, msg); err != nil {
		if isConnError(err) {
			t.invalidateLocked()
		}
		return err
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isConnError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrConnection),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
