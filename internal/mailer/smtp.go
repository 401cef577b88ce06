package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// ImplicitTLSPort is the SMTPS port; every other port negotiates STARTTLS
// when the server offers it.
const ImplicitTLSPort = 465

type SMTPConfig struct {
	Host               string
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SMTPDialer is the go-mail backed Dialer.
type SMTPDialer struct {
	cfg SMTPConfig
}

func NewSMTPDialer(cfg SMTPConfig) *SMTPDialer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPDialer{cfg: cfg}
}

func (d *SMTPDialer) options(port int) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTimeout(d.cfg.Timeout),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         d.cfg.Host,
			InsecureSkipVerify: d.cfg.InsecureSkipVerify,
			MinVersion:         tls.VersionTLS12,
		}),
	}
	if port == ImplicitTLSPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if d.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(d.cfg.Username),
			mail.WithPassword(d.cfg.Password),
		)
	}
	return opts
}

// Dial connects, reads the greeting, negotiates TLS and authenticates. A
// session is only returned once all of that succeeded.
func (d *SMTPDialer) Dial(ctx context.Context, port int) (Conn, error) {
	client, err := mail.NewClient(d.cfg.Host, d.options(port)...)
	if err != nil {
		return nil, fmt.Errorf("smtp client for port %d: %w", port, err)
	}
	if err := client.DialWithContext(ctx); err != nil {
		return nil, fmt.Errorf("smtp dial port %d: %w", port, err)
	}
	return &smtpConn{client: client}, nil
}

type smtpConn struct {
	client *mail.Client
}

// buildMsg uses the HTML body as the main part when there is one, with the
// text as its alternative. Text-only messages get a single plain part.
func buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	switch {
	case msg.HTML != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
		if msg.Text != "" {
			m.AddAlternativeString(mail.TypeTextPlain, msg.Text)
		}
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
	}
	return m, nil
}

func (c *smtpConn) Send(_ context.Context, msg Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}

	if err := c.client.Send(m); err != nil {
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) && sendErr.Reason == mail.ErrConnCheck {
			return fmt.Errorf("%w: %w", ErrConnection, err)
		}
		return err
	}
	return nil
}

func (c *smtpConn) Close() error {
	return c.client.Close()
}
