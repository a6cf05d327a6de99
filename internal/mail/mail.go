package mail

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/fx"

	"github.com/lambriz/catalogbot/internal/config"
)

// ErrNotConfigured is returned when SMTP credentials or the recipient are
// missing.
var ErrNotConfigured = errors.New("SMTP_USER/SMTP_PASS/MAIL_TO not configured")

// Email is a rendered message with a plain text and an HTML part.
type Email struct {
	Subject string
	Text    string
	HTML    string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// SMTPSender delivers email through an SMTP relay. A new connection is
// opened for every message, so it is safe for concurrent use.
type SMTPSender struct {
	cfg config.SMTP
	log zerolog.Logger

	// replaced in tests
	dial    func(ctx context.Context, client *gomail.Client, msg *gomail.Msg) error
	backOff func() backoff.BackOff
}

func NewSMTPSender(cfg config.SMTP, log zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		cfg: cfg,
		log: log,
		dial: func(ctx context.Context, client *gomail.Client, msg *gomail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
		backOff: func() backoff.BackOff {
			if cfg.RetryFor <= 0 {
				return &backoff.StopBackOff{}
			}
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = cfg.RetryFor
			return b
		},
	}
}

func (s *SMTPSender) configured() bool {
	return s.cfg.User != "" && s.cfg.Pass != "" && s.cfg.MailTo != ""
}

// Message builds the multipart/alternative message for email.
func (s *SMTPSender) Message(email Email) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.MailFrom); err != nil {
		return nil, fmt.Errorf("invalid MAIL_FROM: %w", err)
	}
	if err := msg.To(s.cfg.MailTo); err != nil {
		return nil, fmt.Errorf("invalid MAIL_TO: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, email.Text)
	msg.AddAlternativeString(gomail.TypeTextHTML, email.HTML)

	return msg, nil
}

// Client creates an SMTP client. Secure connections use implicit TLS,
// others must upgrade with STARTTLS.
func (s *SMTPSender) Client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.User),
		gomail.WithPassword(s.cfg.Pass),
		gomail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}

	return gomail.NewClient(s.cfg.Host, opts...)
}

// Send delivers email, retrying transient failures with exponential backoff
// for at most RetryFor.
func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	if !s.configured() {
		return ErrNotConfigured
	}

	msg, err := s.Message(email)
	if err != nil {
		return err
	}

	client, err := s.Client()
	if err != nil {
		return fmt.Errorf("unable to create smtp client: %w", err)
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := s.dial(ctx, client, msg)
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		s.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("smtp delivery failed")
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(s.backOff(), ctx), notify); err != nil {
		return fmt.Errorf("unable to send email: %w", err)
	}

	s.log.Info().Str("subject", email.Subject).Int("attempts", attempt).Msg("email sent")
	return nil
}

// isPermanent reports whether the server rejected the delivery with a 5xx
// reply, such as failed authentication or an unknown mailbox.
func isPermanent(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code >= 500
	}

	var sendErr *gomail.SendError
	if errors.As(err, &sendErr) {
		return !sendErr.IsTemp() && sendErr.ErrorCode() >= 500
	}

	return false
}

type Params struct {
	fx.In

	Config *config.OrderAPI
	Logger zerolog.Logger
}

type Result struct {
	fx.Out

	Sender Sender
}

func New(p Params) Result {
	return Result{
		Sender: NewSMTPSender(p.Config.SMTP, p.Logger),
	}
}

func Module() fx.Option {
	return fx.Module(
		"mail",
		fx.Provide(New),
	)
}
