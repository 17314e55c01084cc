// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

// Package mail delivers verification and password reset links by SMTP.
package mail

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	gomail "github.com/wneessen/go-mail"

	"github.com/gamenight/gamenight/internal/auth"
)

// Config configures SMTP delivery.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// TLS is "mandatory", "opportunistic", "implicit" or "none".
	TLS      string
	Timeout  time.Duration
	Attempts uint64
}

// Sender transmits rendered messages. *gomail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPNotifier implements auth.Notifier over SMTP. Transport failures are
// retried with exponential backoff.
type SMTPNotifier struct {
	sender   Sender
	from     string
	attempts uint64
	backoff  time.Duration
	logger   *slog.Logger
}

// NewSMTPNotifier creates an SMTPNotifier with a go-mail client built from
// cfg. A nil logger uses slog.Default().
func NewSMTPNotifier(cfg Config, logger *slog.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp host is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp from address or username is required")
	}
	opts, err := tlsOptions(cfg.TLS)
	if err != nil {
		return nil, err
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, oops.Code("MAIL_CLIENT_FAILED").With("host", cfg.Host).Wrap(err)
	}
	return NewNotifier(client, cfg.From, cfg.Attempts, logger), nil
}

// NewNotifier creates an SMTPNotifier around an existing sender. attempts
// below one means a single attempt.
func NewNotifier(sender Sender, from string, attempts uint64, logger *slog.Logger) *SMTPNotifier {
	if attempts == 0 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPNotifier{
		sender:   sender,
		from:     from,
		attempts: attempts,
		backoff:  500 * time.Millisecond,
		logger:   logger,
	}
}

// SetBackoff overrides the base retry delay. For tests.
func (n *SMTPNotifier) SetBackoff(d time.Duration) {
	n.backoff = d
}

// SendVerificationLink emails an address verification link.
func (n *SMTPNotifier) SendVerificationLink(ctx context.Context, to, link string) error {
	return n.send(ctx, KindVerification, to, link)
}

// SendPasswordResetLink emails a password reset link.
func (n *SMTPNotifier) SendPasswordResetLink(ctx context.Context, to, link string) error {
	return n.send(ctx, KindPasswordReset, to, link)
}

func (n *SMTPNotifier) send(ctx context.Context, kind Kind, to, link string) error {
	msg, err := buildMessage(kind, n.from, to, link)
	if err != nil {
		recordDelivery(kind, OutcomeFailed)
		return err
	}

	attempt := 0
	b := retry.WithMaxRetries(n.attempts-1, retry.NewExponential(n.backoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
			n.logger.WarnContext(ctx, "mail delivery attempt failed",
				"kind", string(kind),
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		recordDelivery(kind, OutcomeFailed)
		return oops.Code("MAIL_SEND_FAILED").
			With("kind", string(kind)).
			With("attempts", attempt).
			Wrap(err)
	}

	recordDelivery(kind, OutcomeSent)
	n.logger.InfoContext(ctx, "mail sent", "kind", string(kind))
	return nil
}

// tlsOptions maps a TLS mode to client options. The port options they set
// are overridden by an explicit port.
func tlsOptions(mode string) ([]gomail.Option, error) {
	switch mode {
	case "", "mandatory":
		return []gomail.Option{gomail.WithTLSPortPolicy(gomail.TLSMandatory)}, nil
	case "opportunistic":
		return []gomail.Option{gomail.WithTLSPortPolicy(gomail.TLSOpportunistic)}, nil
	case "implicit":
		return []gomail.Option{gomail.WithSSLPort(false)}, nil
	case "none":
		return []gomail.Option{gomail.WithTLSPortPolicy(gomail.NoTLS)}, nil
	default:
		return nil, oops.Code("MAIL_CONFIG_INVALID").With("tls", mode).Errorf("unknown smtp tls mode")
	}
}

// LogNotifier implements auth.Notifier by logging links instead of sending
// them. For local development without an SMTP server.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// SendVerificationLink logs the verification link.
func (n *LogNotifier) SendVerificationLink(ctx context.Context, to, link string) error {
	n.log(ctx, KindVerification, to, link)
	return nil
}

// SendPasswordResetLink logs the reset link.
func (n *LogNotifier) SendPasswordResetLink(ctx context.Context, to, link string) error {
	n.log(ctx, KindPasswordReset, to, link)
	return nil
}

func (n *LogNotifier) log(ctx context.Context, kind Kind, to, link string) {
	recordDelivery(kind, OutcomeLogged)
	n.logger.InfoContext(ctx, "mail not sent, smtp disabled",
		"kind", string(kind),
		"to", to,
		"subject", Subject(kind),
		"link", link)
}

var (
	_ auth.Notifier = (*SMTPNotifier)(nil)
	_ auth.Notifier = (*LogNotifier)(nil)
)
