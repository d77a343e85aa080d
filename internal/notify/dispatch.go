package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/quicklaunchweb/leadrelay/pkg/logging"
)

// Dispatch modes reported to the caller.
const (
	ModeSent   = "sent"
	ModeDryRun = "dry-run"
)

// Result describes a successful dispatch outcome.
type Result struct {
	Mode    string
	Message string
}

// ConfigError reports missing provider configuration in strict production
// mode. Its message is safe to return to the caller.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("Server misconfigured. Missing %s.", strings.Join(e.Missing, " and "))
}

// DeliveryError wraps a provider failure. Error() is the generic user-facing
// message; Detail carries the provider's error text for development use.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return "Failed to send email." }

func (e *DeliveryError) Unwrap() error { return e.Err }

// Detail returns the provider error text.
func (e *DeliveryError) Detail() string {
	if e.Err == nil {
		return "unknown provider error"
	}
	return e.Err.Error()
}

// DispatcherOptions configure how a Dispatcher decides between sending,
// dry-running and failing.
type DispatcherOptions struct {
	// CredentialVar names the provider credential variable reported when it
	// is missing (SENDGRID_API_KEY or SMTP_HOST depending on provider).
	CredentialVar string
	// CredentialSet reports whether that credential is configured.
	CredentialSet bool
	// To is the destination lead inbox.
	To string
	// FromOverride replaces the site profile's default sender when set.
	FromOverride string
	ReplyTo      string
	Bcc          []string
	// DryRun suppresses the provider call regardless of credentials.
	DryRun bool
	// Production makes missing credentials a hard error instead of a dry run.
	Production bool
}

// Dispatcher hands rendered payloads to the email provider, honoring the
// environment-driven dry-run and misconfiguration modes. A single attempt per
// payload; failures surface synchronously, nothing is queued.
type Dispatcher struct {
	sender EmailSender
	opts   DispatcherOptions
	logger *logging.Logger
}

// NewDispatcher creates a dispatcher around the given sender.
func NewDispatcher(sender EmailSender, opts DispatcherOptions, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{sender: sender, opts: opts, logger: logger}
}

// Dispatch sends the payload, or short-circuits into dry-run / config-error
// per the configured mode priority: explicit dry-run or missing credentials
// outside production yield a dry-run success; missing credentials in
// production yield a ConfigError; otherwise the provider is called once.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload) (Result, error) {
	missing := d.missingVars()

	if d.opts.DryRun || len(missing) > 0 {
		if d.opts.Production && !d.opts.DryRun && len(missing) > 0 {
			d.logger.Error("lead dispatch misconfigured", "missing", strings.Join(missing, ","))
			return Result{}, &ConfigError{Missing: missing}
		}
		message := "Dry run enabled. Email not sent."
		if len(missing) > 0 {
			message = fmt.Sprintf("Dry run only. Missing %s.", strings.Join(missing, " and "))
		}
		d.logger.Info("lead dispatch dry run", "subject", p.Subject, "message", message)
		return Result{Mode: ModeDryRun, Message: message}, nil
	}

	p.To = d.opts.To
	p.Bcc = d.opts.Bcc
	p.ReplyTo = d.opts.ReplyTo
	if d.opts.FromOverride != "" {
		p.From = d.opts.FromOverride
	}

	if err := d.sender.Send(ctx, EmailMessage{
		From:    p.From,
		To:      p.To,
		Bcc:     p.Bcc,
		ReplyTo: p.ReplyTo,
		Subject: p.Subject,
		Text:    p.Text,
		HTML:    p.HTML,
	}); err != nil {
		return Result{}, &DeliveryError{Err: err}
	}

	return Result{Mode: ModeSent}, nil
}

func (d *Dispatcher) missingVars() []string {
	var missing []string
	if !d.opts.CredentialSet {
		missing = append(missing, d.opts.CredentialVar)
	}
	if d.opts.To == "" {
		missing = append(missing, "LEAD_TO_EMAIL")
	}
	return missing
}
