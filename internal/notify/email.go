package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"

	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// ErrNoEmailProvider is returned when no registered provider is configured.
var ErrNoEmailProvider = errors.New("no configured email provider available")

// EmailMessage is one outgoing email.
type EmailMessage struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// EmailProvider is one email backend (SMTP relay, Resend, SES).
type EmailProvider interface {
	Name() string
	Send(ctx context.Context, msg *EmailMessage) error
	IsConfigured() bool
}

// EmailProviders holds email backends with a primary and an ordered
// fallback list. A send that fails on the primary is retried once on each
// configured fallback before the error is returned.
type EmailProviders struct {
	mu        sync.RWMutex
	providers map[string]EmailProvider
	primary   string
	fallback  []string
	log       *slog.Logger
}

// NewEmailProviders creates an empty provider set.
func NewEmailProviders(log *slog.Logger) *EmailProviders {
	if log == nil {
		log = slog.Default()
	}
	return &EmailProviders{
		providers: make(map[string]EmailProvider),
		log:       log,
	}
}

// Register adds p.
func (r *EmailProviders) Register(p EmailProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	r.log.Info("registered email provider", "name", p.Name(), "configured", p.IsConfigured())
}

// SetPrimary selects the provider tried first.
func (r *EmailProviders) SetPrimary(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("email provider %q not registered", name)
	}
	r.primary = name
	return nil
}

// SetFallback sets the providers tried, in order, after the primary fails.
func (r *EmailProviders) SetFallback(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.providers[name]; !ok {
			return fmt.Errorf("email provider %q not registered", name)
		}
	}
	r.fallback = names
	return nil
}

// order returns the configured providers in the order they should be tried.
func (r *EmailProviders) order() []EmailProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []EmailProvider
	for _, name := range append([]string{r.primary}, r.fallback...) {
		p, ok := r.providers[name]
		if !ok || seen[name] || !p.IsConfigured() {
			continue
		}
		seen[name] = true
		out = append(out, p)
	}
	return out
}

// Send delivers msg through the first provider that accepts it. A permanent
// rejection stops the fallback chain, since another provider would reject
// the same recipient.
func (r *EmailProviders) Send(ctx context.Context, msg *EmailMessage) error {
	providers := r.order()
	if len(providers) == 0 {
		return ErrNoEmailProvider
	}

	var firstErr error
	for i, p := range providers {
		err := p.Send(ctx, msg)
		if err == nil {
			if i > 0 {
				metrics.EmailProviderFallbacksTotal.WithLabelValues(p.Name()).Inc()
				r.log.Warn("email delivered by fallback provider",
					"primary", providers[0].Name(),
					"fallback", p.Name(),
					"primary_error", firstErr,
				)
			}
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
		if ClassifyError(err).Kind == PermanentFailure || ctx.Err() != nil {
			return err
		}
	}
	return firstErr
}

// EmailSender delivers the email channel through EmailProviders.
type EmailSender struct {
	providers *EmailProviders
	from      string
}

// NewEmailSender creates an email sender using from as the sender address.
func NewEmailSender(providers *EmailProviders, from string) *EmailSender {
	return &EmailSender{providers: providers, from: from}
}

// Channel implements Sender.
func (s *EmailSender) Channel() domain.Channel { return domain.ChannelEmail }

// Send implements Sender.
func (s *EmailSender) Send(ctx context.Context, d *Delivery) Outcome {
	if !strings.Contains(d.Recipient, "@") {
		return Permanent("invalid email address %q", d.Recipient)
	}

	err := s.providers.Send(ctx, &EmailMessage{
		From:    s.from,
		To:      []string{d.Recipient},
		Subject: d.Title,
		Text:    d.Body,
		HTML:    renderHTML(d),
	})
	if errors.Is(err, ErrNoEmailProvider) {
		return Permanent("%v", err)
	}
	return ClassifyError(err)
}

func renderHTML(d *Delivery) string {
	var b strings.Builder
	b.WriteString("<h2>")
	b.WriteString(html.EscapeString(d.Title))
	b.WriteString("</h2>")
	for line := range strings.SplitSeq(d.Body, "\n") {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	return b.String()
}
