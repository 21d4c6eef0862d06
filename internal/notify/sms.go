package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// maxSMSLength caps the body at ten concatenated segments.
const maxSMSLength = 1530

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// SMSSender delivers text messages through an HTTP SMS gateway. Calls share
// a token bucket so a burst of alerts cannot exceed the gateway's rate.
type SMSSender struct {
	gatewayURL string
	apiKey     string
	from       string
	limiter    *rate.Limiter
	client     *http.Client
}

// SMSOption configures an SMSSender.
type SMSOption func(*SMSSender)

// WithSMSHTTPClient sets a custom HTTP client.
func WithSMSHTTPClient(c *http.Client) SMSOption {
	return func(s *SMSSender) {
		s.client = c
	}
}

// NewSMSSender creates an SMSSender allowing perSecond requests with the
// given burst.
func NewSMSSender(gatewayURL, apiKey, from string, perSecond float64, burst int, opts ...SMSOption) *SMSSender {
	s := &SMSSender{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		from:       from,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), max(burst, 1)),
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type smsRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// Channel implements Sender.
func (s *SMSSender) Channel() domain.Channel { return domain.ChannelSMS }

// Send implements Sender.
func (s *SMSSender) Send(ctx context.Context, d *Delivery) Outcome {
	if !e164.MatchString(d.Recipient) {
		return Permanent("invalid phone number %q", d.Recipient)
	}

	start := time.Now()
	if err := s.limiter.Wait(ctx); err != nil {
		return Transient("sms rate limiter: %v", err)
	}
	metrics.SMSRateLimitWaitSeconds.Observe(time.Since(start).Seconds())

	body, err := json.Marshal(smsRequest{
		From: s.from,
		To:   d.Recipient,
		Body: smsText(d),
	})
	if err != nil {
		return Permanent("marshaling sms request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return Permanent("creating sms request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return ClassifyError(fmt.Errorf("sending sms: %w", err))
	}
	defer resp.Body.Close()

	if kind := ClassifyStatus(resp.StatusCode); kind != Succeeded {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Outcome{Kind: kind, Reason: (&StatusError{
			Provider: "sms gateway",
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(respBody)),
		}).Error()}
	}
	return Success()
}

func smsText(d *Delivery) string {
	text := d.Title
	if d.Body != "" {
		text += "\n" + d.Body
	}
	if r := []rune(text); len(r) > maxSMSLength {
		text = string(r[:maxSMSLength-1]) + "…"
	}
	return text
}
