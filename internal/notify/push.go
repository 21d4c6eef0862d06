package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// PushSender delivers push notifications through an FCM-style HTTP gateway.
type PushSender struct {
	gatewayURL string
	serverKey  string
	client     *http.Client
}

// PushOption configures a PushSender.
type PushOption func(*PushSender)

// WithPushHTTPClient sets a custom HTTP client.
func WithPushHTTPClient(c *http.Client) PushOption {
	return func(p *PushSender) {
		p.client = c
	}
}

// NewPushSender creates a PushSender posting to gatewayURL.
func NewPushSender(gatewayURL, serverKey string, opts ...PushOption) *PushSender {
	p := &PushSender{
		gatewayURL: gatewayURL,
		serverKey:  serverKey,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// pushPayload is the gateway request body.
type pushPayload struct {
	To           string            `json:"to"`
	Priority     string            `json:"priority"`
	Notification pushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag,omitempty"`
}

// pushResponse is the gateway's per-message result.
type pushResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// permanentPushErrors are gateway result codes that mean the token will
// never accept this message.
var permanentPushErrors = map[string]bool{
	"NotRegistered":       true,
	"InvalidRegistration": true,
	"MissingRegistration": true,
	"MismatchSenderId":    true,
	"MessageTooBig":       true,
	"InvalidDataKey":      true,
}

// Channel implements Sender.
func (p *PushSender) Channel() domain.Channel { return domain.ChannelPush }

// Send implements Sender.
func (p *PushSender) Send(ctx context.Context, d *Delivery) Outcome {
	if strings.TrimSpace(d.Recipient) == "" {
		return Permanent("push: device token is empty")
	}

	body, err := json.Marshal(buildPushPayload(d))
	if err != nil {
		return Permanent("marshaling push payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return Permanent("creating push request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.serverKey != "" {
		req.Header.Set("Authorization", "key="+p.serverKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return ClassifyError(fmt.Errorf("sending push: %w", err))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode == http.StatusTooManyRequests {
		return Transient("push gateway rate limited (429)")
	}
	if kind := ClassifyStatus(resp.StatusCode); kind != Succeeded {
		return Outcome{Kind: kind, Reason: (&StatusError{
			Provider: "push gateway",
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(respBody)),
		}).Error()}
	}

	var pr pushResponse
	if err := json.Unmarshal(respBody, &pr); err != nil || pr.Failure == 0 {
		// Gateways that answer 2xx without a result body accepted the message.
		return Success()
	}
	for _, r := range pr.Results {
		if r.Error == "" {
			continue
		}
		if permanentPushErrors[r.Error] {
			return Permanent("push gateway rejected token: %s", r.Error)
		}
		return Transient("push gateway error: %s", r.Error)
	}
	return Transient("push gateway reported %d failures", pr.Failure)
}

func buildPushPayload(d *Delivery) pushPayload {
	priority := "normal"
	if d.Priority == domain.PriorityHigh {
		priority = "high"
	}

	data := map[string]string{
		"notification_id": d.NotificationID,
		"category":        string(d.Category),
	}
	for k, v := range d.Data {
		data[k] = fmt.Sprint(v)
	}

	return pushPayload{
		To:       d.Recipient,
		Priority: priority,
		Notification: pushNotification{
			Title: d.Title,
			Body:  d.Body,
			Tag:   d.NotificationID,
		},
		Data: data,
	}
}
