package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// SMTPProvider sends email through an SMTP relay. Port 465 uses implicit
// TLS; other ports upgrade with STARTTLS when the server offers it.
type SMTPProvider struct {
	host     string
	port     int
	username string
	password string
	dialer   *net.Dialer
}

// NewSMTPProvider creates an SMTP provider.
func NewSMTPProvider(host string, port int, username, password string) *SMTPProvider {
	return &SMTPProvider{
		host:     host,
		port:     port,
		username: username,
		password: password,
		dialer:   &net.Dialer{Timeout: 10 * time.Second},
	}
}

// Name implements EmailProvider.
func (p *SMTPProvider) Name() string { return "smtp" }

// IsConfigured implements EmailProvider.
func (p *SMTPProvider) IsConfigured() bool { return p.host != "" && p.port > 0 }

// Send implements EmailProvider.
func (p *SMTPProvider) Send(ctx context.Context, msg *EmailMessage) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("smtp: no recipients specified")
	}

	body, err := buildMIME(msg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(p.host, strconv.Itoa(p.port))
	conn, err := p.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("smtp: connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, p.host)
	if err != nil {
		return fmt.Errorf("smtp: creating client: %w", err)
	}
	defer client.Close()

	if p.port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: p.host, MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("smtp: starting TLS: %w", err)
			}
		}
	}

	if p.username != "" && p.password != "" {
		if err := client.Auth(smtp.PlainAuth("", p.username, p.password, p.host)); err != nil {
			return fmt.Errorf("smtp: authentication failed: %w", err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp: setting sender %s: %w", msg.From, err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp: invalid recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: opening data writer: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp: writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: closing data writer: %w", err)
	}

	return client.Quit()
}

func (p *SMTPProvider) dial(ctx context.Context, addr string) (net.Conn, error) {
	if p.port == 465 {
		d := &tls.Dialer{
			NetDialer: p.dialer,
			Config:    &tls.Config{ServerName: p.host, MinVersion: tls.VersionTLS12},
		}
		return d.DialContext(ctx, "tcp", addr)
	}
	return p.dialer.DialContext(ctx, "tcp", addr)
}

// buildMIME renders msg as a multipart/alternative message with a plain
// text part and, when present, an HTML part.
func buildMIME(msg *EmailMessage) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/alternative; boundary=%q\r\n\r\n",
		msg.From,
		strings.Join(msg.To, ", "),
		mime.QEncoding.Encode("utf-8", msg.Subject),
		mw.Boundary(),
	)

	parts := []struct {
		contentType string
		body        string
	}{
		{contentType: "text/plain; charset=utf-8", body: msg.Text},
		{contentType: "text/html; charset=utf-8", body: msg.HTML},
	}
	for _, part := range parts {
		if part.body == "" {
			continue
		}
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, fmt.Errorf("smtp: building message: %w", err)
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("smtp: building message: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("smtp: building message: %w", err)
	}

	return append([]byte(header), buf.Bytes()...), nil
}
