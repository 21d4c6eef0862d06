package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
	"github.com/donaldgifford/price-alert-dispatcher/pkg/logger"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

type fakeProvider struct {
	name       string
	configured bool
	err        error

	mu   sync.Mutex
	sent []*EmailMessage
}

func (f *fakeProvider) Name() string       { return f.name }
func (f *fakeProvider) IsConfigured() bool { return f.configured }

func (f *fakeProvider) Send(_ context.Context, msg *EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newProviders(t *testing.T, primary string, fallback []string, ps ...*fakeProvider) *EmailProviders {
	t.Helper()
	r := NewEmailProviders(logger.Discard())
	for _, p := range ps {
		r.Register(p)
	}
	require.NoError(t, r.SetPrimary(primary))
	require.NoError(t, r.SetFallback(fallback...))
	return r
}

func TestEmailProviders_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		primaryErr   error
		fallbackErr  error
		primaryConf  bool
		wantErr      string
		wantPrimary  int
		wantFallback int
	}{
		{
			name:        "primary succeeds",
			primaryConf: true,
			wantPrimary: 1,
		},
		{
			name:         "transient primary failure falls back",
			primaryErr:   errors.New("connection refused"),
			primaryConf:  true,
			wantPrimary:  1,
			wantFallback: 1,
		},
		{
			name:        "permanent primary failure stops the chain",
			primaryErr:  errors.New("invalid recipient"),
			primaryConf: true,
			wantErr:     "invalid recipient",
			wantPrimary: 1,
		},
		{
			name:         "unconfigured primary is skipped",
			primaryConf:  false,
			wantFallback: 1,
		},
		{
			name:         "all providers fail returns first error",
			primaryErr:   errors.New("503 from primary"),
			fallbackErr:  errors.New("503 from fallback"),
			primaryConf:  true,
			wantErr:      "503 from primary",
			wantPrimary:  1,
			wantFallback: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			primary := &fakeProvider{name: "resend", configured: tt.primaryConf, err: tt.primaryErr}
			fallback := &fakeProvider{name: "ses", configured: true, err: tt.fallbackErr}
			r := newProviders(t, "resend", []string{"ses"}, primary, fallback)

			err := r.Send(context.Background(), &EmailMessage{To: []string{"a@example.com"}})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantPrimary, primary.calls())
			assert.Equal(t, tt.wantFallback, fallback.calls())
		})
	}
}

func TestEmailProviders_FallbackMetric(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "smtp", configured: true, err: errors.New("timeout")}
	fallback := &fakeProvider{name: "fallback-metric-test", configured: true}
	r := newProviders(t, "smtp", []string{"fallback-metric-test"}, primary, fallback)

	before := testutil.ToFloat64(metrics.EmailProviderFallbacksTotal.WithLabelValues("fallback-metric-test"))
	require.NoError(t, r.Send(context.Background(), &EmailMessage{To: []string{"a@example.com"}}))
	after := testutil.ToFloat64(metrics.EmailProviderFallbacksTotal.WithLabelValues("fallback-metric-test"))
	assert.InDelta(t, before+1, after, 0.001)
}

func TestEmailProviders_Registration(t *testing.T) {
	t.Parallel()

	r := NewEmailProviders(nil)
	assert.Error(t, r.SetPrimary("resend"))
	assert.Error(t, r.SetFallback("ses"))
	assert.ErrorIs(t, r.Send(context.Background(), &EmailMessage{}), ErrNoEmailProvider)
}

func TestEmailSender_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		recipient string
		err       error
		providers bool
		wantKind  OutcomeKind
	}{
		{name: "delivered", recipient: "bob@example.com", providers: true, wantKind: Succeeded},
		{name: "malformed address", recipient: "bob", providers: true, wantKind: PermanentFailure},
		{name: "provider timeout", recipient: "bob@example.com", err: context.DeadlineExceeded, providers: true, wantKind: TransientFailure},
		{name: "no provider configured", recipient: "bob@example.com", providers: false, wantKind: PermanentFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &fakeProvider{name: "smtp", configured: tt.providers, err: tt.err}
			r := NewEmailProviders(logger.Discard())
			r.Register(p)
			require.NoError(t, r.SetPrimary("smtp"))

			s := NewEmailSender(r, "alerts@example.com")
			assert.Equal(t, domain.ChannelEmail, s.Channel())

			out := s.Send(context.Background(), &Delivery{
				Recipient: tt.recipient,
				Title:     "AAPL crossed 200",
				Body:      "line one\n<b>line two</b>",
			})
			assert.Equal(t, tt.wantKind, out.Kind, out.Reason)

			if tt.wantKind == Succeeded {
				require.Equal(t, 1, p.calls())
				msg := p.sent[0]
				assert.Equal(t, "alerts@example.com", msg.From)
				assert.Equal(t, []string{"bob@example.com"}, msg.To)
				assert.Equal(t, "AAPL crossed 200", msg.Subject)
				assert.Contains(t, msg.HTML, "<p>&lt;b&gt;line two&lt;/b&gt;</p>")
			}
		})
	}
}

type fakeResend struct {
	params *resend.SendEmailRequest
	err    error
}

func (f *fakeResend) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "re_1"}, nil
}

func TestResendProvider(t *testing.T) {
	t.Parallel()

	assert.False(t, NewResendProvider("").IsConfigured())
	assert.True(t, NewResendProvider("re_test").IsConfigured())

	fake := &fakeResend{}
	p := &ResendProvider{emails: fake}
	err := p.Send(context.Background(), &EmailMessage{
		From:    "a@example.com",
		To:      []string{"b@example.com"},
		Subject: "s",
		Text:    "t",
		HTML:    "<p>t</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>t</p>", fake.params.Html)
	assert.Equal(t, "t", fake.params.Text)

	fake.err = errors.New("validation error: from")
	err = p.Send(context.Background(), &EmailMessage{To: []string{"b@example.com"}})
	require.Error(t, err)
	assert.Equal(t, PermanentFailure, ClassifyError(err).Kind)

	err = p.Send(context.Background(), &EmailMessage{})
	assert.ErrorContains(t, err, "no recipients")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Send(ctx, &EmailMessage{To: []string{"b@example.com"}}), context.Canceled)
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{}, nil
}

func TestSESProvider(t *testing.T) {
	t.Parallel()

	assert.False(t, (&SESProvider{}).IsConfigured())

	fake := &fakeSES{}
	p := &SESProvider{client: fake, region: "us-east-1"}
	require.NoError(t, p.Send(context.Background(), &EmailMessage{
		From:    "a@example.com",
		To:      []string{"b@example.com"},
		Subject: "subject",
		Text:    "plain",
	}))
	assert.Equal(t, "a@example.com", *fake.input.FromEmailAddress)
	assert.Equal(t, []string{"b@example.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "subject", *fake.input.Content.Simple.Subject.Data)
	assert.Equal(t, "plain", *fake.input.Content.Simple.Body.Text.Data)
	assert.Nil(t, fake.input.Content.Simple.Body.Html)

	fake.err = errors.New("TooManyRequestsException: throttled")
	err := p.Send(context.Background(), &EmailMessage{To: []string{"b@example.com"}})
	require.Error(t, err)
	assert.Equal(t, TransientFailure, ClassifyError(err).Kind)
}

func TestSMTPProvider_Configured(t *testing.T) {
	t.Parallel()

	assert.True(t, NewSMTPProvider("smtp.example.com", 587, "", "").IsConfigured())
	assert.False(t, NewSMTPProvider("", 587, "", "").IsConfigured())
	assert.Equal(t, "smtp", NewSMTPProvider("h", 25, "", "").Name())

	err := NewSMTPProvider("h", 25, "", "").Send(context.Background(), &EmailMessage{})
	assert.ErrorContains(t, err, "no recipients")
}

func TestBuildMIME(t *testing.T) {
	t.Parallel()

	raw, err := buildMIME(&EmailMessage{
		From:    "alerts@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Prix franchi",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
	})
	require.NoError(t, err)

	msg := string(raw)
	assert.True(t, strings.HasPrefix(msg, "From: alerts@example.com\r\n"))
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "text/plain; charset=utf-8")
	assert.Contains(t, msg, "plain body")
	assert.Contains(t, msg, "<p>html body</p>")
}
