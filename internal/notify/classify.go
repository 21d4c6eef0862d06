package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// StatusError is returned by HTTP-backed providers for non-2xx responses.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Code, e.Body)
}

// ClassifyStatus maps an HTTP status from a provider to an outcome kind.
// Rate limiting, request timeouts and server errors are retryable.
func ClassifyStatus(code int) OutcomeKind {
	switch {
	case code >= 200 && code < 300:
		return Succeeded
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout, code >= 500:
		return TransientFailure
	default:
		return PermanentFailure
	}
}

// permanentMarkers are substrings of provider errors that retrying cannot
// fix.
var permanentMarkers = []string{
	"not verified",
	"validation error",
	"invalid",
	"malformed",
	"no recipients",
	"recipient is required",
	"unsubscribed",
	"not registered",
	"rejected",
}

// ClassifyError turns a provider error into an outcome. Errors that match no
// permanent marker are transient.
func ClassifyError(err error) Outcome {
	if err == nil {
		return Success()
	}

	var se *StatusError
	if errors.As(err, &se) {
		return Outcome{Kind: ClassifyStatus(se.Code), Reason: err.Error()}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Transient("%v", err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Transient("%v", err)
	}

	msg := strings.ToLower(err.Error())
	for _, m := range permanentMarkers {
		if strings.Contains(msg, m) {
			return Permanent("%v", err)
		}
	}
	return Transient("%v", err)
}
