package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/price-alert-dispatcher/internal/engine"
	"github.com/donaldgifford/price-alert-dispatcher/internal/metrics"
	"github.com/donaldgifford/price-alert-dispatcher/pkg/condition"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// ObservationSubmitter queues observations for evaluation.
type ObservationSubmitter interface {
	Submit(ctx context.Context, obs domain.Observation) error
}

// ObservationsHandler accepts pushed market observations.
type ObservationsHandler struct {
	submitter ObservationSubmitter
	now       func() time.Time
}

// NewObservationsHandler creates a new ObservationsHandler.
func NewObservationsHandler(s ObservationSubmitter) *ObservationsHandler {
	return &ObservationsHandler{submitter: s, now: time.Now}
}

// ObservationBody is a single pushed observation.
type ObservationBody struct {
	EntityID  string        `json:"entity_id"           minLength:"1"`
	Metric    domain.Metric `json:"metric,omitempty"    enum:"price,volume"`
	Value     float64       `json:"value"`
	Timestamp time.Time     `json:"timestamp,omitempty" doc:"Defaults to the time of receipt"`
}

// SubmitObservationsInput carries a batch of observations.
type SubmitObservationsInput struct {
	Body struct {
		Observations []ObservationBody `json:"observations" minItems:"1" maxItems:"1000"`
	}
}

// SubmitObservationsOutput reports how many observations were queued.
type SubmitObservationsOutput struct {
	Body struct {
		Accepted int `json:"accepted"`
	}
}

// Submit queues every observation in the batch for evaluation. The batch is
// validated up front so a malformed entry rejects the request before any
// observation is queued.
func (h *ObservationsHandler) Submit(
	ctx context.Context,
	input *SubmitObservationsInput,
) (*SubmitObservationsOutput, error) {
	now := h.now().UTC()
	batch := make([]domain.Observation, 0, len(input.Body.Observations))
	for _, b := range input.Body.Observations {
		obs := domain.Observation{
			EntityID:  strings.ToUpper(strings.TrimSpace(b.EntityID)),
			Metric:    b.Metric,
			Value:     b.Value,
			Timestamp: b.Timestamp,
		}
		if obs.Metric == "" {
			obs.Metric = domain.MetricPrice
		}
		if obs.Timestamp.IsZero() {
			obs.Timestamp = now
		}
		if err := engine.Validate(obs); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		batch = append(batch, obs)
	}

	resp := &SubmitObservationsOutput{}
	for _, obs := range batch {
		metrics.ObservationsTotal.WithLabelValues("http").Inc()
		err := h.submitter.Submit(ctx, obs)
		switch {
		case errors.Is(err, engine.ErrNotRunning):
			return nil, huma.Error503ServiceUnavailable("evaluation engine is not running")
		case errors.Is(err, condition.ErrMalformedObservation):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		case err != nil:
			return nil, huma.Error500InternalServerError("submitting observation: " + err.Error())
		}
		resp.Body.Accepted++
	}
	return resp, nil
}

// RegisterObservationRoutes registers the observation push endpoint.
func RegisterObservationRoutes(api huma.API, h *ObservationsHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "submit-observations",
		Method:        http.MethodPost,
		Path:          "/api/v1/observations",
		Summary:       "Push market observations",
		Description:   "Queues observations for asynchronous evaluation against active rules.",
		Tags:          []string{"observations"},
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, h.Submit)
}
