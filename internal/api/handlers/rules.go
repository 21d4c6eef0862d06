package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/price-alert-dispatcher/internal/store"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

const ruleUpdateRetries = 3

// RulesHandler handles alert rule CRUD.
type RulesHandler struct {
	store store.Store
}

// NewRulesHandler creates a new RulesHandler.
func NewRulesHandler(s store.Store) *RulesHandler {
	return &RulesHandler{store: s}
}

// --- Input/Output types ---

// RuleBody is the writable part of an alert rule.
type RuleBody struct {
	OwnerID   string          `json:"owner_id"           doc:"Owner of the rule"             minLength:"1"`
	EntityID  string          `json:"entity_id"          doc:"Ticker or asset symbol"        minLength:"1"`
	Metric    domain.Metric   `json:"metric,omitempty"   doc:"Observed metric"               enum:"price,volume"`
	Operator  domain.Operator `json:"operator"           doc:"Comparison operator"           enum:"gte,lte,eq,pct_change"`
	Threshold float64         `json:"threshold"          doc:"Threshold value or percentage"`
	Active    *bool           `json:"active,omitempty"   doc:"Whether the rule is evaluated (default true)"`
}

// CreateRuleInput is the input for creating a rule.
type CreateRuleInput struct {
	Body RuleBody
}

// UpdateRuleBody holds the fields a rule update may change.
type UpdateRuleBody struct {
	Operator  domain.Operator `json:"operator,omitempty"  enum:"gte,lte,eq,pct_change"`
	Threshold *float64        `json:"threshold,omitempty"`
	Active    *bool           `json:"active,omitempty"`
}

// UpdateRuleInput is the input for updating a rule.
type UpdateRuleInput struct {
	ID   string `path:"id" doc:"Rule UUID"`
	Body UpdateRuleBody
}

// RuleIDInput addresses a single rule.
type RuleIDInput struct {
	ID string `path:"id" doc:"Rule UUID"`
}

// RuleOutput wraps a single rule.
type RuleOutput struct {
	Body domain.AlertRule
}

// ListRulesInput filters a rule listing.
type ListRulesInput struct {
	OwnerID    string `query:"owner_id"    doc:"Filter by owner"`
	ActiveOnly bool   `query:"active_only" doc:"Only active rules"`
	Limit      int    `query:"limit"       doc:"Number of results (default 50)" minimum:"0" maximum:"500"`
	Offset     int    `query:"offset"      doc:"Pagination offset"              minimum:"0"`
}

// ListRulesOutput is the response for listing rules.
type ListRulesOutput struct {
	Body struct {
		Rules []domain.AlertRule `json:"rules"`
	}
}

// --- Handlers ---

// CreateRule validates and stores a new rule. Its state starts unset, so the
// first observation seeds it without firing.
func (h *RulesHandler) CreateRule(ctx context.Context, input *CreateRuleInput) (*RuleOutput, error) {
	b := input.Body
	r := &domain.AlertRule{
		OwnerID:   b.OwnerID,
		EntityID:  strings.ToUpper(strings.TrimSpace(b.EntityID)),
		Metric:    b.Metric,
		Condition: domain.Condition{Operator: b.Operator, Threshold: b.Threshold},
		Category:  domain.CategoryPriceAlert,
		Active:    b.Active == nil || *b.Active,
		LastState: domain.SideUnset,
	}
	if r.Metric == "" {
		r.Metric = domain.MetricPrice
	}

	if err := validateRule(r); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	if err := h.store.CreateRule(ctx, r); err != nil {
		return nil, huma.Error500InternalServerError("creating rule: " + err.Error())
	}
	return &RuleOutput{Body: *r}, nil
}

// ListRules returns rules, newest first.
func (h *RulesHandler) ListRules(ctx context.Context, input *ListRulesInput) (*ListRulesOutput, error) {
	rules, err := h.store.ListRules(ctx, store.RuleQuery{
		OwnerID:    input.OwnerID,
		ActiveOnly: input.ActiveOnly,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("listing rules: " + err.Error())
	}
	if rules == nil {
		rules = []domain.AlertRule{}
	}

	resp := &ListRulesOutput{}
	resp.Body.Rules = rules
	return resp, nil
}

// GetRule returns a rule by ID.
func (h *RulesHandler) GetRule(ctx context.Context, input *RuleIDInput) (*RuleOutput, error) {
	r, err := h.store.GetRule(ctx, input.ID)
	if err != nil {
		return nil, storeError("rule", err)
	}
	return &RuleOutput{Body: *r}, nil
}

// UpdateRule changes a rule's condition or active flag. A changed condition
// resets the evaluation state so the next observation reseeds it.
func (h *RulesHandler) UpdateRule(ctx context.Context, input *UpdateRuleInput) (*RuleOutput, error) {
	r, err := h.modify(ctx, input.ID, func(r *domain.AlertRule) error {
		cond := r.Condition
		if input.Body.Operator != "" {
			cond.Operator = input.Body.Operator
		}
		if input.Body.Threshold != nil {
			cond.Threshold = *input.Body.Threshold
		}
		if cond != r.Condition {
			r.Condition = cond
			r.LastState = domain.SideUnset
		}
		if input.Body.Active != nil {
			r.Active = *input.Body.Active
		}
		return validateRule(r)
	})
	if err != nil {
		return nil, err
	}
	return &RuleOutput{Body: *r}, nil
}

// DeactivateRule stops a rule from being evaluated.
func (h *RulesHandler) DeactivateRule(ctx context.Context, input *RuleIDInput) (*RuleOutput, error) {
	r, err := h.modify(ctx, input.ID, func(r *domain.AlertRule) error {
		r.Active = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &RuleOutput{Body: *r}, nil
}

// DeleteRule removes a rule. Notifications it produced are kept.
func (h *RulesHandler) DeleteRule(ctx context.Context, input *RuleIDInput) (*struct{}, error) {
	if err := h.store.DeleteRule(ctx, input.ID); err != nil {
		return nil, storeError("rule", err)
	}
	return nil, nil
}

// modify applies fn to the current rule and saves it, reloading when the
// evaluator moved the rule's state in between.
func (h *RulesHandler) modify(
	ctx context.Context,
	id string,
	fn func(*domain.AlertRule) error,
) (*domain.AlertRule, error) {
	var err error
	for range ruleUpdateRetries {
		var r *domain.AlertRule
		r, err = h.store.GetRule(ctx, id)
		if err != nil {
			return nil, storeError("rule", err)
		}
		if verr := fn(r); verr != nil {
			return nil, huma.Error422UnprocessableEntity(verr.Error())
		}

		err = h.store.UpdateRule(ctx, r)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, storeError("rule", err)
		}
	}
	return nil, storeError("rule", err)
}

func validateRule(r *domain.AlertRule) error {
	var errs []error
	if r.OwnerID == "" {
		errs = append(errs, errors.New("owner_id is required"))
	}
	if r.EntityID == "" {
		errs = append(errs, errors.New("entity_id is required"))
	}
	if r.Metric != domain.MetricPrice && r.Metric != domain.MetricVolume {
		errs = append(errs, errors.New("metric must be price or volume"))
	}
	if !r.Condition.Operator.Valid() {
		errs = append(errs, errors.New("operator must be one of gte, lte, eq, pct_change"))
	}
	if math.IsNaN(r.Condition.Threshold) || math.IsInf(r.Condition.Threshold, 0) {
		errs = append(errs, errors.New("threshold must be finite"))
	}
	if r.Condition.Operator == domain.OperatorPctChange && r.Condition.Threshold == 0 {
		errs = append(errs, errors.New("pct_change threshold must be non-zero"))
	}
	return errors.Join(errs...)
}

// RegisterRuleRoutes registers rule endpoints with the Huma API.
func RegisterRuleRoutes(api huma.API, h *RulesHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-rule",
		Method:        http.MethodPost,
		Path:          "/api/v1/rules",
		Summary:       "Create an alert rule",
		Description:   "Creates an edge-triggered alert rule on an entity's price or volume.",
		Tags:          []string{"rules"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateRule)

	huma.Register(api, huma.Operation{
		OperationID: "list-rules",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules",
		Summary:     "List alert rules",
		Tags:        []string{"rules"},
	}, h.ListRules)

	huma.Register(api, huma.Operation{
		OperationID: "get-rule",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules/{id}",
		Summary:     "Get an alert rule",
		Tags:        []string{"rules"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetRule)

	huma.Register(api, huma.Operation{
		OperationID: "update-rule",
		Method:      http.MethodPut,
		Path:        "/api/v1/rules/{id}",
		Summary:     "Update an alert rule",
		Description: "Changes the condition or active flag. A new condition resets the rule's evaluation state.",
		Tags:        []string{"rules"},
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, h.UpdateRule)

	huma.Register(api, huma.Operation{
		OperationID: "deactivate-rule",
		Method:      http.MethodPost,
		Path:        "/api/v1/rules/{id}/deactivate",
		Summary:     "Deactivate an alert rule",
		Tags:        []string{"rules"},
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, h.DeactivateRule)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-rule",
		Method:        http.MethodDelete,
		Path:          "/api/v1/rules/{id}",
		Summary:       "Delete an alert rule",
		Tags:          []string{"rules"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.DeleteRule)
}
