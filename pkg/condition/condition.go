// Package condition evaluates alert rule conditions against observations.
// Evaluation is pure: callers own persistence of the resulting side.
package condition

import (
	"errors"
	"fmt"
	"math"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// ErrMalformedObservation is returned for observations that cannot be
// compared, such as NaN or infinite values.
var ErrMalformedObservation = errors.New("malformed observation")

// Crossing describes how a rule's side changed on an observation.
type Crossing string

// Crossing constants.
const (
	Unchanged   Crossing = "unchanged"
	CrossedUp   Crossing = "crossed_up"
	CrossedDown Crossing = "crossed_down"
)

// eqTolerance is the relative tolerance for the eq operator.
const eqTolerance = 1e-9

// Result is the outcome of evaluating one observation.
type Result struct {
	Crossing Crossing
	// Side is the new side the rule must be persisted with.
	Side domain.Side
	// Value is what was compared with the threshold: the observed value, or
	// the percentage change for pct_change rules.
	Value float64
}

// Fires reports whether the result should produce a notification.
func (r Result) Fires() bool {
	return r.Crossing == CrossedUp
}

// Evaluate compares obs with rule's condition and reports the crossing
// relative to rule.LastState. The first observation for a rule establishes
// its side without firing.
//
// baseline is consulted only for pct_change rules. A nil or zero baseline is
// treated as no change.
func Evaluate(rule *domain.AlertRule, obs domain.Observation, baseline *float64) (Result, error) {
	if math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0) {
		return Result{}, fmt.Errorf("%w: value %v for %s", ErrMalformedObservation, obs.Value, obs.EntityID)
	}
	if !rule.Condition.Operator.Valid() {
		return Result{}, fmt.Errorf("rule %s: unknown operator %q", rule.ID, rule.Condition.Operator)
	}

	value := obs.Value
	if rule.Condition.Operator == domain.OperatorPctChange {
		value = PercentChange(baseline, obs.Value)
	}

	side := SideOf(rule.Condition, value)
	res := Result{Side: side, Value: value, Crossing: Unchanged}

	switch {
	case rule.LastState == domain.SideUnset:
	case rule.LastState == domain.SideBelow && side == domain.SideAbove:
		res.Crossing = CrossedUp
	case rule.LastState == domain.SideAbove && side == domain.SideBelow:
		res.Crossing = CrossedDown
	}

	return res, nil
}

// SideOf reports whether value satisfies cond.
func SideOf(cond domain.Condition, value float64) domain.Side {
	var holds bool
	switch cond.Operator {
	case domain.OperatorGTE:
		holds = value >= cond.Threshold
	case domain.OperatorLTE:
		holds = value <= cond.Threshold
	case domain.OperatorEQ:
		holds = math.Abs(value-cond.Threshold) <= eqTolerance*math.Max(1, math.Abs(cond.Threshold))
	case domain.OperatorPctChange:
		// A negative threshold watches for drops.
		if cond.Threshold < 0 {
			holds = value <= cond.Threshold
		} else {
			holds = value >= cond.Threshold
		}
	}
	if holds {
		return domain.SideAbove
	}
	return domain.SideBelow
}

// PercentChange returns the change from baseline to value in percent.
func PercentChange(baseline *float64, value float64) float64 {
	if baseline == nil || *baseline == 0 {
		return 0
	}
	return (value - *baseline) / math.Abs(*baseline) * 100
}
