// Package validate checks generated dashboards and rule files: every query
// must parse as PromQL and reference only metrics the service exports.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/price-alert-dispatcher/tools/dashgen/rules"
)

// histogramSuffixes are stripped before a selector is looked up, since
// histograms are exported under their base name.
var histogramSuffixes = []string{"_bucket", "_sum", "_count"}

// Result collects validation problems. Errors fail generation; warnings
// are reported but do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool { return len(r.Errors) == 0 }

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Expr parses a PromQL expression and checks every vector selector against
// known. where prefixes each message.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.errorf("%s: invalid PromQL %q: %v", where, expr, err)
		return res
	}

	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		if !known[baseMetric(vs.Name, known)] {
			res.errorf("%s: unknown metric %q", where, vs.Name)
		}
		return nil
	})
	return res
}

func baseMetric(name string, known map[string]bool) string {
	if known[name] {
		return name
	}
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return base
		}
	}
	return name
}

// jsonPanel is the subset of a rendered panel the validator reads. Rows
// carry their children in Panels.
type jsonPanel struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Targets []struct {
		Expr  string `json:"expr"`
		RefID string `json:"refId"`
	} `json:"targets"`
	Panels []jsonPanel `json:"panels"`
}

// Dashboard validates every query in every panel of dash, including panels
// nested in rows.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	raw, err := json.Marshal(dash)
	if err != nil {
		res.errorf("marshaling dashboard: %v", err)
		return res
	}
	var doc struct {
		Panels []jsonPanel `json:"panels"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		res.errorf("decoding dashboard: %v", err)
		return res
	}

	for _, p := range doc.Panels {
		res.merge(panel(p, known))
	}
	return res
}

func panel(p jsonPanel, known map[string]bool) Result {
	var res Result

	if p.Type == "row" {
		for _, child := range p.Panels {
			res.merge(panel(child, known))
		}
		return res
	}

	if len(p.Targets) == 0 {
		res.warnf("panel %q has no queries", p.Title)
	}
	for _, t := range p.Targets {
		if t.Expr == "" {
			res.errorf("panel %q query %s has an empty expression", p.Title, t.RefID)
			continue
		}
		res.merge(Expr(fmt.Sprintf("panel %q query %s", p.Title, t.RefID), t.Expr, known))
	}
	return res
}

// Rules validates every expression in cr. Recording rule names must be
// listed in known so dashboards that reference them pass validation too.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			if r.Record != "" && !known[r.Record] {
				res.errorf("rule %s: recording rule name is not a known metric", r.Record)
			}
			if r.Alert != "" && r.Labels["severity"] == "" {
				res.warnf("alert %s has no severity label", r.Alert)
			}
			res.merge(Expr("rule "+name, r.Expr, known))
		}
	}
	return res
}
