package factory

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// TemplateData is the input to a category's title and body templates.
type TemplateData struct {
	EntityID   string
	Metric     domain.Metric
	Operator   domain.Operator
	Threshold  float64
	Value      float64
	Compared   float64
	ObservedAt time.Time

	// Title and Body carry the caller's text for system notifications.
	Title string
	Body  string
}

type categoryTemplate struct {
	title *template.Template
	body  *template.Template
}

var funcs = template.FuncMap{
	"num": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pct": func(v float64) string { return fmt.Sprintf("%+.2f%%", v) },
	"verb": func(op domain.Operator) string {
		switch op {
		case domain.OperatorGTE:
			return "rose to or above"
		case domain.OperatorLTE:
			return "fell to or below"
		case domain.OperatorEQ:
			return "reached"
		default:
			return "moved past"
		}
	},
	"upper": strings.ToUpper,
	"ts":    func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}

var templateSources = map[domain.Category][2]string{
	domain.CategoryPriceAlert: {
		`{{if eq .Operator "pct_change"}}{{.EntityID}} {{.Metric}} changed {{pct .Compared}}{{else}}{{.EntityID}} {{.Metric}} {{verb .Operator}} {{num .Threshold}}{{end}}`,
		`{{if eq .Operator "pct_change"}}{{.EntityID}} {{.Metric}} is {{num .Value}}, a change of {{pct .Compared}} against your {{pct .Threshold}} alert.{{else}}{{.EntityID}} {{.Metric}} is {{num .Value}}, which meets your alert ({{.Metric}} {{.Operator}} {{num .Threshold}}).{{end}}
Observed at {{ts .ObservedAt}}.`,
	},
	domain.CategorySystem:  {`{{.Title}}`, `{{.Body}}`},
	domain.CategoryInfo:    {`{{.Title}}`, `{{.Body}}`},
	domain.CategoryTask:    {`Task: {{.Title}}`, `{{.Body}}`},
	domain.CategoryWarning: {`Warning: {{.Title}}`, `{{.Body}}`},
	domain.CategoryError:   {`{{upper "error"}}: {{.Title}}`, `{{.Body}}`},
}

// Templates renders notification text by category.
type Templates struct {
	byCategory map[domain.Category]categoryTemplate
}

// NewTemplates parses the built-in templates.
func NewTemplates() (*Templates, error) {
	t := &Templates{byCategory: make(map[domain.Category]categoryTemplate, len(templateSources))}
	for cat, src := range templateSources {
		title, err := template.New(string(cat) + ".title").Funcs(funcs).Parse(src[0])
		if err != nil {
			return nil, fmt.Errorf("parsing %s title template: %w", cat, err)
		}
		body, err := template.New(string(cat) + ".body").Funcs(funcs).Parse(src[1])
		if err != nil {
			return nil, fmt.Errorf("parsing %s body template: %w", cat, err)
		}
		t.byCategory[cat] = categoryTemplate{title: title, body: body}
	}
	return t, nil
}

// Render returns the title and body for a notification of category cat.
func (t *Templates) Render(cat domain.Category, data TemplateData) (title, body string, err error) {
	ct, ok := t.byCategory[cat]
	if !ok {
		return "", "", fmt.Errorf("no template for category %q", cat)
	}

	var buf bytes.Buffer
	if err := ct.title.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("rendering %s title: %w", cat, err)
	}
	title = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := ct.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("rendering %s body: %w", cat, err)
	}
	body = strings.TrimSpace(buf.String())

	return title, body, nil
}
