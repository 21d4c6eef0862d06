package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	apiclient "github.com/donaldgifford/price-alert-dispatcher/internal/api/client"
	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func writeRuleTable(w io.Writer, rules []domain.AlertRule) error {
	tw := newTabWriter(w)
	tw.writef("ID\tOWNER\tENTITY\tMETRIC\tCONDITION\tSTATE\tACTIVE\n")
	for i := range rules {
		r := &rules[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%v\n",
			r.ID,
			r.OwnerID,
			r.EntityID,
			r.Metric,
			formatCondition(r.Condition),
			orDash(string(r.LastState)),
			r.Active,
		)
	}
	return tw.finish()
}

func writeRuleDetail(w io.Writer, r *domain.AlertRule) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", r.ID)
	tw.writef("Owner:\t%s\n", r.OwnerID)
	tw.writef("Entity:\t%s\n", r.EntityID)
	tw.writef("Metric:\t%s\n", r.Metric)
	tw.writef("Condition:\t%s\n", formatCondition(r.Condition))
	tw.writef("Last State:\t%s\n", orDash(string(r.LastState)))
	tw.writef("Active:\t%v\n", r.Active)
	tw.writef("Created:\t%s\n", r.CreatedAt.Format(timeLayout))
	tw.writef("Updated:\t%s\n", r.UpdatedAt.Format(timeLayout))
	return tw.finish()
}

func writeNotificationTable(w io.Writer, ns []domain.Notification) error {
	tw := newTabWriter(w)
	tw.writef("ID\tCATEGORY\tSTATUS\tTITLE\tCHANNELS\tCREATED\n")
	for i := range ns {
		n := &ns[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			n.ID,
			n.Category,
			n.Status,
			truncate(n.Title, 40),
			joinChannels(n.Channels),
			n.CreatedAt.Format(timeLayout),
		)
	}
	return tw.finish()
}

func writeNotificationDetail(w io.Writer, n *apiclient.NotificationDetail) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", n.ID)
	tw.writef("Owner:\t%s\n", n.OwnerID)
	if n.RuleID != nil {
		tw.writef("Rule:\t%s\n", *n.RuleID)
	}
	tw.writef("Title:\t%s\n", n.Title)
	tw.writef("Body:\t%s\n", n.Body)
	tw.writef("Category:\t%s\n", n.Category)
	tw.writef("Priority:\t%s\n", n.Priority)
	tw.writef("Status:\t%s\n", n.Status)
	if n.FailureReason != "" {
		tw.writef("Failure:\t%s\n", n.FailureReason)
	}
	tw.writef("Created:\t%s\n", n.CreatedAt.Format(timeLayout))
	if n.ReadAt != nil {
		tw.writef("Read:\t%s\n", n.ReadAt.Format(timeLayout))
	}
	if err := tw.finish(); err != nil {
		return err
	}
	if len(n.Attempts) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, "\nAttempts:"); err != nil {
		return err
	}
	tw = newTabWriter(w)
	tw.writef("CHANNEL\tRECIPIENT\tATTEMPT\tSTATUS\tNEXT RETRY\tLAST ERROR\n")
	for i := range n.Attempts {
		a := &n.Attempts[i]
		tw.writef("%s\t%s\t%d\t%s\t%s\t%s\n",
			a.Channel,
			a.Recipient,
			a.AttemptNumber,
			a.Status,
			formatTime(a.NextRetryAt),
			orDash(truncate(a.LastError, 40)),
		)
	}
	return tw.finish()
}

func writeChannels(w io.Writer, p *domain.ChannelPreferences) error {
	tw := newTabWriter(w)
	tw.writef("CHANNEL\tADDRESS\tENABLED\n")
	for _, c := range p.Contacts {
		tw.writef("%s\t%s\t%v\n", c.Channel, c.Address, c.Enabled)
	}
	return tw.finish()
}

func writeSuppressionTable(w io.Writer, ss []domain.SuppressedTrigger) error {
	tw := newTabWriter(w)
	tw.writef("TIME\tCHANNEL\tCATEGORY\tRULE\tREASON\n")
	for i := range ss {
		s := &ss[i]
		rule := "-"
		if s.RuleID != nil {
			rule = *s.RuleID
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\n",
			s.CreatedAt.Format(timeLayout),
			s.Channel,
			s.Category,
			rule,
			s.Reason,
		)
	}
	return tw.finish()
}

func formatCondition(c domain.Condition) string {
	if c.Operator == domain.OperatorPctChange {
		return fmt.Sprintf("pct_change %+.2f%%", c.Threshold)
	}
	return fmt.Sprintf("%s %.4g", c.Operator, c.Threshold)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(timeLayout)
}

func joinChannels(chs []domain.Channel) string {
	if len(chs) == 0 {
		return "-"
	}
	parts := make([]string, len(chs))
	for i, ch := range chs {
		parts[i] = string(ch)
	}
	return strings.Join(parts, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
