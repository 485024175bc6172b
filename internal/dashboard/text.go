package dashboard

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/roach88/kpidash/internal/classify"
)

// WriteText renders the report as plain text.
//
// The output is deterministic: sections keyed by name are sorted, and
// numbers are printed with two decimals.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "view: %s\n", r.View)
	fmt.Fprintf(&b, "request: %s\n", r.RequestID)
	fmt.Fprintf(&b, "now: %s\n", r.Now.Format(time.RFC3339))
	fmt.Fprintf(&b, "filter: %s\n", r.Signature)
	fmt.Fprintf(&b, "events: %d\n", r.Events)
	fmt.Fprintf(&b, "years: current=%d previous=%d\n", r.Years.Current, r.Years.Previous)

	if len(r.KPIs) > 0 {
		b.WriteString("\nkpis:\n")
		for _, k := range r.KPIs {
			writeKPI(&b, k)
		}
	}

	if len(r.Series) > 0 {
		b.WriteString("\nseries:\n")
		for _, name := range sortedKeys(r.Series) {
			values := r.Series[name].Values()
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = num(v)
			}
			fmt.Fprintf(&b, "  %s: %s\n", name, strings.Join(parts, " "))
		}
	}

	if len(r.Breakdowns) > 0 {
		b.WriteString("\nbreakdowns:\n")
		for _, name := range sortedKeys(r.Breakdowns) {
			fmt.Fprintf(&b, "  %s:\n", name)
			for _, row := range r.Breakdowns[name] {
				fmt.Fprintf(&b, "    %s: rows=%d value=%s\n", strings.Join(row.Keys, ","), row.Rows, num(row.Value.V))
			}
		}
	}

	if len(r.Leaderboard) > 0 {
		b.WriteString("\nleaderboard:\n")
		for i, l := range r.Leaderboard {
			fmt.Fprintf(&b, "  %d. %s revenue=%s sales=%d\n", i+1, l.Name, num(l.Revenue), l.Sales)
		}
	}

	if len(r.Funnel) > 0 {
		b.WriteString("\nfunnel:\n")
		for _, f := range r.Funnel {
			fmt.Fprintf(&b, "  %s: demos=%d sales=%d\n", f.Product, f.Demos, f.Sales)
		}
	}

	if m := r.Motivation; m != nil {
		fmt.Fprintf(&b, "\nmotivation: %s %q this_year=%s last_year=%s goal=%s\n",
			m.Tier, m.Message, num(m.ThisYear), num(m.LastYear), num(m.Goal))
	}

	if len(r.Salespeople) > 0 {
		fmt.Fprintf(&b, "\nsalespeople: %s\n", strings.Join(r.Salespeople, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeKPI(b *strings.Builder, k classify.KPIResult) {
	if !k.Defined {
		fmt.Fprintf(b, "  %s: undefined target=%s..%s\n", k.Name, num(k.Target.Lower), num(k.Target.Upper))
		return
	}
	fmt.Fprintf(b, "  %s: %s vs %s %s %s delta=%s (%s%%)\n",
		k.Name, num(k.Value), num(k.Comparison), k.Status, k.Trend, num(k.Delta), num(k.DeltaPercent))
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
