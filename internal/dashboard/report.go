package dashboard

import (
	"time"

	"github.com/roach88/kpidash/internal/aggregate"
	"github.com/roach88/kpidash/internal/classify"
	"github.com/roach88/kpidash/internal/series"
	"github.com/roach88/kpidash/internal/window"
)

// Report is the computed content of one view.
//
// Every numeric field keeps full precision; currency rounding is left to
// whatever renders the report.
type Report struct {
	RequestID string    `json:"request_id"`
	View      View      `json:"view"`
	Now       time.Time `json:"now"`

	// Signature is the filter signature the report was computed under.
	Signature string `json:"signature"`

	// Events is the number of events left after filtering.
	Events int `json:"events"`

	Years   window.Years `json:"years"`
	Windows window.Set   `json:"windows"`

	KPIs []classify.KPIResult `json:"kpis"`

	// Series holds monthly series aligned to Jan..Dec, keyed by name.
	Series map[string]series.Aligned `json:"series,omitempty"`

	// Breakdowns holds grouped counts and sums, keyed by name.
	Breakdowns map[string][]aggregate.Row `json:"breakdowns,omitempty"`

	Leaderboard []LeaderRow     `json:"leaderboard,omitempty"`
	Funnel      []FunnelRow     `json:"funnel,omitempty"`
	Motivation  *MotivationTile `json:"motivation,omitempty"`

	// Salespeople lists the salesperson selector options of the sales view.
	Salespeople []string `json:"salespeople,omitempty"`
}

// KPI returns the named KPI and whether the report has it.
func (r *Report) KPI(name string) (classify.KPIResult, bool) {
	for _, k := range r.KPIs {
		if k.Name == name {
			return k, true
		}
	}
	return classify.KPIResult{}, false
}

// LeaderRow is one salesperson on the managerial leaderboard.
type LeaderRow struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Sales   int     `json:"sales"`
}

// FunnelRow pairs demo requests with sales for one demo product.
type FunnelRow struct {
	Product string `json:"product"`
	Demos   int    `json:"demos"`
	Sales   int    `json:"sales"`
}

// MotivationTile is the sales view's encouragement tile.
type MotivationTile struct {
	Tier     classify.Motivation `json:"tier"`
	Message  string              `json:"message"`
	Goal     float64             `json:"goal"`
	ThisYear float64             `json:"this_year"`
	LastYear float64             `json:"last_year"`
}

// KPI names.
const (
	KPIRevenueMonth     = "revenue_month"
	KPIRevenueYTD       = "revenue_ytd"
	KPIRevenueQTD       = "revenue_qtd"
	KPISalesYTD         = "sales_ytd"
	KPIVisits           = "visits"
	KPIVisitsYoY        = "visits_yoy"
	KPIProductVisits    = "product_visits"
	KPIProductVisitsYoY = "product_visits_yoy"
	KPISales            = "sales"
	KPISalesYoY         = "sales_yoy"
	KPIAvgTimeOnPage    = "avg_time_on_page"
	KPIDemoRequests     = "demo_requests"
)
