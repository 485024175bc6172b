package event

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Flag is a boolean-like column value such as "Yes", "no" or "".
// Only "yes" (under case folding) counts as set.
type Flag string

// IsYes reports whether the flag reads "yes" in any letter case.
func (f Flag) IsYes() bool {
	return foldEqual(string(f), "yes")
}

// Event is one session or sales event row.
type Event struct {
	ID        string    `json:"id" yaml:"id"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// EntityID is the salesperson name; empty when the session had none.
	EntityID     string `json:"entity_id,omitempty" yaml:"entity_id,omitempty"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	DeviceType   string `json:"device_type,omitempty" yaml:"device_type,omitempty"`
	ReferrerType string `json:"referrer_type,omitempty" yaml:"referrer_type,omitempty"`
	CampaignType string `json:"campaign_type,omitempty" yaml:"campaign_type,omitempty"`
	PageType     string `json:"page_type,omitempty" yaml:"page_type,omitempty"`
	UserAgent    string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	DemoProduct  string `json:"demo_product,omitempty" yaml:"demo_product,omitempty"`

	SaleMade      Flag `json:"sale_made,omitempty" yaml:"sale_made,omitempty"`
	DemoRequested Flag `json:"demo_requested,omitempty" yaml:"demo_requested,omitempty"`

	// TransactionAmount is only meaningful when SaleMade is set.
	TransactionAmount float64 `json:"transaction_amount,omitempty" yaml:"transaction_amount,omitempty"`

	// TimeOnPage is minutes spent on the product page.
	TimeOnPage float64 `json:"time_on_page,omitempty" yaml:"time_on_page,omitempty"`
}

// IsSale reports whether the event recorded a successful sale.
func (e Event) IsSale() bool {
	return e.SaleMade.IsYes()
}

// IsDemo reports whether the event requested a product demo.
func (e Event) IsDemo() bool {
	return e.DemoRequested.IsYes()
}

// IsProductPage reports whether the event landed on a product page.
// Page types are compared trimmed and lowercased.
func (e Event) IsProductPage() bool {
	return strings.ToLower(strings.TrimSpace(e.PageType)) == "product page"
}

// Date returns the calendar date portion of the timestamp, at midnight
// in the timestamp's own location.
func (e Event) Date() time.Time {
	y, m, d := e.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.Timestamp.Location())
}

// Value returns the string value of a categorical column.
// The second result is false for columns that are not categorical.
func (e Event) Value(c Column) (string, bool) {
	switch c {
	case ColumnCountry:
		return e.Region, true
	case ColumnDeviceType:
		return e.DeviceType, true
	case ColumnReferrerType:
		return e.ReferrerType, true
	case ColumnCampaignType:
		return e.CampaignType, true
	case ColumnEntityID:
		return e.EntityID, true
	case ColumnPageType:
		return e.PageType, true
	case ColumnDemoProduct:
		return e.DemoProduct, true
	case ColumnUserAgent:
		return e.UserAgent, true
	case ColumnSaleMade:
		return string(e.SaleMade), true
	case ColumnDemoRequested:
		return string(e.DemoRequested), true
	default:
		return "", false
	}
}

// FoldEqual reports whether a and b are equal under Unicode case folding.
func FoldEqual(a, b string) bool {
	return foldEqual(a, b)
}

func foldEqual(a, b string) bool {
	// Casers are stateful; one per call keeps this safe for concurrent use.
	return cases.Fold().String(a) == cases.Fold().String(b)
}
