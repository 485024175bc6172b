package event

import "fmt"

// Column names a categorical event column usable in filters and group keys.
type Column string

const (
	ColumnCountry       Column = "country"
	ColumnDeviceType    Column = "device_type"
	ColumnReferrerType  Column = "referrer_type"
	ColumnCampaignType  Column = "campaign_type"
	ColumnEntityID      Column = "entity_id"
	ColumnPageType      Column = "page_type"
	ColumnDemoProduct   Column = "demo_product"
	ColumnUserAgent     Column = "user_agent"
	ColumnSaleMade      Column = "sale_made"
	ColumnDemoRequested Column = "demo_requested"
)

// Columns lists every categorical column in display order.
var Columns = []Column{
	ColumnCountry,
	ColumnDeviceType,
	ColumnReferrerType,
	ColumnCampaignType,
	ColumnEntityID,
	ColumnPageType,
	ColumnDemoProduct,
	ColumnUserAgent,
	ColumnSaleMade,
	ColumnDemoRequested,
}

// CaseInsensitive reports whether values of the column compare with case folding.
// Only the boolean-like flag columns do.
func (c Column) CaseInsensitive() bool {
	return c == ColumnSaleMade || c == ColumnDemoRequested
}

// ParseColumn validates a column name.
func ParseColumn(s string) (Column, error) {
	for _, c := range Columns {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown column %q", s)
}
