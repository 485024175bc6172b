package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_IsYes(t *testing.T) {
	tests := []struct {
		flag Flag
		want bool
	}{
		{"yes", true},
		{"Yes", true},
		{"YES", true},
		{"no", false},
		{"", false},
		{"y", false},
		{" yes", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.flag), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flag.IsYes())
		})
	}
}

func TestEvent_IsProductPage(t *testing.T) {
	assert.True(t, Event{PageType: "Product Page"}.IsProductPage())
	assert.True(t, Event{PageType: "  product page "}.IsProductPage())
	assert.False(t, Event{PageType: "home"}.IsProductPage())
}

func TestEvent_Date(t *testing.T) {
	e := Event{Timestamp: time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC)}
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), e.Date())
}

func TestEvent_Value(t *testing.T) {
	e := Event{
		EntityID:      "Amantle",
		Region:        "Botswana",
		DeviceType:    "Mobile",
		ReferrerType:  "Search",
		CampaignType:  "Email",
		PageType:      "product page",
		UserAgent:     "Firefox",
		DemoProduct:   "AI Assistant",
		SaleMade:      "Yes",
		DemoRequested: "No",
	}

	want := map[Column]string{
		ColumnEntityID:      "Amantle",
		ColumnCountry:       "Botswana",
		ColumnDeviceType:    "Mobile",
		ColumnReferrerType:  "Search",
		ColumnCampaignType:  "Email",
		ColumnPageType:      "product page",
		ColumnUserAgent:     "Firefox",
		ColumnDemoProduct:   "AI Assistant",
		ColumnSaleMade:      "Yes",
		ColumnDemoRequested: "No",
	}
	for col, expected := range want {
		got, ok := e.Value(col)
		require.True(t, ok, "column %s should be categorical", col)
		assert.Equal(t, expected, got)
	}

	_, ok := e.Value(Column("transaction_amount"))
	assert.False(t, ok)
}

func TestColumn_CaseInsensitive(t *testing.T) {
	assert.True(t, ColumnSaleMade.CaseInsensitive())
	assert.True(t, ColumnDemoRequested.CaseInsensitive())
	assert.False(t, ColumnCountry.CaseInsensitive())
	assert.False(t, ColumnEntityID.CaseInsensitive())
}

func TestParseColumn(t *testing.T) {
	c, err := ParseColumn("device_type")
	require.NoError(t, err)
	assert.Equal(t, ColumnDeviceType, c)

	_, err = ParseColumn("Device Type")
	assert.Error(t, err)
}

func TestDataset_Immutable(t *testing.T) {
	src := []Event{{ID: "a"}, {ID: "b"}}
	ds := NewDataset(src)

	src[0].ID = "mutated"
	assert.Equal(t, "a", ds.Events()[0].ID, "dataset must not alias its input")

	out := ds.Events()
	out[1].ID = "mutated"
	assert.Equal(t, "b", ds.Events()[1].ID, "Events must return a copy")
}

func TestDataset_Select(t *testing.T) {
	ds := NewDataset([]Event{
		{ID: "1", SaleMade: "yes"},
		{ID: "2", SaleMade: "no"},
		{ID: "3", SaleMade: "YES"},
	})

	sales := ds.Select(Event.IsSale)
	require.Equal(t, 2, sales.Len())
	assert.Equal(t, "1", sales.Events()[0].ID)
	assert.Equal(t, "3", sales.Events()[1].ID)
	assert.Equal(t, 3, ds.Len())
}

func TestDataset_ZeroValue(t *testing.T) {
	var ds Dataset
	assert.Equal(t, 0, ds.Len())
	assert.NotNil(t, ds.Events())
	assert.Empty(t, ds.Events())
}
