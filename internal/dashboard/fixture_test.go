package dashboard

import (
	"time"

	"github.com/roach88/kpidash/internal/event"
	"github.com/roach88/kpidash/internal/testutil"
)

// now is Thursday 15 May 2025: month 5, quarter 2.
var now = time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func fixture() event.Dataset {
	return event.NewDataset([]event.Event{
		{
			ID: "s1", Timestamp: day(2025, time.May, 3), EntityID: "Amantle", Region: "Botswana",
			DeviceType: "Mobile", ReferrerType: "Search", UserAgent: "Chrome", PageType: "Product Page",
			DemoProduct: "Widget", SaleMade: "Yes", TransactionAmount: 1000,
		},
		{
			ID: "s2", Timestamp: day(2025, time.April, 20), EntityID: "Amantle", Region: "Botswana",
			DeviceType: "Desktop", ReferrerType: "Direct", UserAgent: "Firefox", PageType: "Home",
			SaleMade: "yes", TransactionAmount: 500,
		},
		{
			ID: "s3", Timestamp: day(2025, time.May, 10), EntityID: "Lorato", Region: "Namibia",
			DeviceType: "Mobile", ReferrerType: "Search", UserAgent: "Chrome", PageType: "Home",
			DemoProduct: "Gadget", SaleMade: "YES", TransactionAmount: 2000,
		},
		{
			ID: "s4", Timestamp: day(2024, time.May, 10), EntityID: "Lorato", Region: "Botswana",
			DeviceType: "Mobile", PageType: "Home", SaleMade: "yes", TransactionAmount: 300,
		},
		{
			ID: "s5", Timestamp: day(2024, time.November, 1), EntityID: "Kaone", Region: "Namibia",
			DeviceType: "Tablet", PageType: "Home", SaleMade: "yes", TransactionAmount: 700,
		},
		{
			ID: "v1", Timestamp: day(2025, time.May, 11), Region: "Botswana", DeviceType: "Mobile",
			PageType: "Home", DemoProduct: "Widget", SaleMade: "no", DemoRequested: "Yes", TimeOnPage: 100,
		},
		{
			ID: "v2", Timestamp: day(2025, time.January, 15), Region: "Namibia", DeviceType: "Desktop",
			PageType: " product page ", SaleMade: "no", TimeOnPage: 200,
		},
	})
}

func request(view View) Request {
	return NewRequest(testutil.NewFixedClock(now), testutil.NewFixedIDGenerator("req-1"), view)
}
