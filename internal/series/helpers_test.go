package series

import (
	"time"

	"github.com/roach88/kpidash/internal/event"
)

func salesScenario() event.Dataset {
	return event.NewDataset([]event.Event{
		{ID: "a", Timestamp: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), SaleMade: "yes", TransactionAmount: 100},
		{ID: "b", Timestamp: time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC), SaleMade: "yes", TransactionAmount: 50},
	})
}
