package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/kpidash/internal/event"
)

var (
	// ErrInvalidEvent is returned by WriteEvents for events that cannot be stored.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrReadOnly is returned by WriteEvents on a store from OpenReadOnly.
	ErrReadOnly = errors.New("store is read-only")
)

// WriteEvents upserts events by id in a single transaction.
// Either every event is written or none is.
func (s *Store) WriteEvents(ctx context.Context, events []event.Event) error {
	if s.readOnly {
		return fmt.Errorf("write events: %w", ErrReadOnly)
	}
	for i, e := range events {
		if e.ID == "" {
			return fmt.Errorf("write events: %w: event %d has no id", ErrInvalidEvent, i)
		}
		if e.Timestamp.IsZero() {
			return fmt.Errorf("write events: %w: event %q has no timestamp", ErrInvalidEvent, e.ID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write events: begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events
		(id, ts, ts_nanos, year, month, entity_id, region, device_type, referrer_type,
		 campaign_type, page_type, user_agent, demo_product, sale_made, demo_requested,
		 transaction_amount, time_on_page)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ts = excluded.ts,
			ts_nanos = excluded.ts_nanos,
			year = excluded.year,
			month = excluded.month,
			entity_id = excluded.entity_id,
			region = excluded.region,
			device_type = excluded.device_type,
			referrer_type = excluded.referrer_type,
			campaign_type = excluded.campaign_type,
			page_type = excluded.page_type,
			user_agent = excluded.user_agent,
			demo_product = excluded.demo_product,
			sale_made = excluded.sale_made,
			demo_requested = excluded.demo_requested,
			transaction_amount = excluded.transaction_amount,
			time_on_page = excluded.time_on_page
	`)
	if err != nil {
		return fmt.Errorf("write events: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.ID,
			e.Timestamp.Format(time.RFC3339Nano),
			e.Timestamp.UnixNano(),
			e.Timestamp.Year(),
			int(e.Timestamp.Month()),
			e.EntityID,
			e.Region,
			e.DeviceType,
			e.ReferrerType,
			e.CampaignType,
			e.PageType,
			e.UserAgent,
			e.DemoProduct,
			string(e.SaleMade),
			string(e.DemoRequested),
			e.TransactionAmount,
			e.TimeOnPage,
		)
		if err != nil {
			return fmt.Errorf("write events: %q: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write events: commit: %w", err)
	}
	return nil
}

// ReadEvents loads every event in deterministic order.
func (s *Store) ReadEvents(ctx context.Context) (event.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, entity_id, region, device_type, referrer_type, campaign_type,
		       page_type, user_agent, demo_product, sale_made, demo_requested,
		       transaction_amount, time_on_page
		FROM events
		ORDER BY ts_nanos ASC, id ASC COLLATE BINARY
	`)
	if err != nil {
		return event.Dataset{}, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			e          event.Event
			ts         string
			sale, demo string
		)
		if err := rows.Scan(
			&e.ID, &ts, &e.EntityID, &e.Region, &e.DeviceType, &e.ReferrerType, &e.CampaignType,
			&e.PageType, &e.UserAgent, &e.DemoProduct, &sale, &demo,
			&e.TransactionAmount, &e.TimeOnPage,
		); err != nil {
			return event.Dataset{}, fmt.Errorf("read events: scan: %w", err)
		}
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return event.Dataset{}, fmt.Errorf("read events: %q: parse timestamp: %w", e.ID, err)
		}
		e.SaleMade = event.Flag(sale)
		e.DemoRequested = event.Flag(demo)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return event.Dataset{}, fmt.Errorf("read events: %w", err)
	}
	return event.NewDataset(events), nil
}

// Years returns the distinct calendar years present in the log, ascending.
func (s *Store) Years(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT year FROM events ORDER BY year ASC")
	if err != nil {
		return nil, fmt.Errorf("read years: %w", err)
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("read years: scan: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read years: %w", err)
	}
	return years, nil
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
