// Package predict is the boundary to the session-outcome model.
//
// The model itself is an external artifact. This package fixes the feature
// schema a row must carry, validates batches before handing them over, and
// turns every failure into one BatchError for the whole batch. A caller gets
// either one label per input row or an error, never a partial result.
//
// Command runs the model as a child process speaking JSON on stdin and
// stdout; Func adapts a plain function for tests and embedding.
package predict

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Feature column names, in the order the model was trained on.
const (
	SessionDuration   = "Session Duration (s)"
	TimeOnProductPage = "Time on Product Page"
	TotalVisits       = "Total Visits"
	PageType          = "Page Type"
	FunnelStage       = "Conversion Funnel Stage"
	EventType         = "Event Type"
	DeviceType        = "Device Type"
	ReferrerType      = "Referrer Type"
	RequestedProduct  = "Requested Product"
	Country           = "Country"
	DayOfWeek         = "Day of Week"
	HourOfDay         = "Hour of Day"
	Weekend           = "Weekend"
	DemoProduct       = "Demo Product"
	ProductPrice      = "Product Price"
	ProductDiscount   = "Product Discount"
	TransactionAmount = "Transaction Amount"
	FirstVisit        = "First Visit"
)

// Features is the fixed feature set. Every row must carry all of them.
var Features = []string{
	SessionDuration,
	TimeOnProductPage,
	TotalVisits,
	PageType,
	FunnelStage,
	EventType,
	DeviceType,
	ReferrerType,
	RequestedProduct,
	Country,
	DayOfWeek,
	HourOfDay,
	Weekend,
	DemoProduct,
	ProductPrice,
	ProductDiscount,
	TransactionAmount,
	FirstVisit,
}

// Row is one session keyed by feature name. Extra columns are ignored.
type Row map[string]string

// Project returns a copy of r restricted to Features.
func (r Row) Project() Row {
	out := make(Row, len(Features))
	for _, f := range Features {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

// Missing returns the features r lacks, in Features order.
func (r Row) Missing() []string {
	var missing []string
	for _, f := range Features {
		if _, ok := r[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Predictor labels sessions. Implementations return one label per row.
type Predictor interface {
	Predict(ctx context.Context, rows []Row) ([]string, error)
}

// Error codes carried by BatchError.
const (
	CodeMissingFeatures = "E201"
	CodePredictFailed   = "E202"
	CodeRowCount        = "E203"
	CodeUnavailable     = "E204"
)

// ErrUnavailable reports that the model artifact could not be loaded.
var ErrUnavailable = errors.New("model unavailable")

// BatchError is the single error reported for a failed batch.
type BatchError struct {
	Code    string
	Message string
	Err     error
}

func (e *BatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// IsBatchError reports whether err is a BatchError.
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}

// Run validates rows and predicts them in one call to p.
// An empty batch yields an empty, non-nil result without calling p.
func Run(ctx context.Context, p Predictor, rows []Row) ([]string, error) {
	if len(rows) == 0 {
		return []string{}, nil
	}

	missing := make(map[string]struct{})
	projected := make([]Row, len(rows))
	for i, r := range rows {
		for _, f := range r.Missing() {
			missing[f] = struct{}{}
		}
		projected[i] = r.Project()
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for f := range missing {
			names = append(names, f)
		}
		sort.Strings(names)
		return nil, &BatchError{
			Code:    CodeMissingFeatures,
			Message: "missing feature columns: " + strings.Join(names, ", "),
		}
	}

	labels, err := p.Predict(ctx, projected)
	if err != nil {
		code := CodePredictFailed
		if errors.Is(err, ErrUnavailable) {
			code = CodeUnavailable
		}
		return nil, &BatchError{Code: code, Message: "prediction failed", Err: err}
	}
	if len(labels) != len(rows) {
		return nil, &BatchError{
			Code:    CodeRowCount,
			Message: fmt.Sprintf("predictor returned %d labels for %d rows", len(labels), len(rows)),
		}
	}
	return labels, nil
}

// Unavailable is the Predictor used when no model artifact is loaded.
type Unavailable struct {
	// Reason describes why the artifact failed to load.
	Reason string
}

// Predict always fails with ErrUnavailable.
func (u Unavailable) Predict(context.Context, []Row) ([]string, error) {
	if u.Reason == "" {
		return nil, ErrUnavailable
	}
	return nil, fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}

// Func adapts a function to Predictor.
type Func func(ctx context.Context, rows []Row) ([]string, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, rows []Row) ([]string, error) {
	return f(ctx, rows)
}
