package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/kpidash/internal/logging"
	"github.com/roach88/kpidash/internal/predict"
)

// PredictOptions holds flags for the predict command.
type PredictOptions struct {
	*RootOptions
	Report string
}

// PredictResult pairs each input row with its predicted outcome.
type PredictResult struct {
	Rows []PredictedRow `json:"rows"`

	// Report is the model's classification report, when one is configured.
	Report *predict.Report `json:"classification_report,omitempty"`
}

// PredictedRow is one labelled session.
type PredictedRow struct {
	Outcome  string      `json:"predicted_outcome"`
	Features predict.Row `json:"features"`
}

// WriteText prints one line per row with the outcome first.
func (r PredictResult) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "predicted %d rows\n", len(r.Rows))
	for i, row := range r.Rows {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, row.Outcome)
	}
	if r.Report != nil {
		b.WriteString("classification report:\n")
		for _, row := range r.Report.Rows {
			fmt.Fprintf(&b, "  %s:", row.Label)
			for i, v := range row.Values {
				fmt.Fprintf(&b, " %s=%s", r.Report.Columns[i], v)
			}
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// rowsDocument is the shape of a session rows file.
type rowsDocument struct {
	Rows []map[string]any `json:"rows" yaml:"rows"`
}

// NewPredictCommand creates the predict command.
func NewPredictCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PredictOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "predict <rows-file>",
		Short: "Predict session outcomes",
		Long: `Label sessions with the session-outcome model.

The rows file holds a top-level "rows" list; every row must carry all
model features. The model runs as the external process configured under
model.command (or KPIDASH_MODEL_COMMAND). It reads {"rows": [...]} as JSON
on stdin and prints {"labels": [...]}. The batch fails as a whole: either
every row is labelled or none is.

With --report (or model.report), the classification report CSV exported
with the model is shown after the predictions.

Exit codes:
  0 - Every row labelled
  1 - Prediction failed (missing features, model unavailable or failing)
  2 - Command error (unreadable or malformed rows file)

Examples:
  kpidash predict ./sessions.yaml
  kpidash predict ./sessions.json --format json
  kpidash predict ./sessions.yaml --report ./classification_report.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Report, "report", "", "Classification report CSV to show with the predictions")

	return cmd
}

func runPredict(opts *PredictOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	cfg, logger, err := opts.setup(cmd.ErrOrStderr())
	if err != nil {
		return out.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	defer logging.Close(logger)

	rows, err := readRowsFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out.Fail(ErrCodeNotFound, ExitCommandError, fmt.Sprintf("rows file not found: %s", path), nil)
		}
		return out.Fail(ErrCodeInvalidInput, ExitCommandError, "failed to read rows", err)
	}

	labels, err := predict.Run(commandContext(cmd), opts.predictor(cfg), rows)
	if err != nil {
		var be *predict.BatchError
		if errors.As(err, &be) {
			logger.WithFields(logrus.Fields{
				"code": be.Code,
				"rows": len(rows),
			}).Warn("prediction batch failed")
		}
		return out.Fail(ErrCodePredict, ExitFailure, "prediction failed", err)
	}

	result := PredictResult{Rows: make([]PredictedRow, len(rows))}
	for i, r := range rows {
		result.Rows[i] = PredictedRow{Outcome: labels[i], Features: r.Project()}
	}

	if reportPath := firstNonEmpty(opts.Report, cfg.Model.Report); reportPath != "" {
		rep, err := predict.LoadReport(reportPath)
		if err != nil {
			if os.IsNotExist(err) {
				return out.Fail(ErrCodeNotFound, ExitCommandError, fmt.Sprintf("classification report not found: %s", reportPath), nil)
			}
			return out.Fail(ErrCodeInvalidInput, ExitCommandError, "failed to read classification report", err)
		}
		result.Report = &rep
	}
	return out.Success(result)
}

// readRowsFile decodes a rows file, rendering scalar values as strings.
func readRowsFile(path string) ([]predict.Row, error) {
	var doc rowsDocument
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}
	rows := make([]predict.Row, len(doc.Rows))
	for i, raw := range doc.Rows {
		row := make(predict.Row, len(raw))
		for k, v := range raw {
			s, err := scalarString(v)
			if err != nil {
				return nil, fmt.Errorf("%s: rows[%d] %q: %w", path, i, k, err)
			}
			row[k] = s
		}
		rows[i] = row
	}
	return rows, nil
}

func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("value must be a scalar, got %T", v)
	}
}
