package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/kpidash/internal/logging"
	"github.com/roach88/kpidash/internal/target"
)

// TargetsOptions holds flags for the targets command.
type TargetsOptions struct {
	*RootOptions
	Targets string
}

// TargetsSummary describes a loaded target set.
type TargetsSummary struct {
	Source string         `json:"source"`
	Tables []TableSummary `json:"tables"`
}

// TableSummary describes one target table.
type TableSummary struct {
	Name       string                 `json:"name"`
	Default    target.Pair            `json:"default"`
	Entries    map[string]target.Pair `json:"entries,omitempty"`
	Degenerate []string               `json:"degenerate,omitempty"`
}

// WriteText prints one block per table, entities sorted.
func (s TargetsSummary) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "targets: %s\n", s.Source)
	for _, t := range s.Tables {
		fmt.Fprintf(&b, "%s: default %s, %d entries\n", t.Name, pairText(t.Default), len(t.Entries))
		for _, name := range sortedNames(t.Entries) {
			fmt.Fprintf(&b, "  %s %s\n", name, pairText(t.Entries[name]))
		}
		for _, name := range t.Degenerate {
			fmt.Fprintf(&b, "  warning: lower above upper for %s\n", name)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// NewTargetsCommand creates the targets command.
func NewTargetsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TargetsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Validate and print target tables",
		Long: `Load target tables, validate them against the schema and print them.

Pairs with lower above upper are accepted as configured and listed as
warnings.

Exit codes:
  0 - Targets are valid
  2 - Targets could not be loaded

Examples:
  kpidash targets
  kpidash targets --targets ./targets.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargets(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Targets, "targets", "", "target tables file (default built-in)")

	return cmd
}

func runTargets(opts *TargetsOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	cfg, logger, err := opts.setup(cmd.ErrOrStderr())
	if err != nil {
		return out.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	defer logging.Close(logger)

	path := firstNonEmpty(opts.Targets, cfg.Targets)
	set, err := loadTargets(path)
	if err != nil {
		return out.Fail(ErrCodeTargets, ExitCommandError, "failed to load targets", err)
	}

	summary := TargetsSummary{Source: firstNonEmpty(path, "built-in")}
	for _, t := range set.Tables() {
		degenerate := t.Degenerate()
		if len(degenerate) > 0 {
			logger.WithFields(logrus.Fields{
				"table":    t.Name,
				"entities": degenerate,
			}).Warn("target pair has lower above upper")
		}
		summary.Tables = append(summary.Tables, TableSummary{
			Name:       t.Name,
			Default:    t.Default,
			Entries:    t.Entries,
			Degenerate: degenerate,
		})
	}
	return out.Success(summary)
}

func pairText(p target.Pair) string {
	return fmt.Sprintf("%.2f..%.2f", p.Lower, p.Upper)
}

func sortedNames(m map[string]target.Pair) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
