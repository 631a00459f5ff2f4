package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "1.0.0"

var (
	logLevel string
	log      = zap.NewNop()
)

// newRootCmd builds the command tree. A fresh tree per call keeps flag
// state out of tests.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "billingctl",
		Short: "Operator tools for the clinic billing service",
		Long: `billingctl works on invoice drafts and payments saved as JSON files.
It computes totals, renders invoices as PDF or thermal receipts and mints
development tokens for the API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logger.NewOrNop(logger.Config{Level: logLevel, Format: "console", Output: "stderr"})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newTotalsCmd(), newRenderCmd(), newTokenCmd())
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error("command execution failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func readDraft(path string) (*entity.InvoiceDraft, error) {
	var d entity.InvoiceDraft
	if err := readJSON(path, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func readPayment(path string) (*entity.Payment, error) {
	var p entity.Payment
	if err := readJSON(path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// readJSON decodes path, or stdin when path is "-".
func readJSON(path string, out any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
