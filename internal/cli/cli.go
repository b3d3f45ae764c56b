// Package cli is the operator command line for ledger reconciliation.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/alecthomas/kong"
)

// Exit codes reported by Run.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitDrift        = 2
	ExitInconclusive = 3
)

// Environment provides an abstraction around the execution environment
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
}

// ArchiverFactory builds the report archiver on demand so audits without --archive need no
// cloud credentials.
type ArchiverFactory func(ctx context.Context) (portssvc.ReportArchiver, error)

type AuditCmd struct {
	Archive bool `help:"also store the report in the configured archive bucket."`
}

func (cmd *AuditCmd) Run(ctx context.Context, env *Environment, recon portssvc.ReconciliationSvc, newArchiver ArchiverFactory) error {
	report, auditErr := recon.Audit(ctx)
	if report == nil {
		return auditErr
	}
	if err := writeJSON(env.Stdout, report); err != nil {
		return err
	}

	if cmd.Archive {
		archiver, err := newArchiver(ctx)
		if err != nil {
			return err
		}
		location, err := archiver.Archive(ctx, report)
		if err != nil {
			return fmt.Errorf("failed to archive report: %w", err)
		}
		fmt.Fprintf(env.Stderr, "report archived to %s\n", location)
	}

	if auditErr != nil {
		return auditErr
	}
	if !report.OverallHealthy {
		return fmt.Errorf("%w: %d finding(s)", apperrors.ErrReconciliationDrift, len(report.Findings))
	}
	return nil
}

type RepairCmd struct{}

func (cmd *RepairCmd) Run(ctx context.Context, env *Environment, recon portssvc.ReconciliationSvc) error {
	result, err := recon.Repair(ctx)
	if err != nil {
		return err
	}
	return writeJSON(env.Stdout, result)
}

type CLI struct {
	Audit  AuditCmd  `cmd:"" help:"recompute sponsor and recipient aggregates from the ledger and report drift."`
	Repair RepairCmd `cmd:"" help:"overwrite drifted aggregates with values recomputed from the ledger."`
}

// Run parses args and executes the selected command. The returned value is the process exit
// code: drift and inconclusive audits get their own codes so schedulers can alert on them.
func Run(ctx context.Context, env Environment, args []string, recon portssvc.ReconciliationSvc, newArchiver ArchiverFactory) int {
	app := CLI{}

	parser, err := kong.New(&app,
		kong.Name("sponsorship_audit"),
		kong.Description("sponsorship ledger reconciliation"),
		kong.Writers(env.Stdout, env.Stderr),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitFailure
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitFailure
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(recon, (*portssvc.ReconciliationSvc)(nil))
	kctx.Bind(newArchiver)

	if err := kctx.Run(&env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		switch {
		case errors.Is(err, apperrors.ErrAuditInconclusive):
			return ExitInconclusive
		case errors.Is(err, apperrors.ErrReconciliationDrift):
			return ExitDrift
		default:
			return ExitFailure
		}
	}
	return ExitOK
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
