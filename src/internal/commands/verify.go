package commands

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ipfeeds/listgen/src/internal/errors"
	"github.com/ipfeeds/listgen/src/internal/log"
	"github.com/ipfeeds/listgen/src/internal/verify"
)

func CreateVerifyCommand() *VerifyCommand {
	gc := &VerifyCommand{
		fs:   flag.NewFlagSet("verify", flag.ContinueOnError),
		repo: verify.NewGitRepo(),
	}
	gc.fs.Usage = func() {
		fmt.Fprintf(gc.fs.Output(), "Usage: listgen verify <lists_dir> <threshold_percent> <allow_deletions>\n")
		fmt.Fprintf(gc.fs.Output(), "  lists_dir          directory with generated *.txt lists inside a git work tree\n")
		fmt.Fprintf(gc.fs.Output(), "  threshold_percent  maximum allowed line count change, e.g. 10.0\n")
		fmt.Fprintf(gc.fs.Output(), "  allow_deletions    true or false\n")
	}
	return gc
}

type VerifyCommand struct {
	fs   *flag.FlagSet
	ctx  *AppContext
	repo verify.Repo

	dir            string
	threshold      float64
	allowDeletions bool
}

func (v *VerifyCommand) Name() string {
	return v.fs.Name()
}

func (v *VerifyCommand) Init(args []string, ctx *AppContext) error {
	v.ctx = ctx

	if err := v.fs.Parse(args); err != nil {
		return err
	}
	if v.fs.NArg() != 3 {
		v.fs.Usage()
		return errors.NewConfigError("verify expects <lists_dir> <threshold_percent> <allow_deletions>", nil)
	}

	v.dir = v.fs.Arg(0)

	threshold, err := strconv.ParseFloat(v.fs.Arg(1), 64)
	if err != nil || threshold < 0 {
		return errors.NewConfigError(fmt.Sprintf("invalid threshold percentage %q", v.fs.Arg(1)), err)
	}
	v.threshold = threshold

	switch strings.ToLower(v.fs.Arg(2)) {
	case "true":
		v.allowDeletions = true
	case "false":
		v.allowDeletions = false
	default:
		return errors.NewConfigError(fmt.Sprintf("expected true or false for allow_deletions, got %q", v.fs.Arg(2)), nil)
	}

	return nil
}

func (v *VerifyCommand) Run() error {
	report, err := verify.NewVerifier(v.repo).Check(context.Background(), v.dir, v.threshold, v.allowDeletions)
	if err != nil {
		return err
	}

	out := v.ctx.stdout()

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Committed", "Current", "Change", "Status"})
	for _, f := range report.Files {
		change, status := fmt.Sprintf("%+.2f%%", f.Percent), "ok"
		switch {
		case f.Added:
			change, status = "-", "new file"
		case f.Violation:
			status = fmt.Sprintf("exceeds ±%.1f%%", report.Threshold)
		}
		t.AppendRow(table.Row{f.Name, f.OldLines, f.NewLines, change, status})
	}
	for _, name := range report.Deleted {
		t.AppendRow(table.Row{name, "", "", "", "deleted"})
	}
	fmt.Fprintln(out, t.Render())

	if len(report.Deleted) > 0 {
		if v.allowDeletions {
			fmt.Fprintln(out, "File deletions are allowed.")
		} else {
			fmt.Fprintln(out, "File deletions are not allowed.")
		}
	}

	if !report.OK() {
		log.Errorf("%d file(s) changed by more than ±%.1f%%, %d deleted", len(report.Violations()), v.threshold, len(report.Deleted))
		return errors.NewValidationError("list changes exceed the allowed limits", nil)
	}

	fmt.Fprintf(out, "All list changes within ±%.1f%%.\n", v.threshold)
	return nil
}
