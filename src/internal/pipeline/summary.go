package pipeline

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// ColorMode controls summary table decoration: "auto", "yes" or "no".
type ColorMode string

const (
	ColorAuto ColorMode = "auto"
	ColorYes  ColorMode = "yes"
	ColorNo   ColorMode = "no"
)

func shouldColorize(mode ColorMode) bool {
	switch mode {
	case ColorYes:
		return true
	case ColorNo:
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}

func newTable(fancy bool) table.Writer {
	t := table.NewWriter()

	colorOptions := table.ColorOptions{}
	box := table.StyleBoxDefault
	if fancy {
		colorOptions.Header = text.Colors{text.Italic}
		colorOptions.Border = text.Colors{text.FgHiBlack}
		colorOptions.Separator = text.Colors{text.FgHiBlack}
		box = table.StyleBoxRounded
	}

	t.SetStyle(table.Style{
		Box:     box,
		Color:   colorOptions,
		Format:  table.FormatOptions{},
		HTML:    table.DefaultHTMLOptions,
		Options: table.OptionsDefault,
		Title:   table.TitleOptionsDefault,
	})
	return t
}

// WriteSummary renders one row per list with its final state and counters.
func WriteSummary(w io.Writer, results []ListResult, mode ColorMode) {
	fancy := shouldColorize(mode)
	t := newTable(fancy)

	t.AppendHeader(table.Row{"List", "State", "In", "After dedup", "Excluded", "Flagged", "Skipped", "Written", "Time"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Number: 8, Align: text.AlignRight},
	})

	for _, r := range results {
		state := string(r.State)
		if fancy {
			if r.Failed() {
				state = text.FgRed.Sprint(state)
			} else {
				state = text.FgGreen.Sprint(state)
			}
		}

		skipped := "-"
		if r.Diagnostics != nil && r.Diagnostics.Total() > 0 {
			skipped = fmt.Sprintf("%d (%s)", r.Diagnostics.Total(), r.Diagnostics.Summary())
		}

		written := strconv.Itoa(r.Stats.Written)
		if r.Failed() {
			written = "-"
		}

		t.AppendRow(table.Row{
			r.Name,
			state,
			r.Stats.EntriesIn,
			r.Stats.AfterDedup,
			r.Stats.Excluded,
			r.Stats.Flagged,
			skipped,
			written,
			r.Duration.Round(time.Millisecond).String(),
		})
	}

	fmt.Fprintln(w, t.Render())

	for _, r := range results {
		if !r.Failed() {
			continue
		}
		if r.FailedSource != "" {
			fmt.Fprintf(w, "%s: failed while %s %s: %v\n", r.Name, r.FailedIn, r.FailedSource, r.Err)
		} else {
			fmt.Fprintf(w, "%s: failed while %s: %v\n", r.Name, r.FailedIn, r.Err)
		}
	}
}
