package verify

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/ipfeeds/listgen/src/internal/errors"
)

// FileChange compares one list file with its committed version.
type FileChange struct {
	Name     string
	OldLines int
	NewLines int
	// Added is set for files without a committed version; they are never violations.
	Added     bool
	Percent   float64
	Violation bool
}

type Report struct {
	Threshold      float64
	AllowDeletions bool
	Files          []FileChange
	Deleted        []string
}

// OK reports whether the report holds no violations.
func (r *Report) OK() bool {
	if len(r.Deleted) > 0 && !r.AllowDeletions {
		return false
	}
	for _, f := range r.Files {
		if f.Violation {
			return false
		}
	}
	return true
}

// Violations returns the files that exceeded the threshold.
func (r *Report) Violations() []FileChange {
	var out []FileChange
	for _, f := range r.Files {
		if f.Violation {
			out = append(out, f)
		}
	}
	return out
}

type Verifier struct {
	repo Repo
}

func NewVerifier(repo Repo) *Verifier {
	return &Verifier{repo: repo}
}

// Check compares the *.txt files in dir with HEAD.
func (v *Verifier) Check(ctx context.Context, dir string, threshold float64, allowDeletions bool) (*Report, error) {
	if threshold < 0 || math.IsNaN(threshold) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid threshold %v", threshold), nil)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, errors.NewIOError("failed to list files", err)
	}
	current := make([]string, 0, len(paths))
	for _, p := range paths {
		current = append(current, filepath.Base(p))
	}
	slices.Sort(current)

	head, err := v.repo.HeadFiles(ctx, dir)
	if err != nil {
		return nil, errors.NewInternalError("failed to list committed files", err)
	}

	report := &Report{Threshold: threshold, AllowDeletions: allowDeletions}
	for _, name := range head {
		if !slices.Contains(current, name) {
			report.Deleted = append(report.Deleted, name)
		}
	}
	slices.Sort(report.Deleted)

	for _, name := range current {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, errors.NewIOError(fmt.Sprintf("failed to read %s", name), err)
		}

		old, ok, err := v.repo.HeadContent(ctx, dir, name)
		if err != nil {
			return nil, errors.NewInternalError(fmt.Sprintf("failed to read committed %s", name), err)
		}

		change := FileChange{Name: name, NewLines: CountLines(content)}
		if ok {
			change.OldLines = CountLines(old)
		}
		if change.OldLines == 0 {
			change.Added = true
		} else {
			change.Percent = PercentChange(change.OldLines, change.NewLines)
			change.Violation = math.Abs(change.Percent) > threshold
		}
		report.Files = append(report.Files, change)
	}

	return report, nil
}

// CountLines counts lines the way editors do: a final line without a newline
// still counts.
func CountLines(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := bytes.Count(b, []byte{'\n'})
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}

func PercentChange(old, new int) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return float64(new-old) / float64(old) * 100
}
