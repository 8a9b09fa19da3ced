package output

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ipfeeds/listgen/src/internal/blocklist"
	"github.com/ipfeeds/listgen/src/internal/cidr"
	"github.com/ipfeeds/listgen/src/internal/errors"
	"github.com/ipfeeds/listgen/src/internal/hashing"
	"github.com/ipfeeds/listgen/src/internal/log"
	"github.com/ipfeeds/listgen/src/internal/utils"
)

// Mode selects which files are produced for a list.
type Mode string

const (
	// ModeSingle writes <name>.txt only.
	ModeSingle Mode = "single"
	// ModePerFamily also writes <name>.ipv4.txt and <name>.ipv6.txt.
	ModePerFamily Mode = "per_family"
)

const Extension = ".txt"

// FileResult describes one file handled by Write.
type FileResult struct {
	Path    string
	Lines   int
	Changed bool
}

// WriteResult describes all files handled for one list. The first file is
// always the combined list.
type WriteResult struct {
	Files []FileResult
}

// Lines returns the number of ranges in the combined file.
func (r WriteResult) Lines() int {
	if len(r.Files) == 0 {
		return 0
	}
	return r.Files[0].Lines
}

// Changed reports whether any file was rewritten.
func (r WriteResult) Changed() bool {
	for _, f := range r.Files {
		if f.Changed {
			return true
		}
	}
	return false
}

type Writer struct {
	mode Mode
}

func NewWriter(mode Mode) *Writer {
	if mode == "" {
		mode = ModeSingle
	}
	return &Writer{mode: mode}
}

// Path returns the combined output path for a list name inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+Extension)
}

// Sorted returns the ranges of list in output order.
func Sorted(list *blocklist.BlockList) []cidr.NetworkRange {
	ranges := list.Ranges()
	slices.SortFunc(ranges, cidr.Compare)
	return ranges
}

// Write renders list to path. In per-family mode the family files are written
// next to it; a family with no ranges gets no file and a stale one is removed.
func (w *Writer) Write(list *blocklist.BlockList, path string) (WriteResult, error) {
	var result WriteResult

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return result, errors.NewIOError(fmt.Sprintf("failed to create directory for %s", path), err)
	}

	ranges := Sorted(list)
	fr, err := writeFile(path, ranges)
	if err != nil {
		return result, err
	}
	result.Files = append(result.Files, fr)

	if w.mode != ModePerFamily {
		return result, nil
	}

	split := slices.IndexFunc(ranges, func(r cidr.NetworkRange) bool { return r.Family == cidr.V6 })
	if split < 0 {
		split = len(ranges)
	}
	families := []struct {
		family cidr.Family
		ranges []cidr.NetworkRange
	}{
		{cidr.V4, ranges[:split]},
		{cidr.V6, ranges[split:]},
	}

	for _, f := range families {
		familyPath := FamilyPath(path, f.family)
		if len(f.ranges) == 0 {
			utils.RemoveOrWarn(familyPath)
			continue
		}
		fr, err := writeFile(familyPath, f.ranges)
		if err != nil {
			return result, err
		}
		result.Files = append(result.Files, fr)
	}

	return result, nil
}

// FamilyPath maps drop.txt to drop.ipv4.txt or drop.ipv6.txt.
func FamilyPath(path string, family cidr.Family) string {
	return fmt.Sprintf("%s.ipv%d%s", strings.TrimSuffix(path, Extension), family, Extension)
}

// Render returns the file content for ranges, which must already be sorted.
func Render(ranges []cidr.NetworkRange) []byte {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	for _, r := range ranges {
		bw.WriteString(r.String())
		bw.WriteByte('\n')
	}
	bw.Flush()
	return buf.Bytes()
}

func writeFile(path string, ranges []cidr.NetworkRange) (FileResult, error) {
	fr := FileResult{Path: path, Lines: len(ranges)}

	content := Render(ranges)
	checksum := hashing.NewMD5WriterProxy(nil)
	checksum.Write(content)

	if changed, err := hashing.IsChanged(checksum, path); err != nil {
		log.Debugf("Failed to checksum %s, rewriting it: %v", path, err)
	} else if !changed {
		log.Debugf("%s is not changed, skipping write", path)
		return fr, nil
	}

	if err := writeAtomic(path, content); err != nil {
		return fr, err
	}
	fr.Changed = true
	return fr, nil
}

// writeAtomic writes content to a temporary file in the target directory and
// renames it over path.
func writeAtomic(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to create temporary file for %s", path), err)
	}
	tmpPath := tmp.Name()

	fail := func(msg string, err error) error {
		utils.CloseOrWarn(tmp)
		utils.RemoveOrWarn(tmpPath)
		return errors.NewIOError(msg, err)
	}

	if _, err := tmp.Write(content); err != nil {
		return fail(fmt.Sprintf("failed to write %s", tmpPath), err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Sprintf("failed to sync %s", tmpPath), err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return fail(fmt.Sprintf("failed to chmod %s", tmpPath), err)
	}
	if err := tmp.Close(); err != nil {
		utils.RemoveOrWarn(tmpPath)
		return errors.NewIOError(fmt.Sprintf("failed to close %s", tmpPath), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		utils.RemoveOrWarn(tmpPath)
		return errors.NewIOError(fmt.Sprintf("failed to move list file to %s", path), err)
	}
	return nil
}
