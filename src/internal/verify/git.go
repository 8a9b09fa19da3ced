package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repo gives read access to the committed version of list files.
type Repo interface {
	// HeadFiles returns the names of *.txt files tracked at HEAD directly in dir.
	HeadFiles(ctx context.Context, dir string) ([]string, error)
	// HeadContent returns the content of dir/name at HEAD. ok is false when
	// the file is not tracked.
	HeadContent(ctx context.Context, dir, name string) (content []byte, ok bool, err error)
}

// GitRepo implements Repo with the git command line.
type GitRepo struct {
	Binary string
}

func NewGitRepo() *GitRepo {
	return &GitRepo{Binary: "git"}
}

func (g *GitRepo) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, g.Binary, append([]string{"-C", dir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func (g *GitRepo) HeadFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := g.run(ctx, dir, "ls-tree", "--name-only", "HEAD", "--", ".")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasSuffix(line, ".txt") {
			names = append(names, filepath.Base(line))
		}
	}
	return names, nil
}

func (g *GitRepo) HeadContent(ctx context.Context, dir, name string) ([]byte, bool, error) {
	out, err := g.run(ctx, dir, "show", "HEAD:./"+name)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return out, true, nil
}
