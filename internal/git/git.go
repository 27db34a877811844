package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Runner runs git with args in dir and returns its trimmed stdout
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner runs the git binary found on PATH
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	out := strings.TrimSpace(string(output))

	zap.L().Debug("git",
		zap.String("dir", dir),
		zap.Strings("args", args),
		zap.String("output", out),
		zap.Error(err))

	return out, err
}

// Info contains git repository information
type Info struct {
	IsRepo   bool
	RepoName string
	Branch   string
	Root     string
}

// Detect checks if the directory is a git repository
func Detect(ctx context.Context, r Runner, dir string) Info {
	info := Info{IsRepo: false}

	root, err := r.Run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return info
	}

	info.IsRepo = true
	info.Root = root
	info.RepoName = filepath.Base(info.Root)

	if branch, err := r.Run(ctx, dir, "symbolic-ref", "--short", "HEAD"); err == nil {
		info.Branch = branch
	}

	return info
}

// IsInsideWorkTree reports whether dir is inside a git work tree
func IsInsideWorkTree(ctx context.Context, r Runner, dir string) bool {
	out, err := r.Run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Dir returns the absolute git directory of the repository containing dir.
// Submodules report their directory under the superproject's .git/modules.
func Dir(ctx context.Context, r Runner, dir string) (string, error) {
	gitDir, err := r.Run(ctx, dir, "rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}
	return gitDir, nil
}

// SparseCheckoutFile returns the path of the repository's sparse-checkout file
func SparseCheckoutFile(ctx context.Context, r Runner, dir string) (string, error) {
	gitDir, err := Dir(ctx, r, dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(gitDir, "info", "sparse-checkout"), nil
}

// EnableSparseCheckout sets core.sparseCheckout unless it is already on
func EnableSparseCheckout(ctx context.Context, r Runner, dir string) error {
	current, _ := r.Run(ctx, dir, "config", "core.sparseCheckout")
	if strings.EqualFold(current, "true") {
		return nil
	}
	_, err := r.Run(ctx, dir, "config", "core.sparseCheckout", "True")
	return err
}

// LinkSparseCheckoutFile makes the repository's sparse-checkout file a
// symlink to target. The patterns of a regular sparse-checkout file already
// there are copied into target first, unless target exists.
func LinkSparseCheckoutFile(ctx context.Context, r Runner, dir, target string) error {
	sparseFile, err := SparseCheckoutFile(ctx, r, dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(sparseFile), 0755); err != nil {
		return err
	}

	if info, err := os.Lstat(sparseFile); err == nil && info.Mode().IsRegular() {
		if err := seedTarget(sparseFile, target); err != nil {
			return err
		}
		zap.L().Warn("replacing sparse-checkout file with a link",
			zap.String("file", sparseFile), zap.String("target", target))
	}

	if err := os.Remove(sparseFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Symlink(target, sparseFile)
}

func seedTarget(sparseFile, target string) error {
	if _, err := os.Stat(target); err == nil {
		return nil
	}
	data, err := os.ReadFile(sparseFile)
	if err != nil {
		return err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return os.WriteFile(target, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
