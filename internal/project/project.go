package project

import (
	"context"
	"path/filepath"

	"github.com/odooup/odooup/internal/git"
)

// Context holds all workspace detection results
type Context struct {
	Name      string
	Root      string
	IsGitRepo bool
	RepoRoot  string
	Branch    string
}

// Detect analyzes the workspace rooted at dir. Root is always dir itself;
// modules are searched from there even inside a larger repository.
func Detect(ctx context.Context, r git.Runner, dir string) (Context, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return Context{}, err
	}
	pc := Context{
		Name: filepath.Base(absDir),
		Root: absDir,
	}

	gitInfo := git.Detect(ctx, r, absDir)
	if gitInfo.IsRepo {
		pc.IsGitRepo = true
		pc.Name = gitInfo.RepoName
		pc.RepoRoot = gitInfo.Root
		pc.Branch = gitInfo.Branch
	}

	return pc, nil
}
