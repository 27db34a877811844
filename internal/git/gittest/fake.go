// Package gittest provides an in-memory git.Runner for tests.
package gittest

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrExit mimics a non-zero git exit status
var ErrExit = errors.New("exit status 1")

// Fake answers the git commands odooup issues without touching a repository.
// Every directory is treated as the top of its own repository with a
// relative ".git" git dir.
type Fake struct {
	NotWorkTree bool
	Branch      string
	// Fail forces an error for the joined args, e.g. "config core.sparseCheckout True"
	Fail map[string]error

	mu     sync.Mutex
	config map[string]string
	calls  []Call
}

// Call is a recorded invocation
type Call struct {
	Dir  string
	Args []string
}

func (f *Fake) Run(_ context.Context, dir string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Dir: dir, Args: append([]string(nil), args...)})
	if err, ok := f.Fail[strings.Join(args, " ")]; ok {
		return "", err
	}

	switch {
	case len(args) == 2 && args[0] == "rev-parse":
		if f.NotWorkTree {
			return "", ErrExit
		}
		switch args[1] {
		case "--is-inside-work-tree":
			return "true", nil
		case "--show-toplevel":
			return dir, nil
		case "--git-dir":
			return ".git", nil
		}
	case len(args) >= 1 && args[0] == "symbolic-ref":
		if f.Branch == "" {
			return "", ErrExit
		}
		return f.Branch, nil
	case len(args) == 2 && args[0] == "config":
		v, ok := f.config[dir+"\x00"+args[1]]
		if !ok {
			return "", ErrExit
		}
		return v, nil
	case len(args) == 3 && args[0] == "config":
		if f.config == nil {
			f.config = make(map[string]string)
		}
		f.config[dir+"\x00"+args[1]] = args[2]
		return "", nil
	}
	return "", ErrExit
}

// Config returns a config value set in dir
func (f *Fake) Config(dir, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.config[dir+"\x00"+key]
	return v, ok
}

// Calls returns the recorded invocations
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CountCalls counts invocations whose args start with prefix
func (f *Fake) CountCalls(prefix ...string) int {
	n := 0
	for _, c := range f.Calls() {
		if len(c.Args) >= len(prefix) && strings.Join(c.Args[:len(prefix)], " ") == strings.Join(prefix, " ") {
			n++
		}
	}
	return n
}
