package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Exposure describes how a file relates to the surrounding git repository.
type Exposure struct {
	IsRepo  bool
	Tracked bool
	Ignored bool
}

// Exposed reports true when the file is in a repository and not ignored.
func (e Exposure) Exposed() bool {
	return e.IsRepo && (e.Tracked || !e.Ignored)
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// Check inspects the file at path. A missing git binary or a directory
// outside any repository yields a zero Exposure.
func Check(path string) Exposure {
	if path == "" {
		return Exposure{}
	}
	dir, name := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	if !IsGitRepo(dir) {
		return Exposure{}
	}
	return Exposure{
		IsRepo:  true,
		Tracked: IsTracked(dir, name),
		Ignored: IsIgnored(dir, name),
	}
}

// Advice returns a one-line hint for an exposed file, or "".
func (e Exposure) Advice(path string) string {
	switch {
	case !e.Exposed():
		return ""
	case e.Tracked:
		return fmt.Sprintf("%s is tracked by git (run: git rm --cached %s)", path, path)
	default:
		return fmt.Sprintf("%s is inside a git repository and not in .gitignore", path)
	}
}
