// Package gitinfo reads the checked-out branch straight from the .git
// directory so the status line never has to start a git process.
package gitinfo

import (
	"bufio"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var errNoGitDir = errors.New("git dir not found")

// Branch returns the branch checked out in the repository containing path,
// "detached:<sha7>" for a detached HEAD, or "" outside a repository.
func Branch(fs afero.Fs, path string) string {
	gitDir, err := findGitDir(fs, path)
	if err != nil {
		return ""
	}
	branch, err := readHead(fs, gitDir)
	if err != nil {
		return ""
	}
	return branch
}

// Root returns the working tree root for path, or "".
func Root(fs afero.Fs, path string) string {
	gitDir, err := findGitDir(fs, path)
	if err != nil {
		return ""
	}
	return filepath.Dir(gitDir)
}

// findGitDir walks up from path. A missing path starts from its parent so a
// file that has not been saved yet still resolves.
func findGitDir(fs afero.Fs, path string) (string, error) {
	start := filepath.Clean(path)
	if abs, err := filepath.Abs(start); err == nil {
		start = abs
	}
	if info, err := fs.Stat(start); err != nil || !info.IsDir() {
		start = filepath.Dir(start)
	}
	for {
		gitPath := filepath.Join(start, ".git")
		if info, err := fs.Stat(gitPath); err == nil {
			if info.IsDir() {
				return gitPath, nil
			}
			// Worktrees and submodules point elsewhere with "gitdir: <path>".
			if info.Mode().IsRegular() {
				data, err := afero.ReadFile(fs, gitPath)
				if err != nil {
					return "", err
				}
				line := strings.TrimSpace(string(data))
				const prefix = "gitdir:"
				if strings.HasPrefix(line, prefix) {
					dir := strings.TrimSpace(strings.TrimPrefix(line, prefix))
					if !filepath.IsAbs(dir) {
						dir = filepath.Join(start, dir)
					}
					return dir, nil
				}
			}
		}
		parent := filepath.Dir(start)
		if parent == start {
			return "", errNoGitDir
		}
		start = parent
	}
}

func readHead(fs afero.Fs, gitDir string) (string, error) {
	f, err := fs.Open(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", errors.New("empty HEAD")
	}
	line := strings.TrimSpace(scanner.Text())
	const refPrefix = "ref:"
	if strings.HasPrefix(line, refPrefix) {
		ref := strings.TrimSpace(strings.TrimPrefix(line, refPrefix))
		return strings.TrimPrefix(ref, "refs/heads/"), nil
	}
	if len(line) >= 7 {
		return "detached:" + line[:7], nil
	}
	return "detached", nil
}
