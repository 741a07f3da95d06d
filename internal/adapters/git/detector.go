// Package git labels study sessions with the repository they happen in.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/marianecozta/Pomodoro/internal/ports"
)

// ErrNoRepository is returned when no enclosing repository exists.
var ErrNoRepository = errors.New("no git repository found")

// Detector implements ports.GitDetector using go-git.
type Detector struct {
	// root overrides the directory IsAvailable probes. Empty means the
	// current working directory.
	root string
}

// NewDetector creates a detector probing the current working directory.
func NewDetector() *Detector {
	return &Detector{}
}

// NewDetectorAt creates a detector probing dir.
func NewDetectorAt(dir string) *Detector {
	return &Detector{root: dir}
}

var _ ports.GitDetector = (*Detector)(nil)

// Detect reads branch, commit, origin and cleanliness of the repository
// enclosing workingDir.
func (d *Detector) Detect(ctx context.Context, workingDir string) (*ports.GitInfo, error) {
	dir, err := d.resolve(workingDir)
	if err != nil {
		return nil, err
	}

	repoPath, err := findGitRepo(dir)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		// A repository without commits still has a branch worth showing.
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			if ref, refErr := repo.Reference(plumbing.HEAD, false); refErr == nil {
				return &ports.GitInfo{Branch: ref.Target().Short(), IsClean: true}, nil
			}
		}
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	info := &ports.GitInfo{
		Branch: head.Name().Short(),
		Commit: head.Hash().String(),
	}
	if info.Branch == "HEAD" {
		info.Branch = "HEAD detached"
	}

	if remotes, err := repo.Remotes(); err == nil && len(remotes) > 0 {
		if urls := remotes[0].Config().URLs; len(urls) > 0 {
			info.Repository = extractRepoName(urls[0])
		}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status: %w", err)
	}
	info.IsClean = status.IsClean()

	return info, nil
}

// IsAvailable reports whether the probed directory is inside a repository.
func (d *Detector) IsAvailable() bool {
	dir, err := d.resolve(d.root)
	if err != nil {
		return false
	}
	_, err = findGitRepo(dir)
	return err == nil
}

func (d *Detector) resolve(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if d.root != "" {
		return d.root, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// Label formats info for the session header, e.g. "main@1a2b3c4*".
// The asterisk marks a dirty worktree.
func Label(info *ports.GitInfo) string {
	if info == nil || info.Branch == "" {
		return ""
	}
	label := info.Branch
	if short := ShortCommit(info.Commit); short != "" {
		label += "@" + short
	}
	if !info.IsClean {
		label += "*"
	}
	return label
}

// ShortCommit returns a shortened commit hash.
func ShortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// findGitRepo walks up from startPath to the first directory holding .git,
// either a directory or a worktree "gitdir:" file.
func findGitRepo(startPath string) (string, error) {
	current := startPath
	for {
		gitPath := filepath.Join(current, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() {
				return current, nil
			}
			content, err := os.ReadFile(gitPath)
			if err == nil && strings.HasPrefix(string(content), "gitdir: ") {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("%w above %s", ErrNoRepository, startPath)
		}
		current = parent
	}
}

// extractRepoName turns a remote URL into "owner/repo".
func extractRepoName(url string) string {
	url = strings.TrimSuffix(url, ".git")

	// SSH form: git@github.com:user/repo
	if strings.HasPrefix(url, "git@") {
		if i := strings.LastIndex(url, ":"); i >= 0 {
			return url[i+1:]
		}
	}

	if strings.HasPrefix(url, "http") {
		parts := strings.Split(url, "/")
		if len(parts) >= 2 {
			return parts[len(parts)-2] + "/" + parts[len(parts)-1]
		}
	}
	return url
}
