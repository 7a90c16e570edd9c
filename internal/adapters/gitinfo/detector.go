// Package gitinfo detects git context for session titles using go-git.
package gitinfo

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Info describes the repository state at session start time.
type Info struct {
	Branch     string
	Commit     string
	Repository string
}

// Detector reads git context from the working directory.
type Detector struct{}

// NewDetector creates a new git detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect scans the working directory for git context. It traverses up the
// directory tree, so running from a subdirectory of a repository works.
func (d *Detector) Detect(workingDir string) (*Info, error) {
	if workingDir == "" {
		var err error
		workingDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(workingDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("git repository not found: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	branch := head.Name().Short()
	if branch == "HEAD" {
		branch = "HEAD detached"
	}

	repoName := ""
	remotes, err := repo.Remotes()
	if err == nil && len(remotes) > 0 {
		urls := remotes[0].Config().URLs
		if len(urls) > 0 {
			repoName = extractRepoName(urls[0])
		}
	}

	return &Info{
		Branch:     branch,
		Commit:     head.Hash().String(),
		Repository: repoName,
	}, nil
}

// Describe renders the info as a short session title, e.g. "user/repo @ main".
func (i *Info) Describe() string {
	name := i.Repository
	if name == "" {
		name = "repo"
	}
	return fmt.Sprintf("%s @ %s", name, i.Branch)
}

// extractRepoName extracts the repository name from a git remote URL.
func extractRepoName(url string) string {
	// SSH URLs like git@github.com:user/repo.git
	if strings.HasPrefix(url, "git@") {
		parts := strings.Split(url, ":")
		if len(parts) >= 2 {
			return strings.TrimSuffix(parts[len(parts)-1], ".git")
		}
	}

	// HTTPS URLs like https://github.com/user/repo.git
	if strings.HasPrefix(url, "http") {
		parts := strings.Split(url, "/")
		if len(parts) >= 2 {
			repo := strings.TrimSuffix(parts[len(parts)-1], ".git")
			return parts[len(parts)-2] + "/" + repo
		}
	}

	return url
}
