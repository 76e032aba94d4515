package services

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"jira-commit-helper/models"
)

const (
	gitFieldSeparator  = "\x1f"
	gitRecordSeparator = "\x1e"

	// hash, short hash, author, email, strict ISO date, subject, body
	gitLogFormat = "%H%x1f%h%x1f%an%x1f%ae%x1f%aI%x1f%s%x1f%b%x1e"
)

// GitService reads commit history from a local repository
type GitService interface {
	// RepositoryPath resolves the top level of the repository containing filePath
	RepositoryPath(filePath string) (string, error)

	// Log returns the most recent commits, newest first. The configured git.log_filters
	// and then filters are passed to git log.
	Log(repoPath string, filters []string) ([]models.GitCommit, error)

	// FormatCommit renders a commit as comment text
	FormatCommit(commit models.GitCommit) string
}

// GitServiceImpl implements GitService with the git CLI
type GitServiceImpl struct {
	config   *models.Config
	executor models.CommandExecutor
	logger   *zap.Logger
}

// NewGitService creates a new GitService
func NewGitService(config *models.Config, logger *zap.Logger, executor ...models.CommandExecutor) *GitServiceImpl {
	commandExecutor := exec.Command
	if len(executor) > 0 {
		commandExecutor = executor[0]
	}
	return &GitServiceImpl{
		config:   config,
		executor: commandExecutor,
		logger:   logger,
	}
}

func (s *GitServiceImpl) cliPath() string {
	if s.config.Git.CLIPath != "" {
		return s.config.Git.CLIPath
	}
	return "git"
}

// run executes git and returns stdout; stderr is folded into the error
func (s *GitServiceImpl) run(args ...string) (string, error) {
	s.logger.Debug("Running git", zap.Strings("args", args))

	cmd := s.executor(s.cliPath(), args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git failed: %w", err)
	}
	return string(out), nil
}

// RepositoryPath resolves the repository root for a file or directory
func (s *GitServiceImpl) RepositoryPath(filePath string) (string, error) {
	dir := filePath
	if dir == "" {
		dir = "."
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	out, err := s.run("-C", dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%s is not inside a git repository: %w", filePath, err)
	}

	root := strings.TrimSpace(out)
	if root == "" {
		return "", fmt.Errorf("could not resolve repository for %s", filePath)
	}
	return root, nil
}

// Log lists recent commits of the repository
func (s *GitServiceImpl) Log(repoPath string, filters []string) ([]models.GitCommit, error) {
	limit := s.config.Git.LogLimit
	if limit <= 0 {
		limit = 50
	}

	args := []string{"-C", repoPath, "log", "--max-count=" + strconv.Itoa(limit), "--format=" + gitLogFormat}
	args = append(args, s.config.Git.LogFilters...)
	args = append(args, filters...)

	out, err := s.run(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read log of %s: %w", repoPath, err)
	}

	commits, err := parseGitLog(out)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log of %s: %w", repoPath, err)
	}
	s.logger.Debug("Read commit log", zap.String("repository", repoPath), zap.Int("commits", len(commits)))
	return commits, nil
}

// parseGitLog splits output produced with gitLogFormat
func parseGitLog(out string) ([]models.GitCommit, error) {
	var commits []models.GitCommit
	for _, record := range strings.Split(out, gitRecordSeparator) {
		record = strings.TrimLeft(record, "\r\n")
		if strings.TrimSpace(record) == "" {
			continue
		}

		fields := strings.Split(record, gitFieldSeparator)
		if len(fields) != 7 {
			return nil, fmt.Errorf("malformed log record with %d fields", len(fields))
		}

		date, err := time.Parse(time.RFC3339, fields[4])
		if err != nil {
			return nil, fmt.Errorf("invalid commit date %q: %w", fields[4], err)
		}

		commits = append(commits, models.GitCommit{
			Hash:      fields[0],
			ShortHash: fields[1],
			Author:    fields[2],
			Email:     fields[3],
			Date:      date,
			Subject:   fields[5],
			Body:      strings.TrimSpace(fields[6]),
		})
	}
	return commits, nil
}

// FormatCommit renders the commit message followed by a short provenance footer
func (s *GitServiceImpl) FormatCommit(commit models.GitCommit) string {
	var b strings.Builder
	b.WriteString(commit.Message())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "commit %s\n", commit.Hash)
	fmt.Fprintf(&b, "Author: %s <%s>\n", commit.Author, commit.Email)
	fmt.Fprintf(&b, "Date: %s", commit.Date.Format(time.RFC1123Z))
	return b.String()
}
