package mocks

import (
	"jira-commit-helper/models"
)

// MockGitService is a mock implementation of the GitService interface
type MockGitService struct {
	RepositoryPathFunc func(filePath string) (string, error)
	LogFunc            func(repoPath string, filters []string) ([]models.GitCommit, error)
	FormatCommitFunc   func(commit models.GitCommit) string
}

// RepositoryPath is the mock implementation of GitService's RepositoryPath method
func (m *MockGitService) RepositoryPath(filePath string) (string, error) {
	if m.RepositoryPathFunc != nil {
		return m.RepositoryPathFunc(filePath)
	}
	return "/tmp/repo", nil
}

// Log is the mock implementation of GitService's Log method
func (m *MockGitService) Log(repoPath string, filters []string) ([]models.GitCommit, error) {
	if m.LogFunc != nil {
		return m.LogFunc(repoPath, filters)
	}
	return nil, nil
}

// FormatCommit is the mock implementation of GitService's FormatCommit method
func (m *MockGitService) FormatCommit(commit models.GitCommit) string {
	if m.FormatCommitFunc != nil {
		return m.FormatCommitFunc(commit)
	}
	return commit.Message()
}
