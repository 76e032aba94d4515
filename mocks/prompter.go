package mocks

import (
	"context"

	"jira-commit-helper/models"
	"jira-commit-helper/services"
)

// MockPrompter is a mock implementation of the Prompter interface.
// Notices are recorded so tests can assert on what the user saw.
type MockPrompter struct {
	InputFunc  func(ctx context.Context, placeholder string) (string, error)
	SelectFunc func(ctx context.Context, placeholder string, items []models.SelectionItem) (int, error)

	StatusMessages []string
	ErrorMessages  []string
}

// Input is the mock implementation of Prompter's Input method
func (m *MockPrompter) Input(ctx context.Context, placeholder string) (string, error) {
	if m.InputFunc != nil {
		return m.InputFunc(ctx, placeholder)
	}
	return "", services.ErrDismissed
}

// Select is the mock implementation of Prompter's Select method
func (m *MockPrompter) Select(ctx context.Context, placeholder string, items []models.SelectionItem) (int, error) {
	if m.SelectFunc != nil {
		return m.SelectFunc(ctx, placeholder, items)
	}
	return -1, services.ErrDismissed
}

// Status records a status notice
func (m *MockPrompter) Status(message string) {
	m.StatusMessages = append(m.StatusMessages, message)
}

// Error records an error notice
func (m *MockPrompter) Error(message string) {
	m.ErrorMessages = append(m.ErrorMessages, message)
}
