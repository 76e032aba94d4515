package mocks

import (
	"context"

	"jira-commit-helper/models"
	"jira-commit-helper/services"
)

// MockJiraClient is a mock implementation of the JiraClient interface
type MockJiraClient struct {
	IsConnectedFunc         func() bool
	UsernameFunc            func() string
	FindIssueAndCommentFunc func(ctx context.Context, key string, comment string) services.Result[*models.JiraComment]
	SearchIssuesFunc        func(ctx context.Context, jql string) services.Result[*models.JiraSearchResponse]
	ListStatusesFunc        func(ctx context.Context, project string) services.Result[[]models.JiraStatus]
	ListTransitionsFunc     func(ctx context.Context, key string) services.Result[[]models.JiraTransition]
	ApplyTransitionFunc     func(ctx context.Context, key string, transitionID string) services.Result[struct{}]
}

// IsConnected is the mock implementation of JiraClient's IsConnected method
func (m *MockJiraClient) IsConnected() bool {
	if m.IsConnectedFunc != nil {
		return m.IsConnectedFunc()
	}
	return true
}

// Username is the mock implementation of JiraClient's Username method
func (m *MockJiraClient) Username() string {
	if m.UsernameFunc != nil {
		return m.UsernameFunc()
	}
	return "test-user"
}

// FindIssueAndComment is the mock implementation of JiraClient's FindIssueAndComment method
func (m *MockJiraClient) FindIssueAndComment(ctx context.Context, key string, comment string) services.Result[*models.JiraComment] {
	if m.FindIssueAndCommentFunc != nil {
		return m.FindIssueAndCommentFunc(ctx, key, comment)
	}
	return services.Result[*models.JiraComment]{Code: services.CodeOK}
}

// SearchIssues is the mock implementation of JiraClient's SearchIssues method
func (m *MockJiraClient) SearchIssues(ctx context.Context, jql string) services.Result[*models.JiraSearchResponse] {
	if m.SearchIssuesFunc != nil {
		return m.SearchIssuesFunc(ctx, jql)
	}
	return services.Result[*models.JiraSearchResponse]{Code: services.CodeOK}
}

// ListStatuses is the mock implementation of JiraClient's ListStatuses method
func (m *MockJiraClient) ListStatuses(ctx context.Context, project string) services.Result[[]models.JiraStatus] {
	if m.ListStatusesFunc != nil {
		return m.ListStatusesFunc(ctx, project)
	}
	return services.Result[[]models.JiraStatus]{Code: services.CodeOK}
}

// ListTransitions is the mock implementation of JiraClient's ListTransitions method
func (m *MockJiraClient) ListTransitions(ctx context.Context, key string) services.Result[[]models.JiraTransition] {
	if m.ListTransitionsFunc != nil {
		return m.ListTransitionsFunc(ctx, key)
	}
	return services.Result[[]models.JiraTransition]{Code: services.CodeOK}
}

// ApplyTransition is the mock implementation of JiraClient's ApplyTransition method
func (m *MockJiraClient) ApplyTransition(ctx context.Context, key string, transitionID string) services.Result[struct{}] {
	if m.ApplyTransitionFunc != nil {
		return m.ApplyTransitionFunc(ctx, key, transitionID)
	}
	return services.Result[struct{}]{Code: services.CodeOK}
}
