package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jira-commit-helper/models"
)

// Outcome is how a workflow ended
type Outcome int

const (
	// OutcomeDone means every step ran and the final call succeeded
	OutcomeDone Outcome = iota
	// OutcomeCancelled means a prompt was dismissed; nothing is reported
	OutcomeCancelled
	// OutcomeFailed means an error notice was shown
	OutcomeFailed
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

const (
	placeholderIssueKey   = "ID of a Issue"
	placeholderCommit     = "select Commit"
	placeholderStatus     = "select task status!"
	placeholderIssue      = "select task!"
	placeholderTransition = "select transition!"
)

// resultError carries a failed client result: the message is what the user sees,
// the wrapped error keeps its class for errors.Is
type resultError struct {
	message string
	err     error
}

func (e *resultError) Error() string { return e.message }
func (e *resultError) Unwrap() error { return e.err }

func fromResult[T any](r Result[T]) error {
	return &resultError{message: r.Message, err: r.Err}
}

// WorkflowController runs the interactive workflows. Each workflow is linear:
// one client call at a time, each followed by at most one user choice.
type WorkflowController struct {
	client JiraClient
	git    GitService
	ui     Prompter
	logger *zap.Logger
}

// NewWorkflowController creates a controller over a shared client
func NewWorkflowController(client JiraClient, git GitService, ui Prompter, logger *zap.Logger) *WorkflowController {
	return &WorkflowController{
		client: client,
		git:    git,
		ui:     ui,
		logger: logger,
	}
}

// finish turns the error of a workflow into its outcome, reporting failures
func (w *WorkflowController) finish(workflow string, err error) Outcome {
	if err == nil {
		w.logger.Debug("Workflow finished", zap.String("workflow", workflow))
		return OutcomeDone
	}
	if errors.Is(err, ErrDismissed) {
		w.logger.Debug("Workflow cancelled", zap.String("workflow", workflow), zap.Error(err))
		return OutcomeCancelled
	}
	w.logger.Warn("Workflow failed", zap.String("workflow", workflow), zap.Error(err))
	w.ui.Error(err.Error())
	return OutcomeFailed
}

func (w *WorkflowController) requireConnection() error {
	if w.client.IsConnected() {
		return nil
	}
	return fromResult(notConnected[struct{}]())
}

// CommentOnIssue asks for an issue key and a commit from the repository of
// activeFile, then posts the formatted commit as a comment on the issue.
func (w *WorkflowController) CommentOnIssue(ctx context.Context, activeFile string) Outcome {
	return w.finish("comment", w.commentOnIssue(ctx, activeFile))
}

func (w *WorkflowController) commentOnIssue(ctx context.Context, activeFile string) error {
	if err := w.requireConnection(); err != nil {
		return err
	}

	key, err := w.ui.Input(ctx, placeholderIssueKey)
	if err != nil {
		return err
	}

	repoPath, err := w.git.RepositoryPath(activeFile)
	if err != nil {
		return fmt.Errorf("ERROR: %w", err)
	}

	commits, err := w.git.Log(repoPath, nil)
	if err != nil {
		return fmt.Errorf("ERROR: %w", err)
	}
	if len(commits) == 0 {
		return fmt.Errorf("ERROR: no commits found in %s", repoPath)
	}

	items := make([]models.SelectionItem, 0, len(commits))
	for _, commit := range commits {
		items = append(items, models.SelectionItem{
			Label:       commit.Subject,
			Description: commit.ShortHash,
			Detail:      commit.Author,
		})
	}

	idx, err := w.ui.Select(ctx, placeholderCommit, items)
	if err != nil {
		return err
	}

	comment := w.git.FormatCommit(commits[idx])
	w.logger.Debug("Posting commit as comment", zap.String("issue", key), zap.String("commit", commits[idx].Hash))

	result := w.client.FindIssueAndComment(ctx, key, comment)
	if !result.OK() {
		return fromResult(result)
	}

	notice := fmt.Sprintf("Comment added to %s", key)
	if result.Value != nil && result.Value.Body != "" {
		notice += ": " + firstLine(result.Value.Body)
	}
	w.ui.Status(notice)
	return nil
}

// SelectIssue lets the user pick a status and then one of their issues in it
func (w *WorkflowController) SelectIssue(ctx context.Context) (*models.JiraIssue, Outcome) {
	issue, err := w.selectIssue(ctx)
	if err != nil {
		return nil, w.finish("select-issue", err)
	}
	return issue, OutcomeDone
}

// ShowIssues browses the user's issues by status; picking an issue only displays it
func (w *WorkflowController) ShowIssues(ctx context.Context) Outcome {
	issue, err := w.selectIssue(ctx)
	if err == nil {
		w.logger.Info("Issue selected", zap.String("issue", issue.Key))
		w.ui.Status(fmt.Sprintf("%s [%s] %s", issue.Key, issue.Fields.Status.Name, issue.Fields.Summary))
	}
	return w.finish("issues", err)
}

func (w *WorkflowController) selectIssue(ctx context.Context) (*models.JiraIssue, error) {
	if err := w.requireConnection(); err != nil {
		return nil, err
	}

	statuses := w.client.ListStatuses(ctx, "")
	if !statuses.OK() {
		return nil, fromResult(statuses)
	}

	idx, err := w.ui.Select(ctx, placeholderStatus, models.StatusSelectionItems(statuses.Value))
	if err != nil {
		return nil, err
	}

	// index 0 is the synthetic All entry
	status := ""
	if idx > 0 {
		status = statuses.Value[idx-1].Name
	}

	jql := BuildAssigneeJQL(w.client.Username(), status)
	w.logger.Debug("Searching issues", zap.String("jql", jql))

	search := w.client.SearchIssues(ctx, jql)
	if !search.OK() {
		return nil, fromResult(search)
	}

	var issues []models.JiraIssue
	if search.Value != nil {
		issues = search.Value.Issues
	}
	if len(issues) == 0 {
		w.ui.Status("No issues found.")
		return nil, fmt.Errorf("%w: no issues for %q", ErrDismissed, jql)
	}

	idx, err = w.ui.Select(ctx, placeholderIssue, models.IssueSelectionItems(issues))
	if err != nil {
		return nil, err
	}
	return &issues[idx], nil
}

// TransitionIssue lets the user pick one of their issues and move it through one of its transitions
func (w *WorkflowController) TransitionIssue(ctx context.Context) Outcome {
	return w.finish("transition", w.transitionIssue(ctx))
}

func (w *WorkflowController) transitionIssue(ctx context.Context) error {
	issue, err := w.selectIssue(ctx)
	if err != nil {
		return err
	}

	transitions := w.client.ListTransitions(ctx, issue.Key)
	if !transitions.OK() {
		return fromResult(transitions)
	}
	if len(transitions.Value) == 0 {
		w.ui.Status(fmt.Sprintf("No transitions available for %s.", issue.Key))
		return fmt.Errorf("%w: no transitions for %s", ErrDismissed, issue.Key)
	}

	idx, err := w.ui.Select(ctx, placeholderTransition, models.TransitionSelectionItems(transitions.Value))
	if err != nil {
		return err
	}
	transition := transitions.Value[idx]

	applied := w.client.ApplyTransition(ctx, issue.Key, transition.ID)
	if !applied.OK() {
		return fromResult(applied)
	}

	w.ui.Status(fmt.Sprintf("Issue %s transitioned: %s", issue.Key, transition.Name))
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
