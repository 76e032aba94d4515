package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jira-commit-helper/models"
	"jira-commit-helper/services"
)

// errWorkflowFailed signals a workflow that already reported its error to the user
var errWorkflowFailed = errors.New("workflow failed")

// app holds what every command shares: one configuration and one connection per process
type app struct {
	configPath string
	config     *models.Config
	controller *services.WorkflowController
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "jira-commit-helper",
		Short: "Comment on and transition Jira issues from your git history",
		Long: `jira-commit-helper attaches a commit message as a comment on a Jira issue,
and lets you browse and transition the issues assigned to you.

Configuration is read from --config, or .jira.yaml in the working directory
or your home directory, and can be overridden with JIRA_HELPER_* variables
(for example JIRA_HELPER_JIRA_HOST).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if Logger != nil {
				_ = Logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to configuration file (optional)")

	root.AddCommand(
		a.commentCommand(),
		a.issuesCommand(),
		a.transitionCommand(),
		a.configCommand(),
	)
	return root
}

// setup loads configuration, initializes logging and builds the shared connection
func (a *app) setup() error {
	config, err := models.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.config = config

	InitLogger(config)

	conn := services.Connect(config)
	if conn.IsConnected() {
		Logger.Debug("Jira connection configured", zap.String("host", conn.Host()), zap.String("username", conn.Username()))
	} else {
		Logger.Warn("Jira host not configured - Jira operations will be refused")
	}

	client := services.NewJiraClient(conn, Logger)
	git := services.NewGitService(config, Logger)
	ui := services.NewTerminalPrompter(os.Stderr, Logger)
	a.controller = services.NewWorkflowController(client, git, ui, Logger)
	return nil
}

func outcomeError(outcome services.Outcome) error {
	if outcome == services.OutcomeFailed {
		return errWorkflowFailed
	}
	return nil
}

func (a *app) commentCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add a commit message as a comment on an issue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outcomeError(a.controller.CommentOnIssue(cmd.Context(), file))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", ".", "File or directory inside the repository to read commits from")
	return cmd
}

func (a *app) issuesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "issues",
		Short: "Browse the issues assigned to you by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outcomeError(a.controller.ShowIssues(cmd.Context()))
		},
	}
}

func (a *app) transitionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transition",
		Short: "Move one of your issues to another status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outcomeError(a.controller.TransitionIssue(cmd.Context()))
		},
	}
}

func (a *app) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with credentials masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.config.ToYAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
