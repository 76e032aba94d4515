package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"jira-commit-helper/models"
)

// maxSelectHeight caps the number of visible rows in a selection list
const maxSelectHeight = 15

// ErrDismissed is returned when the user dismisses a prompt or selection without choosing
var ErrDismissed = errors.New("prompt dismissed")

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	})
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	})
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	})
)

// Prompter is the interactive surface the workflows drive
type Prompter interface {
	// Input asks for free text; an empty answer counts as dismissed
	Input(ctx context.Context, placeholder string) (string, error)

	// Select asks the user to pick one item and returns its index
	Select(ctx context.Context, placeholder string, items []models.SelectionItem) (int, error)

	// Status shows a transient notice
	Status(message string)

	// Error shows an error notice
	Error(message string)
}

// TerminalPrompter implements Prompter with huh forms and lipgloss-styled notices
type TerminalPrompter struct {
	out    io.Writer
	logger *zap.Logger
}

// NewTerminalPrompter creates a prompter that writes notices to out
func NewTerminalPrompter(out io.Writer, logger *zap.Logger) *TerminalPrompter {
	return &TerminalPrompter{out: out, logger: logger}
}

func dismissed(err error) error {
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
		return ErrDismissed
	}
	return err
}

// Input prompts for a single line of text
func (p *TerminalPrompter) Input(ctx context.Context, placeholder string) (string, error) {
	var value string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(placeholder).
			Placeholder(placeholder).
			Value(&value),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return "", dismissed(err)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrDismissed
	}
	return value, nil
}

// Select shows a filterable list and returns the chosen index
func (p *TerminalPrompter) Select(ctx context.Context, placeholder string, items []models.SelectionItem) (int, error) {
	if len(items) == 0 {
		return -1, ErrDismissed
	}

	options := make([]huh.Option[int], 0, len(items))
	for i, item := range items {
		options = append(options, huh.NewOption(optionText(item), i))
	}

	choice := -1
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title(placeholder).
			Options(options...).
			Filtering(true).
			Height(min(len(items)+2, maxSelectHeight)).
			Value(&choice),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return -1, dismissed(err)
	}
	if choice < 0 || choice >= len(items) {
		return -1, ErrDismissed
	}
	return choice, nil
}

// optionText lays out label, description and detail on one line
func optionText(item models.SelectionItem) string {
	parts := []string{item.Label}
	if item.Description != "" {
		parts = append(parts, mutedStyle.Render("["+item.Description+"]"))
	}
	if item.Detail != "" {
		parts = append(parts, item.Detail)
	}
	return strings.Join(parts, "  ")
}

// Status prints a transient notice
func (p *TerminalPrompter) Status(message string) {
	if _, err := fmt.Fprintln(p.out, statusStyle.Render(message)); err != nil {
		p.logger.Debug("Failed to write status", zap.Error(err))
	}
}

// Error prints an error notice
func (p *TerminalPrompter) Error(message string) {
	if _, err := fmt.Fprintln(p.out, errorStyle.Render(message)); err != nil {
		p.logger.Debug("Failed to write error", zap.Error(err))
	}
}
