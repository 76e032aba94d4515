package services

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"jira-commit-helper/models"
)

// fakeGitOutput is what the helper process prints for "git log"
var fakeGitOutput = strings.Join([]string{
	"1111111111111111111111111111111111111111\x1f1111111\x1fAlice\x1falice@example.com\x1f2025-07-07T08:29:32+02:00\x1fFix login redirect\x1fThe redirect lost the query string.\n\nRefs PROJ-1\n\x1e",
	"\n2222222222222222222222222222222222222222\x1f2222222\x1fBob\x1fbob@example.com\x1f2025-07-06T10:00:00Z\x1fInitial commit\x1f\x1e",
	"\n",
}, "")

// fakeExecutor re-invokes the test binary as a stand-in for git
func fakeExecutor(mode string, calls *[][]string) models.CommandExecutor {
	return func(name string, args ...string) *exec.Cmd {
		*calls = append(*calls, append([]string{name}, args...))
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "GIT_HELPER_MODE="+mode)
		return cmd
	}
}

// TestHelperProcess is not a real test; it plays git for fakeExecutor
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	switch os.Getenv("GIT_HELPER_MODE") {
	case "toplevel":
		fmt.Fprintln(os.Stdout, "/work/repo")
	case "log":
		fmt.Fprint(os.Stdout, fakeGitOutput)
	case "fail":
		fmt.Fprintln(os.Stderr, "fatal: not a git repository (or any of the parent directories): .git")
		os.Exit(128)
	}
}

func newTestGitService(mode string, calls *[][]string) *GitServiceImpl {
	config := &models.Config{}
	config.Git.CLIPath = "git"
	config.Git.LogLimit = 10
	return NewGitService(config, zap.NewNop(), fakeExecutor(mode, calls))
}

func TestGitService_RepositoryPath(t *testing.T) {
	var calls [][]string
	service := newTestGitService("toplevel", &calls)

	dir := t.TempDir()
	file := dir + "/main.go"
	if err := os.WriteFile(file, []byte("package main\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	root, err := service.RepositoryPath(file)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if root != "/work/repo" {
		t.Errorf("Expected '/work/repo', got %q", root)
	}

	expected := []string{"git", "-C", dir, "rev-parse", "--show-toplevel"}
	if strings.Join(calls[0], " ") != strings.Join(expected, " ") {
		t.Errorf("Expected command %v, got %v", expected, calls[0])
	}
}

func TestGitService_RepositoryPathOutsideRepository(t *testing.T) {
	var calls [][]string
	service := newTestGitService("fail", &calls)

	_, err := service.RepositoryPath(t.TempDir())
	if err == nil {
		t.Fatal("Expected an error outside a repository")
	}
	if !strings.Contains(err.Error(), "not a git repository") {
		t.Errorf("Expected git's stderr in error, got %q", err.Error())
	}
}

func TestGitService_Log(t *testing.T) {
	var calls [][]string
	service := newTestGitService("log", &calls)

	commits, err := service.Log("/work/repo", []string{"--author=alice"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(commits) != 2 {
		t.Fatalf("Expected 2 commits, got %d", len(commits))
	}
	first := commits[0]
	if first.ShortHash != "1111111" || first.Author != "Alice" || first.Email != "alice@example.com" {
		t.Errorf("Unexpected first commit %+v", first)
	}
	if first.Subject != "Fix login redirect" {
		t.Errorf("Expected subject 'Fix login redirect', got %q", first.Subject)
	}
	if first.Body != "The redirect lost the query string.\n\nRefs PROJ-1" {
		t.Errorf("Unexpected body %q", first.Body)
	}
	if !first.Date.Equal(time.Date(2025, 7, 7, 6, 29, 32, 0, time.UTC)) {
		t.Errorf("Unexpected date %v", first.Date)
	}
	if commits[1].Body != "" || commits[1].Subject != "Initial commit" {
		t.Errorf("Unexpected second commit %+v", commits[1])
	}

	args := strings.Join(calls[0], " ")
	if !strings.Contains(args, "-C /work/repo log --max-count=10") {
		t.Errorf("Expected log invocation with limit, got %q", args)
	}
	if !strings.HasSuffix(args, "--author=alice") {
		t.Errorf("Expected filters at the end, got %q", args)
	}
}

func TestGitService_LogConfiguredFilters(t *testing.T) {
	var calls [][]string
	service := newTestGitService("log", &calls)
	service.config.Git.LogFilters = []string{"--no-merges"}

	if _, err := service.Log("/work/repo", []string{"--author=alice"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	args := strings.Join(calls[0], " ")
	if !strings.HasSuffix(args, "--no-merges --author=alice") {
		t.Errorf("Expected configured filters before caller filters, got %q", args)
	}
}

func TestParseGitLog_Malformed(t *testing.T) {
	if _, err := parseGitLog("abc\x1fdef\x1e"); err == nil {
		t.Error("Expected an error for a record with missing fields")
	}
	if _, err := parseGitLog("a\x1fb\x1fc\x1fd\x1fnot-a-date\x1fs\x1fb\x1e"); err == nil {
		t.Error("Expected an error for an invalid date")
	}

	commits, err := parseGitLog("")
	if err != nil || len(commits) != 0 {
		t.Errorf("Expected no commits and no error for empty output, got %v, %v", commits, err)
	}
}

func TestGitService_FormatCommit(t *testing.T) {
	service := NewGitService(&models.Config{}, zap.NewNop())
	commit := models.GitCommit{
		Hash:    "1111111111111111111111111111111111111111",
		Author:  "Alice",
		Email:   "alice@example.com",
		Date:    time.Date(2025, 7, 7, 8, 29, 32, 0, time.UTC),
		Subject: "Fix login redirect",
		Body:    "Keep the query string.",
	}

	expected := "Fix login redirect\n\nKeep the query string.\n\n" +
		"commit 1111111111111111111111111111111111111111\n" +
		"Author: Alice <alice@example.com>\n" +
		"Date: Mon, 07 Jul 2025 08:29:32 +0000"

	if got := service.FormatCommit(commit); got != expected {
		t.Errorf("Expected:\n%s\ngot:\n%s", expected, got)
	}
}
