package models

import (
	"os/exec"
	"time"
)

// CommandExecutor creates commands; tests substitute it to avoid running real binaries
type CommandExecutor func(name string, args ...string) *exec.Cmd

// GitCommit is one entry of a repository's commit log
type GitCommit struct {
	Hash      string
	ShortHash string
	Author    string
	Email     string
	Date      time.Time
	Subject   string
	Body      string
}

// Message returns the full commit message
func (c GitCommit) Message() string {
	if c.Body == "" {
		return c.Subject
	}
	return c.Subject + "\n\n" + c.Body
}
