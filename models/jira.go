package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// JiraTime handles Jira's custom date format
// Example: 2025-07-07T08:29:32.000+0000
// Go format: 2006-01-02T15:04:05.000-0700
type JiraTime struct {
	time.Time
}

func (jt *JiraTime) UnmarshalJSON(b []byte) error {
	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "null" || s == "" {
		jt.Time = time.Time{}
		return nil
	}
	// Try Jira format first
	t, err := time.Parse("2006-01-02T15:04:05.000-0700", s)
	if err == nil {
		jt.Time = t
		return nil
	}
	// Try RFC3339 with milliseconds and Z
	t, err = time.Parse("2006-01-02T15:04:05.000Z", s)
	if err == nil {
		jt.Time = t
		return nil
	}
	return fmt.Errorf("could not parse JiraTime: %w", err)
}

// JiraIssue represents a Jira issue. Only the fields the workflows consume are decoded.
type JiraIssue struct {
	ID     string     `json:"id"`
	Self   string     `json:"self"`
	Key    string     `json:"key"`
	Fields JiraFields `json:"fields"`
}

// JiraFields represents the fields of a Jira issue
type JiraFields struct {
	Summary string `json:"summary"`
	// Description is a string on REST v2 and a document object on v3; kept undecoded
	Description json.RawMessage `json:"description,omitempty"`
	Status      JiraStatus      `json:"status"`
	Assignee    *JiraUser       `json:"assignee,omitempty"`
}

// JiraStatus represents a status, either on an issue or in a project's status listing
type JiraStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// JiraUser represents a Jira user
type JiraUser struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// JiraComment represents a comment on a Jira issue
type JiraComment struct {
	ID      string   `json:"id"`
	Self    string   `json:"self"`
	Body    string   `json:"body"`
	Author  JiraUser `json:"author"`
	Created JiraTime `json:"created"`
	Updated JiraTime `json:"updated"`
}

// JiraSearchResponse represents the response from a Jira search
type JiraSearchResponse struct {
	Expand     string      `json:"expand"`
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []JiraIssue `json:"issues"`
}

// JiraIssueTypeStatuses is one entry of /project/{key}/statuses: an issue type and the statuses it can take
type JiraIssueTypeStatuses struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Statuses []JiraStatus `json:"statuses"`
}

// JiraStatusPayload is the body of a project status listing. Servers answer either
// with a list of issue-type groups or with a single group object; both decode here.
type JiraStatusPayload struct {
	Groups []JiraIssueTypeStatuses
	Single *JiraIssueTypeStatuses
}

// UnmarshalJSON picks the variant from the first non-space byte
func (p *JiraStatusPayload) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = JiraStatusPayload{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var groups []JiraIssueTypeStatuses
		if err := json.Unmarshal(trimmed, &groups); err != nil {
			return fmt.Errorf("failed to decode status groups: %w", err)
		}
		*p = JiraStatusPayload{Groups: groups}
	case '{':
		var single JiraIssueTypeStatuses
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return fmt.Errorf("failed to decode status object: %w", err)
		}
		*p = JiraStatusPayload{Single: &single}
	default:
		return fmt.Errorf("unexpected status payload starting with %q", trimmed[0])
	}
	return nil
}

// Statuses normalizes either shape into one list. For the list shape only the
// first group is used.
func (p JiraStatusPayload) Statuses() []JiraStatus {
	if p.Single != nil {
		return p.Single.Statuses
	}
	if len(p.Groups) > 0 {
		return p.Groups[0].Statuses
	}
	return nil
}

// JiraTransition is a workflow transition currently available on an issue
type JiraTransition struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	To   JiraStatus `json:"to"`
}

// JiraTransitionsResponse is the body of GET /issue/{key}/transitions
type JiraTransitionsResponse struct {
	Expand      string           `json:"expand"`
	Transitions []JiraTransition `json:"transitions"`
}
