package services

import (
	"regexp"
	"strings"
)

// plainJQLValue matches values JQL accepts without quoting
var plainJQLValue = regexp.MustCompile(`^[\p{L}\p{N}_.]+$`)

var jqlReservedWords = map[string]bool{
	"and": true, "or": true, "not": true, "empty": true, "null": true,
	"order": true, "by": true, "in": true, "is": true, "was": true,
}

// quoteJQLValue leaves simple words untouched and double-quotes everything else
func quoteJQLValue(value string) string {
	if plainJQLValue.MatchString(value) && !jqlReservedWords[strings.ToLower(value)] {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `"` + escaped + `"`
}

// BuildAssigneeJQL returns the query for issues assigned to username, highest priority first.
// An empty status means no status filter.
func BuildAssigneeJQL(username string, status string) string {
	var b strings.Builder
	b.WriteString("assignee = ")
	b.WriteString(quoteJQLValue(username))
	if status != "" {
		b.WriteString(" and status = ")
		b.WriteString(quoteJQLValue(status))
	}
	b.WriteString(" order by priority desc")
	return b.String()
}
