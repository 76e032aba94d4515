package models

// SelectionItem is one entry of an interactive choice list: an issue, a status or a transition
type SelectionItem struct {
	Label       string
	Description string
	Detail      string
}

// AllStatuses is the synthetic status entry meaning "no status filter"
const AllStatuses = "All"

// StatusSelectionItems builds the status choices, with the synthetic All entry first
func StatusSelectionItems(statuses []JiraStatus) []SelectionItem {
	items := make([]SelectionItem, 0, len(statuses)+1)
	items = append(items, SelectionItem{Label: AllStatuses, Description: "Issues in any status"})
	for _, status := range statuses {
		items = append(items, SelectionItem{Label: status.Name, Description: status.Description})
	}
	return items
}

// IssueSelectionItems presents issues as key, status name and summary
func IssueSelectionItems(issues []JiraIssue) []SelectionItem {
	items := make([]SelectionItem, 0, len(issues))
	for _, issue := range issues {
		items = append(items, SelectionItem{
			Label:       issue.Key,
			Description: issue.Fields.Status.Name,
			Detail:      issue.Fields.Summary,
		})
	}
	return items
}

// TransitionSelectionItems presents transitions as id and name
func TransitionSelectionItems(transitions []JiraTransition) []SelectionItem {
	items := make([]SelectionItem, 0, len(transitions))
	for _, transition := range transitions {
		items = append(items, SelectionItem{Label: transition.ID, Description: transition.Name})
	}
	return items
}
