package sync

import "github.com/mfellner/pinnwand/internal/model"

// DepartmentGroup is one board column: a department and the messages
// whose creator belongs to it. Empty groups are kept so the board can
// render its "Keine Nachrichten" placeholder.
type DepartmentGroup struct {
	Department model.Department
	Messages   []model.Message
}

// GroupByDepartment buckets messages under the given departments by
// the creator's department name, preserving both the department order
// and the message order within each group.
func GroupByDepartment(messages []model.Message, departments []model.Department) []DepartmentGroup {
	groups := make([]DepartmentGroup, len(departments))
	for i, dept := range departments {
		groups[i].Department = dept
		for _, msg := range messages {
			if msg.Creator.Department.Name == dept.Name {
				groups[i].Messages = append(groups[i].Messages, msg)
			}
		}
	}
	return groups
}

// MatchesFilter reports whether a message satisfies the board filter
// the server applied, mirroring the query semantics client-side: the
// archived flag must match exactly, the remaining fields only when set.
func MatchesFilter(msg model.Message, archived bool, priority, status, creator string) bool {
	if msg.IsArchived != archived {
		return false
	}
	if priority != "" && msg.Priority.FilterValue() != priority {
		return false
	}
	if status != "" && msg.Status.Name != status {
		return false
	}
	if creator != "" && msg.Creator.Name != creator {
		return false
	}
	return true
}
