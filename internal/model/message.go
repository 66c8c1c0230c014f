package model

// Priority is the urgency level of a message. The backend uses the
// German display names as wire values.
type Priority string

const (
	PriorityLow    Priority = "Niedrig"
	PriorityMedium Priority = "Mittel"
	PriorityHigh   Priority = "Hoch"
)

// FilterValue returns the lowercase form the board endpoints expect
// in their priority query parameter.
func (p Priority) FilterValue() string {
	switch p {
	case PriorityLow:
		return "niedrig"
	case PriorityMedium:
		return "mittel"
	case PriorityHigh:
		return "hoch"
	}
	return ""
}

// Department is an organizational unit messages are grouped under on boards.
type Department struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// User is a user account as returned by the backend.
type User struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Department Department `json:"department"`
}

// Status is a workflow state a message can be in.
type Status struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Comment is a single entry in a message's discussion thread.
type Comment struct {
	ID        int    `json:"id"`
	MessageID int    `json:"message_id,omitempty"`
	User      User   `json:"user"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// Activity is an immutable audit-log entry describing an action taken
// on a message (created, shared, edited).
type Activity struct {
	ID        int    `json:"id"`
	User      User   `json:"user"`
	Action    string `json:"action"`
	Assignee  *User  `json:"assignee,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Attachment is a file uploaded to a message.
type Attachment struct {
	ID           int    `json:"id"`
	URL          string `json:"url"`
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
}

// Message is a ticket on the board: title, description, workflow state,
// the responsible assignee plus a set of subscribers, its attachments,
// and the discussion and activity threads.
//
// The comment list is strictly ordered by arrival; no comment id may
// appear twice (see the sync package for the merge rules that keep
// this invariant under concurrent realtime events).
type Message struct {
	ID             int          `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Priority       Priority     `json:"priority"`
	Status         Status       `json:"status"`
	StatusID       int          `json:"status_id"`
	Creator        User         `json:"creator"`
	Assignee       *User        `json:"assignee,omitempty"`
	Assignees      []User       `json:"assignees"`
	Attachments    []Attachment `json:"attachments"`
	Comments       []Comment    `json:"chat_messages"`
	Activities     []Activity   `json:"activities"`
	IsArchived     bool         `json:"is_archived"`
	IsAnnouncement bool         `json:"is_announcement"`
}

// HasComment reports whether the message already holds a comment with
// the given id.
func (m *Message) HasComment(id int) bool {
	for _, c := range m.Comments {
		if c.ID == id {
			return true
		}
	}
	return false
}

// AssignedTo reports whether the given user is the primary assignee or
// one of the subscribers of the message.
func (m *Message) AssignedTo(userID int) bool {
	if m.Assignee != nil && m.Assignee.ID == userID {
		return true
	}
	for _, a := range m.Assignees {
		if a.ID == userID {
			return true
		}
	}
	return false
}

// BoardType selects one of the filtered board endpoints.
type BoardType string

const (
	BoardAssigned     BoardType = "assigned"
	BoardCreated      BoardType = "created"
	BoardAnnouncement BoardType = "announcement"
)

// BoardSummary is one section of the dashboard response: the most
// recent messages of a board plus its total count.
type BoardSummary struct {
	Latest []Message `json:"latest"`
	Total  int       `json:"total"`
}

// Dashboard is the aggregate returned by the /dashboard endpoint.
type Dashboard struct {
	Assigned      BoardSummary `json:"assigned"`
	Created       BoardSummary `json:"created"`
	Announcements BoardSummary `json:"announcements"`
}
