package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mfellner/pinnwand/internal/model"
)

// loginResponse is the payload of a successful /login call.
type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// dataEnvelope wraps responses that nest their payload under "data"
// (message creation, updates, comments).
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// Login authenticates with email and password and persists the
// resulting session.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	body := map[string]string{"email": email, "password": password}

	var resp loginResponse
	if err := c.Post(ctx, "/login", body, &resp); err != nil {
		return model.User{}, err
	}

	if err := c.sessions.Set(resp.Token, resp.User); err != nil {
		return model.User{}, fmt.Errorf("persisting session: %w", err)
	}
	return resp.User, nil
}

// Logout clears the local session. The backend keeps no server-side
// session state for this client, so this is purely local.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// Dashboard fetches the per-board summaries for the dashboard screen.
func (c *Client) Dashboard(ctx context.Context) (model.Dashboard, error) {
	var d model.Dashboard
	err := c.Get(ctx, "/dashboard", &d)
	return d, err
}

// BoardFilter narrows a board query. Archived is always sent; the
// remaining fields are sent only when set.
type BoardFilter struct {
	Archived bool
	Creator  string
	Priority string // "hoch", "mittel", "niedrig"
	Status   string
}

// query renders the filter as a query string.
func (f BoardFilter) query() string {
	return encodeQuery(map[string]string{
		"is_archived": strconv.FormatBool(f.Archived),
		"creator_id":  f.Creator,
		"priority":    f.Priority,
		"status":      f.Status,
	})
}

// Board fetches the filtered message list of one board.
func (c *Client) Board(ctx context.Context, board model.BoardType, filter BoardFilter) ([]model.Message, error) {
	var msgs []model.Message
	err := c.Get(ctx, "/"+string(board)+filter.query(), &msgs)
	return msgs, err
}

// GetMessage fetches a single message with its comment and activity
// threads.
func (c *Client) GetMessage(ctx context.Context, id int) (model.Message, error) {
	var m model.Message
	err := c.Get(ctx, fmt.Sprintf("/messages/%d", id), &m)
	return m, err
}

// MessageDraft is the request body for creating or editing a message.
type MessageDraft struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Priority       model.Priority `json:"priority"`
	StatusID       int            `json:"status_id"`
	IsAnnouncement bool           `json:"is_announcement"`
	Assignees      []int          `json:"assignees"`
	Assignee       *int           `json:"assignee"`
}

// CreateMessage creates a new message and returns the server's copy.
func (c *Client) CreateMessage(ctx context.Context, draft MessageDraft) (model.Message, error) {
	var resp dataEnvelope[model.Message]
	err := c.Post(ctx, "/new-message", draft, &resp)
	return resp.Data, err
}

// UpdateMessage edits an existing message and returns the server's copy.
func (c *Client) UpdateMessage(ctx context.Context, id int, draft MessageDraft) (model.Message, error) {
	var resp dataEnvelope[model.Message]
	err := c.Put(ctx, fmt.Sprintf("/message-update/%d", id), draft, &resp)
	return resp.Data, err
}

// SetArchived toggles a message's archive flag.
func (c *Client) SetArchived(ctx context.Context, id int, archived bool) error {
	body := map[string]bool{"is_archived": archived}
	return c.Put(ctx, fmt.Sprintf("/messages/%d", id), body, nil)
}

// AddComment posts a comment and returns the stored record, including
// the id the realtime channel will echo back.
func (c *Client) AddComment(ctx context.Context, messageID int, text string) (model.Comment, error) {
	body := map[string]string{"text": text}

	var resp dataEnvelope[model.Comment]
	err := c.Post(ctx, fmt.Sprintf("/messages/%d/comments", messageID), body, &resp)
	return resp.Data, err
}

// StoreActivity appends an audit-log entry to a message. AssigneeID is
// optional and names the user an action was directed at ("hat geteilt
// mit").
func (c *Client) StoreActivity(ctx context.Context, messageID int, action string, assigneeID *int) error {
	body := map[string]interface{}{
		"message_id": messageID,
		"action":     action,
	}
	if assigneeID != nil {
		body["assignee_id"] = *assigneeID
	}
	return c.Post(ctx, "/store-activities", body, nil)
}

// UploadAttachments uploads local files to a message via multipart
// form data.
func (c *Client) UploadAttachments(ctx context.Context, messageID int, filePaths []string) error {
	if len(filePaths) == 0 {
		return nil
	}
	values := map[string]string{"message_id": strconv.Itoa(messageID)}
	return c.postMultipart(ctx, "/store-attachments", values, filePaths, nil)
}

// Assign replaces a message's subscriber set.
func (c *Client) Assign(ctx context.Context, messageID int, userIDs []int) error {
	body := map[string][]int{"assignees": userIDs}
	return c.Post(ctx, fmt.Sprintf("/messages/%d/assign", messageID), body, nil)
}

// AssignToMe makes the current user the message's primary assignee.
func (c *Client) AssignToMe(ctx context.Context, messageID int) error {
	return c.Post(ctx, fmt.Sprintf("/messages/%d/assign-to-me", messageID), nil, nil)
}

// ListStatuses fetches the available workflow states.
func (c *Client) ListStatuses(ctx context.Context) ([]model.Status, error) {
	var statuses []model.Status
	err := c.Get(ctx, "/message-statuses", &statuses)
	return statuses, err
}

// usersResponse wraps the /users payload.
type usersResponse struct {
	Users []model.User `json:"users"`
}

// ListUsers fetches all user accounts (for assignee selection).
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var resp usersResponse
	err := c.Get(ctx, "/users", &resp)
	return resp.Users, err
}

// ListDepartments fetches all departments (board columns).
func (c *Client) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var deps []model.Department
	err := c.Get(ctx, "/departments", &deps)
	return deps, err
}
