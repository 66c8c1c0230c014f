// Package sync holds the client-side synchronization rules between
// local view state, the REST API, and the realtime channel: which
// events apply to an open view, how comments deduplicate when the same
// record arrives both as a submit response and as a realtime event, and
// how local toggles roll back when the server rejects them.
package sync

import (
	"fmt"

	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/realtime"
)

// ViewState is the lifecycle of a message detail view. There is no
// error state: a failed call surfaces a transient notice and the view
// stays Loaded with stale data.
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewLoaded
)

// MessageView is the local copy of a message held by an open detail
// view, together with its load state.
type MessageView struct {
	State   ViewState
	Message model.Message

	// ScrollToNewest is set when a comment was appended and the view
	// should scroll to the end of the thread. The renderer consumes it
	// via TakeScrollRequest.
	scrollToNewest bool
}

// NewMessageView returns a view in the Loading state.
func NewMessageView() *MessageView {
	return &MessageView{State: ViewLoading}
}

// SetLoaded installs a freshly fetched message and moves to Loaded.
func (v *MessageView) SetLoaded(m model.Message) {
	v.Message = m
	v.State = ViewLoaded
}

// Refetch moves back to Loading for an explicit reload. The stale
// message stays behind the spinner until SetLoaded replaces it.
func (v *MessageView) Refetch() {
	v.State = ViewLoading
}

// ApplyEvent folds a realtime event into the view. It reports whether
// the view changed.
//
// Comment events apply only when they concern the displayed message
// and carry a comment id not yet in the thread; the id check guards
// against the same comment being reflected both by the realtime
// channel and by the direct response to the comment submission.
// Message-created events never mutate an open detail view.
func (v *MessageView) ApplyEvent(ev realtime.Event) bool {
	if v.State != ViewLoaded || ev.Comment == nil {
		return false
	}
	if ev.Comment.MessageID != v.Message.ID {
		return false
	}
	return v.ApplyComment(*ev.Comment)
}

// ApplyComment appends a comment unless the thread already holds its
// id. Used for both realtime events and submit responses, so whichever
// of the two arrives second is the one that gets dropped.
func (v *MessageView) ApplyComment(c model.Comment) bool {
	if v.Message.HasComment(c.ID) {
		return false
	}
	v.Message.Comments = append(v.Message.Comments, c)
	v.scrollToNewest = true
	return true
}

// TakeScrollRequest returns whether a scroll to the newest comment is
// pending and clears the flag.
func (v *MessageView) TakeScrollRequest() bool {
	s := v.scrollToNewest
	v.scrollToNewest = false
	return s
}

// Toggle captures the pre-toggle value of a boolean field for the
// confirm-then-apply mutation policy: the UI keeps showing the old
// value while the HTTP call runs, applies the new value only on
// success, and restores the captured value on failure.
type Toggle struct {
	Previous bool
	Desired  bool
}

// NewToggle records an intended flip of the given field.
func NewToggle(current bool) Toggle {
	return Toggle{Previous: current, Desired: !current}
}

// Resolve returns the value the field should hold after the HTTP call
// finished: the desired value on success, the captured pre-toggle
// value on failure.
func (t Toggle) Resolve(callErr error) bool {
	if callErr != nil {
		return t.Previous
	}
	return t.Desired
}

// NotificationFor converts a realtime event into the user-facing
// notification line appended to the notification log. The creating or
// commenting user's name and the content are included verbatim.
func NotificationFor(ev realtime.Event) (model.Notification, bool) {
	switch {
	case ev.Message != nil:
		return model.Notification{
			MessageID: ev.Message.ID,
			Text: fmt.Sprintf("Neue Nachricht von %s: %s",
				ev.Message.Creator.Name, ev.Message.Title),
		}, true

	case ev.Comment != nil:
		return model.Notification{
			MessageID: ev.Comment.MessageID,
			Text: fmt.Sprintf("Neuer Kommentar von %s: %s",
				ev.Comment.User.Name, ev.Comment.Content),
		}, true
	}
	return model.Notification{}, false
}
