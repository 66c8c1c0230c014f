package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/mfellner/pinnwand/internal/model"
)

// Event names on the private user channel.
const (
	EventMessageCreated = "message.created"
	EventCommentCreated = "chat.created"
)

// Event is a tagged payload received on the private channel. Exactly
// one of Message or Comment is set, depending on Name.
type Event struct {
	// Name is the wire event name (message.created or chat.created).
	Name string

	// Message is the summary of a newly created message visible to the
	// user. Set for message.created.
	Message *model.Message

	// Comment is the new comment on a message the user can see. Set
	// for chat.created.
	Comment *model.Comment
}

// MessageID returns the id of the message the event concerns.
func (e Event) MessageID() int {
	switch {
	case e.Message != nil:
		return e.Message.ID
	case e.Comment != nil:
		return e.Comment.MessageID
	}
	return 0
}

// envelope is the raw frame format of the event broker. Data may be a
// JSON object or, broker-style, a string containing JSON.
type envelope struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// commentPayload is the chat.created data shape: the comment arrives
// nested under "chat".
type commentPayload struct {
	Chat model.Comment `json:"chat"`
}

// decodeEvent parses a raw frame into an Event. Frames with unknown
// event names return ok=false and are skipped.
func decodeEvent(raw []byte) (Event, bool, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, false, fmt.Errorf("decoding event frame: %w", err)
	}

	data := env.Data
	// The broker may double-encode the payload as a JSON string.
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return Event{}, false, fmt.Errorf("decoding string payload: %w", err)
		}
		data = []byte(inner)
	}

	switch env.Event {
	case EventMessageCreated:
		var msg model.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return Event{}, false, fmt.Errorf("decoding %s payload: %w", env.Event, err)
		}
		return Event{Name: env.Event, Message: &msg}, true, nil

	case EventCommentCreated:
		var payload commentPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Event{}, false, fmt.Errorf("decoding %s payload: %w", env.Event, err)
		}
		return Event{Name: env.Event, Comment: &payload.Chat}, true, nil
	}

	return Event{}, false, nil
}
