package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/realtime"
)

func loadedView(messageID int) *MessageView {
	v := NewMessageView()
	v.SetLoaded(model.Message{
		ID:    messageID,
		Title: "Drucker kaputt",
	})
	return v
}

func commentEvent(messageID, commentID int, content string) realtime.Event {
	return realtime.Event{
		Name: realtime.EventCommentCreated,
		Comment: &model.Comment{
			ID:        commentID,
			MessageID: messageID,
			Content:   content,
			User:      model.User{ID: 2, Name: "Bernd Maier"},
		},
	}
}

func commentIDs(v *MessageView) []int {
	ids := make([]int, 0, len(v.Message.Comments))
	for _, c := range v.Message.Comments {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestRepeatedCommentEventsMergeExactlyOnce(t *testing.T) {
	v := loadedView(42)

	// Repeated ids interleaved with fresh ones, in arrival order.
	sequence := []int{1, 2, 1, 3, 2, 1, 3}
	for _, id := range sequence {
		v.ApplyEvent(commentEvent(42, id, "n"))
	}

	assert.Equal(t, []int{1, 2, 3}, commentIDs(v),
		"each unique id exactly once, in first-seen order")
}

func TestCommentForOtherMessageIgnored(t *testing.T) {
	v := loadedView(42)

	changed := v.ApplyEvent(commentEvent(99, 1, "woanders"))
	assert.False(t, changed)
	assert.Empty(t, v.Message.Comments)
	assert.False(t, v.TakeScrollRequest())
}

func TestSubmitResponseAndRealtimeEventRace(t *testing.T) {
	// User 7 submits "hello" on message 42; the gateway response and
	// the realtime echo carry the same comment id. Whichever order
	// they land in, the comment appears exactly once.
	orders := map[string][]func(v *MessageView){
		"response first": {
			func(v *MessageView) {
				v.ApplyComment(model.Comment{ID: 501, MessageID: 42, Content: "hello", User: model.User{ID: 7}})
			},
			func(v *MessageView) { v.ApplyEvent(commentEvent(42, 501, "hello")) },
		},
		"event first": {
			func(v *MessageView) { v.ApplyEvent(commentEvent(42, 501, "hello")) },
			func(v *MessageView) {
				v.ApplyComment(model.Comment{ID: 501, MessageID: 42, Content: "hello", User: model.User{ID: 7}})
			},
		},
	}

	for name, steps := range orders {
		t.Run(name, func(t *testing.T) {
			v := loadedView(42)
			for _, step := range steps {
				step(v)
			}
			require.Len(t, v.Message.Comments, 1)
			assert.Equal(t, 501, v.Message.Comments[0].ID)
			assert.Equal(t, "hello", v.Message.Comments[0].Content)
		})
	}
}

func TestAppendSetsScrollRequestOnce(t *testing.T) {
	v := loadedView(42)

	require.True(t, v.ApplyEvent(commentEvent(42, 1, "eins")))
	assert.True(t, v.TakeScrollRequest())
	assert.False(t, v.TakeScrollRequest(), "flag is consumed")

	// A duplicate must not request another scroll.
	require.False(t, v.ApplyEvent(commentEvent(42, 1, "eins")))
	assert.False(t, v.TakeScrollRequest())
}

func TestEventsIgnoredWhileLoading(t *testing.T) {
	v := NewMessageView()
	assert.False(t, v.ApplyEvent(commentEvent(42, 1, "zu früh")))
}

func TestMessageCreatedNeverMutatesOpenView(t *testing.T) {
	v := loadedView(42)
	before := v.Message

	changed := v.ApplyEvent(realtime.Event{
		Name:    realtime.EventMessageCreated,
		Message: &model.Message{ID: 42, Title: "Neuer Titel"},
	})

	assert.False(t, changed)
	assert.Equal(t, before, v.Message)
}

func TestViewStateMachine(t *testing.T) {
	v := NewMessageView()
	assert.Equal(t, ViewLoading, v.State)

	v.SetLoaded(model.Message{ID: 1})
	assert.Equal(t, ViewLoaded, v.State)

	// Successful merges keep the view Loaded.
	v.ApplyEvent(commentEvent(1, 10, "x"))
	assert.Equal(t, ViewLoaded, v.State)

	// An explicit refetch is the only way back to Loading.
	v.Refetch()
	assert.Equal(t, ViewLoading, v.State)
}

func TestFailedToggleRestoresPreviousValue(t *testing.T) {
	assignedToMe := true

	toggle := NewToggle(assignedToMe)
	assert.False(t, toggle.Desired)

	// Server rejected the call: the pre-toggle value comes back.
	assignedToMe = toggle.Resolve(errors.New("boom"))
	assert.True(t, assignedToMe)

	// And on success the desired value applies.
	toggle = NewToggle(assignedToMe)
	assignedToMe = toggle.Resolve(nil)
	assert.False(t, assignedToMe)
}

func TestNotificationForMessageCreated(t *testing.T) {
	n, ok := NotificationFor(realtime.Event{
		Name: realtime.EventMessageCreated,
		Message: &model.Message{
			ID:      9,
			Title:   "Serverwartung",
			Creator: model.User{ID: 3, Name: "Clara Vogt"},
		},
	})
	require.True(t, ok)
	assert.Equal(t, 9, n.MessageID)
	assert.Equal(t, "Neue Nachricht von Clara Vogt: Serverwartung", n.Text)
}

func TestNotificationForCommentCreated(t *testing.T) {
	n, ok := NotificationFor(commentEvent(42, 501, "hello"))
	require.True(t, ok)
	assert.Equal(t, 42, n.MessageID)
	assert.Equal(t, "Neuer Kommentar von Bernd Maier: hello", n.Text)
}

func TestNotificationForEmptyEvent(t *testing.T) {
	_, ok := NotificationFor(realtime.Event{Name: "unknown"})
	assert.False(t, ok)
}
