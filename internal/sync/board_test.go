package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfellner/pinnwand/internal/model"
)

func boardMessage(id int, dept string, priority model.Priority, archived bool) model.Message {
	return model.Message{
		ID:         id,
		Title:      "Nachricht",
		Priority:   priority,
		IsArchived: archived,
		Creator: model.User{
			ID:         id,
			Name:       "Ersteller",
			Department: model.Department{Name: dept},
		},
	}
}

func TestGroupByDepartmentKeepsEmptyGroups(t *testing.T) {
	departments := []model.Department{
		{ID: 1, Name: "IT"},
		{ID: 2, Name: "Verwaltung"},
		{ID: 3, Name: "Werkstatt"},
	}
	messages := []model.Message{
		boardMessage(1, "IT", model.PriorityHigh, false),
		boardMessage(2, "Werkstatt", model.PriorityLow, false),
		boardMessage(3, "IT", model.PriorityMedium, false),
	}

	groups := GroupByDepartment(messages, departments)
	require.Len(t, groups, 3)

	assert.Equal(t, "IT", groups[0].Department.Name)
	assert.Len(t, groups[0].Messages, 2)
	assert.Equal(t, 1, groups[0].Messages[0].ID)
	assert.Equal(t, 3, groups[0].Messages[1].ID)

	// The empty department stays in the result for its placeholder.
	assert.Equal(t, "Verwaltung", groups[1].Department.Name)
	assert.Empty(t, groups[1].Messages)

	assert.Len(t, groups[2].Messages, 1)
}

func TestAssignedBoardFilterHighPriorityUnarchived(t *testing.T) {
	// /assigned?is_archived=false&priority=hoch
	messages := []model.Message{
		boardMessage(1, "IT", model.PriorityHigh, false),
		boardMessage(2, "IT", model.PriorityHigh, true),
		boardMessage(3, "IT", model.PriorityMedium, false),
		boardMessage(4, "Verwaltung", model.PriorityHigh, false),
	}

	var visible []model.Message
	for _, m := range messages {
		if MatchesFilter(m, false, "hoch", "", "") {
			visible = append(visible, m)
		}
	}

	require.Len(t, visible, 2)
	assert.Equal(t, 1, visible[0].ID)
	assert.Equal(t, 4, visible[1].ID)

	groups := GroupByDepartment(visible, []model.Department{
		{ID: 1, Name: "IT"},
		{ID: 2, Name: "Verwaltung"},
		{ID: 3, Name: "Werkstatt"},
	})
	assert.Len(t, groups[0].Messages, 1)
	assert.Len(t, groups[1].Messages, 1)
	assert.Empty(t, groups[2].Messages, "empty group renders Keine Nachrichten")
}

func TestMatchesFilterStatusAndCreator(t *testing.T) {
	msg := boardMessage(1, "IT", model.PriorityLow, false)
	msg.Status = model.Status{Name: "Offen"}
	msg.Creator.Name = "Clara Vogt"

	assert.True(t, MatchesFilter(msg, false, "", "Offen", "Clara Vogt"))
	assert.False(t, MatchesFilter(msg, false, "", "Erledigt", ""))
	assert.False(t, MatchesFilter(msg, false, "", "", "Bernd Maier"))
	assert.False(t, MatchesFilter(msg, true, "", "", ""))
}
