package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileID_SurvivesJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(NewDocumentDeleted(42, 7).Payload())
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))

	id, ok := FileID(BaseEvent{Type: DocumentDeleted, Data: payload})
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
}

func TestFileID_Missing(t *testing.T) {
	_, ok := FileID(BaseEvent{Data: map[string]interface{}{"question_id": 1}})
	assert.False(t, ok)
}

func TestConstructors_AssignDistinctIDs(t *testing.T) {
	a := NewQuestionAnswered(1, 2, 0.8, 120)
	b := NewQuestionAnswered(1, 2, 0.8, 120)

	assert.NotEmpty(t, a.EventID())
	assert.NotEqual(t, a.EventID(), b.EventID())
	assert.Equal(t, QuestionAnswered, a.EventType())
	assert.False(t, a.Timestamp().IsZero())
}
