package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONParser(t *testing.T) {
	t.Run("Разбор корректного экспорта", func(t *testing.T) {
		p := NewJSONParser()
		data := `{
			"name": "Gophers",
			"type": "public_supergroup",
			"id": 1001,
			"messages": [
				{"id": 1, "type": "service", "date": "2026-10-01T10:00:00", "actor": "Alice", "actor_id": "user1", "action": "join_group_by_link", "text": ""},
				{"id": 2, "type": "message", "date": "2026-10-01T10:05:00", "date_unixtime": "1790849100", "from": "Alice", "from_id": "user1",
				 "text": ["see ", {"type": "link", "text": "https://go.dev"}], "text_entities": [{"type": "plain", "text": "see "}, {"type": "link", "text": "https://go.dev"}]},
				{"id": 3, "type": "message", "date": "2026-10-01T10:06:00", "from": "Bob", "from_id": "user2", "text": "thanks"}
			]
		}`

		chat, err := p.Parse([]byte(data))
		require.NoError(t, err)

		assert.Equal(t, "Gophers", chat.Name)
		assert.Equal(t, int64(1001), chat.ID)
		require.Len(t, chat.Messages, 2, "служебные сообщения отбрасываются")
		assert.Equal(t, int64(2), chat.Messages[0].ID)
		assert.Equal(t, "see https://go.dev", chat.Messages[0].PlainText())
		assert.Equal(t, int64(1), chat.Messages[0].SenderID())
		assert.Equal(t, "thanks", chat.Messages[1].PlainText())
	})

	t.Run("Некорректный JSON", func(t *testing.T) {
		chat, err := NewJSONParser().Parse([]byte(`{"name": "Test Chat", "invalid_json":}`))
		assert.Error(t, err)
		assert.Nil(t, chat)
	})

	t.Run("Пустые данные", func(t *testing.T) {
		_, err := NewJSONParser().Parse(nil)
		assert.Error(t, err)
	})

	t.Run("Экспорт без имени и идентификатора", func(t *testing.T) {
		_, err := NewJSONParser().Parse([]byte(`{"messages": []}`))
		assert.Error(t, err)
	})
}
