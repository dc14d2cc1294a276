package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource(t *testing.T) {
	t.Run("Fetch возвращает установленные данные", func(t *testing.T) {
		s := NewMemorySource("demo", []byte("test data"))
		data, err := s.Fetch()
		require.NoError(t, err)
		assert.Equal(t, []byte("test data"), data)
		assert.Equal(t, "demo", s.Name())
	})

	t.Run("Fetch возвращает ошибку для nil данных", func(t *testing.T) {
		data, err := NewMemorySource("empty", nil).Fetch()
		assert.Error(t, err)
		assert.Nil(t, data)
		assert.Contains(t, err.Error(), "data not set")
	})

	t.Run("Fetch возвращает копию данных", func(t *testing.T) {
		original := []byte("test data")
		fetched, err := NewMemorySource("demo", original).Fetch()
		require.NoError(t, err)

		fetched[0] = 'X'
		assert.Equal(t, []byte("test data"), original)
	})
}
