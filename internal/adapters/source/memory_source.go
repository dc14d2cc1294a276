package source

import (
	"fmt"
)

// MemorySource отдает экспорт, уже находящийся в памяти: встроенный демо-чат
// или фикстуру теста.
type MemorySource struct {
	name string
	data []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(name string, data []byte) *MemorySource {
	return &MemorySource{name: name, data: data}
}

// Name возвращает имя источника для логов.
func (s *MemorySource) Name() string {
	return s.name
}

// Fetch возвращает копию данных.
func (s *MemorySource) Fetch() ([]byte, error) {
	if s.data == nil {
		return nil, fmt.Errorf("data not set")
	}
	return append([]byte(nil), s.data...), nil
}
