package source

import (
	"fmt"
	"os"
)

// FileSource читает файл экспорта с диска.
type FileSource struct {
	filePath string
}

// NewFileSource создает новый экземпляр FileSource.
func NewFileSource(filePath string) *FileSource {
	return &FileSource{filePath: filePath}
}

// Name возвращает путь к файлу.
func (s *FileSource) Name() string {
	return s.filePath
}

// Fetch читает файл по указанному пути и возвращает его содержимое.
func (s *FileSource) Fetch() ([]byte, error) {
	if s.filePath == "" {
		return nil, fmt.Errorf("не указан путь к файлу")
	}
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", s.filePath, err)
	}
	return data, nil
}
