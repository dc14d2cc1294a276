package fakeapi

import (
	_ "embed"
	"fmt"
	"log/slog"

	"telegram-ai-agent/internal/adapters/parser"
	"telegram-ai-agent/internal/adapters/source"
	"telegram-ai-agent/internal/cache"
	"telegram-ai-agent/internal/domain"
)

//go:embed testdata/demo_export.json
var demoExport []byte

// DemoGroupLink - ссылка на встроенную демонстрационную группу.
const DemoGroupLink = "https://t.me/gophers_demo"

// SeedExports загружает экспорты Telegram Desktop в src.
// Файлы с одинаковым содержимым загружаются один раз.
func SeedExports(src *source.ExportSource, files []string, rebase bool, logger *slog.Logger) ([]domain.TelegramGroup, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := parser.NewJSONParser()
	seen := make(map[string]string, len(files))

	groups := make([]domain.TelegramGroup, 0, len(files))
	for _, path := range files {
		hash, err := cache.FileHash(path)
		if err != nil {
			return nil, fmt.Errorf("failed to hash seed file: %w", err)
		}
		if first, ok := seen[hash]; ok {
			logger.Warn("duplicate seed file skipped", slog.String("file", path), slog.String("same_as", first))
			continue
		}
		seen[hash] = path

		group, err := src.Load(source.NewFileSource(path), p, rebase)
		if err != nil {
			return nil, err
		}
		logger.Info("seed export loaded",
			slog.String("file", path),
			slog.String("group", group.Name),
			slog.Int64("group_id", group.GroupID),
		)
		groups = append(groups, group)
	}
	return groups, nil
}

// SeedDemo загружает встроенный демонстрационный экспорт (группа gophers_demo).
// Даты всегда сдвигаются к текущему моменту, чтобы сводка за неделю была непустой.
func SeedDemo(src *source.ExportSource) (domain.TelegramGroup, error) {
	return src.Load(source.NewMemorySource("demo_export.json", demoExport), parser.NewJSONParser(), true)
}
