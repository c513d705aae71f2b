package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ButyrinIA/anonforum/internal/models"
	"go.uber.org/zap"
)

// ImportMode выбирает политику импорта
type ImportMode int

const (
	// ImportMerge добавляет посты с новыми ID к существующим
	ImportMerge ImportMode = iota
	// ImportReplace полностью заменяет документ импортированным
	ImportReplace
)

func (m ImportMode) String() string {
	switch m {
	case ImportMerge:
		return "merge"
	case ImportReplace:
		return "replace"
	default:
		return fmt.Sprintf("ImportMode(%d)", int(m))
	}
}

func ParseImportMode(s string) (ImportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "merge":
		return ImportMerge, nil
	case "replace":
		return ImportReplace, nil
	default:
		return 0, fmt.Errorf("unknown import mode %q", s)
	}
}

const exportDateLayout = "2006-01-02T15:04:05.000Z07:00"

// ExportData сериализует документ вместе с датой и версией экспорта.
// Стейт хранилища не меняется.
func (s *Store) ExportData() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := s.snapshot()
	doc.Stats = computeStats(doc.Posts)

	data, err := json.MarshalIndent(models.Export{
		Document:      doc,
		ExportDate:    s.now().UTC().Format(exportDateLayout),
		ExportVersion: SchemaVersion,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export data: %w", err)
	}
	return data, nil
}

// ImportData загружает резервную копию. Возвращает число добавленных постов.
// Структурно некорректный payload отклоняется до любых изменений.
func (s *Store) ImportData(ctx context.Context, payload []byte, mode ImportMode) (int, error) {
	incoming, err := decodeImport(payload)
	if err != nil {
		s.logger.Error("Import failed", zap.Error(err))
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var added int
	switch mode {
	case ImportMerge:
		seen := make(map[string]struct{}, len(s.doc.Posts))
		for _, p := range s.doc.Posts {
			seen[p.ID] = struct{}{}
		}
		for _, p := range incoming.Posts {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			s.doc.Posts = append(s.doc.Posts, p)
			added++
		}
	case ImportReplace:
		doc := incoming
		doc.Version = SchemaVersion
		if doc.Settings == nil {
			doc.Settings = models.DefaultSettings()
		}
		s.doc = doc
		added = len(doc.Posts)
	default:
		return 0, fmt.Errorf("unknown import mode %s", mode)
	}

	s.logger.Info("Data imported",
		zap.Stringer("mode", mode),
		zap.Int("added", added),
		zap.Int("total", len(s.doc.Posts)))
	return added, s.persist(ctx)
}

func decodeImport(payload []byte) (models.Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return models.Document{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	raw, ok := probe["posts"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return models.Document{}, fmt.Errorf("%w: posts must be a list", ErrInvalidImport)
	}

	var doc models.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return models.Document{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if doc.Posts == nil {
		doc.Posts = []models.Post{}
	}
	return doc, nil
}
