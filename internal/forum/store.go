// Package forum реализует локальное хранилище анонимного форума:
// документ с постами, валидацию, CRUD, выборки, импорт и экспорт.
// Весь стейт живет в одном документе, который целиком сохраняется
// в key-value бэкенд после каждого изменения.
package forum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ButyrinIA/anonforum/internal/models"
	"github.com/ButyrinIA/anonforum/internal/storage"
	"go.uber.org/zap"
)

// SchemaVersion - версия схемы документа. Документ другой версии сбрасывается.
const SchemaVersion = "1.0.0"

const defaultCapacity = 5 * 1024 * 1024

// SeedFunc возвращает стартовые посты для пустого документа
type SeedFunc func(now time.Time) []models.Post

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithRand(rnd *rand.Rand) Option {
	return func(s *Store) {
		if rnd != nil {
			s.rnd = rnd
		}
	}
}

func WithSeed(seed SeedFunc) Option {
	return func(s *Store) {
		s.seed = seed
	}
}

// WithCapacity задает предполагаемую емкость бэкенда в байтах для GetStorageInfo
func WithCapacity(bytes int64) Option {
	return func(s *Store) {
		if bytes > 0 {
			s.capacity = bytes
		}
	}
}

// Store - локальное хранилище форума.
// Все операции сериализуются мьютексом; кросс-процессной координации нет.
type Store struct {
	mu       sync.RWMutex
	backend  storage.Backend
	logger   *zap.Logger
	now      func() time.Time
	rnd      *rand.Rand
	seed     SeedFunc
	capacity int64

	doc      models.Document
	liked    []string
	likedSet map[string]struct{}
}

// Open загружает документ из бэкенда. Ошибки чтения не возвращаются:
// нечитаемый или устаревший документ заменяется пустым.
func Open(ctx context.Context, backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		logger:   zap.NewNop(),
		now:      time.Now,
		rnd:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, fresh := s.load(ctx)
	s.doc = doc
	s.loadLiked(ctx)

	// Сидируем только новый или сброшенный документ: очищенный пользователем остается пустым
	if fresh && s.seed != nil {
		s.seedSamples(ctx)
	}
	return s
}

func (s *Store) emptyDocument() models.Document {
	return models.Document{
		Version:    SchemaVersion,
		Posts:      []models.Post{},
		Settings:   models.DefaultSettings(),
		Stats:      models.Stats{},
		LastUpdate: s.now().UnixMilli(),
	}
}

// load возвращает документ и признак fresh: документа не было, он не читается
// или имеет чужую версию. При ошибке чтения бэкенда документ пуст, но не fresh,
// чтобы сид не перезаписал данные, которые не удалось прочитать.
func (s *Store) load(ctx context.Context) (models.Document, bool) {
	raw, err := s.backend.Get(ctx, storage.DataKey)
	if errors.Is(err, storage.ErrNotFound) {
		return s.emptyDocument(), true
	}
	if err != nil {
		s.logger.Warn("Failed to load data", zap.Error(err))
		return s.emptyDocument(), false
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		s.logger.Warn("Stored data is not parseable, starting empty", zap.Error(err))
		return s.emptyDocument(), true
	}

	// Миграций нет: документ чужой версии отбрасывается целиком
	if doc.Version != SchemaVersion {
		s.logger.Warn("Schema version mismatch, resetting data",
			zap.String("found", doc.Version),
			zap.String("expected", SchemaVersion),
			zap.Int("discarded_posts", len(doc.Posts)))
		return s.emptyDocument(), true
	}

	if doc.Posts == nil {
		doc.Posts = []models.Post{}
	}
	return doc, false
}

func (s *Store) seedSamples(ctx context.Context) {
	for _, p := range s.seed(s.now()) {
		if p.ID == "" {
			p.ID = newID()
		}
		if p.AnonID == "" {
			p.AnonID = newAnonID(s.rnd)
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		comments := make([]models.Comment, len(p.Comments))
		for i, c := range p.Comments {
			if c.ID == "" {
				c.ID = newID()
			}
			if c.AnonID == "" {
				c.AnonID = newAnonID(s.rnd)
			}
			comments[i] = c
		}
		p.Comments = comments
		s.doc.Posts = append(s.doc.Posts, p)
	}

	if err := s.persist(ctx); err != nil {
		s.logger.Warn("Sample data was not saved", zap.Error(err))
	}
}

func computeStats(posts []models.Post) models.Stats {
	stats := models.Stats{TotalPosts: len(posts)}
	for _, p := range posts {
		stats.TotalComments += len(p.Comments)
		stats.TotalLikes += p.Likes
	}
	return stats
}

func (s *Store) updateStats() {
	s.doc.Stats = computeStats(s.doc.Posts)
}

// persist пересчитывает статистику и сохраняет документ целиком.
// При ошибке записи стейт в памяти не откатывается.
func (s *Store) persist(ctx context.Context) error {
	s.updateStats()
	s.doc.LastUpdate = s.now().UnixMilli()

	data, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("failed to serialize data: %w", err)
	}

	if err := s.backend.Set(ctx, storage.DataKey, string(data)); err != nil {
		s.logger.Error("Failed to save data", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return nil
}

// Persist принудительно сохраняет текущий документ
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persist(ctx)
}

// Document возвращает копию текущего документа
func (s *Store) Document() models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateStats()
	return s.snapshot()
}

func (s *Store) snapshot() models.Document {
	doc := s.doc
	doc.Posts = clonePosts(s.doc.Posts)
	doc.Settings = make(models.Settings, len(s.doc.Settings))
	for k, v := range s.doc.Settings {
		doc.Settings[k] = v
	}
	return doc
}

func clonePosts(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) GetStats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateStats()
	return s.doc.Stats
}

// ClearAllData сбрасывает документ и набор лайков
func (s *Store) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = s.emptyDocument()
	err := s.persist(ctx)

	s.liked = nil
	s.likedSet = make(map[string]struct{})
	if rmErr := s.backend.Remove(ctx, storage.LikedKey); rmErr != nil {
		s.logger.Warn("Failed to clear liked posts", zap.Error(rmErr))
	}
	return err
}

// DataSize - размер сериализованного документа в килобайтах
func (s *Store) DataSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.Marshal(s.doc)
	if err != nil {
		return 0
	}
	return roundKB(int64(len(data)))
}

// GetStorageInfo оценивает занятое место по всем ключам бэкенда.
// Носит справочный характер и не ограничивает запись.
func (s *Store) GetStorageInfo(ctx context.Context) models.StorageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fallback := models.StorageInfo{Used: 0, Total: roundKB(s.capacity), Percentage: 0}

	keys, err := s.backend.Keys(ctx)
	if err != nil {
		s.logger.Warn("Failed to list storage keys", zap.Error(err))
		return fallback
	}

	var used int64
	for _, k := range keys {
		v, err := s.backend.Get(ctx, k)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			s.logger.Warn("Failed to read storage key", zap.String("key", k), zap.Error(err))
			return fallback
		}
		used += int64(len(k) + len(v))
	}

	return models.StorageInfo{
		Used:       roundKB(used),
		Total:      roundKB(s.capacity),
		Percentage: int(math.Round(float64(used) / float64(s.capacity) * 100)),
	}
}

func roundKB(bytes int64) int {
	return int(math.Round(float64(bytes) / 1024))
}
