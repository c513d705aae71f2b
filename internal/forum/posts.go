package forum

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ButyrinIA/anonforum/internal/models"
	"github.com/ButyrinIA/anonforum/internal/storage"
	"go.uber.org/zap"
)

// CreatePost добавляет пост в начало ленты.
// Вход не перепроверяется: вызывающий обязан сначала вызвать ValidatePost.
// Пост возвращается и при ошибке ErrNotPersisted - он уже есть в памяти.
func (s *Store) CreatePost(ctx context.Context, input models.PostInput) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := models.Post{
		ID:        newID(),
		AnonID:    newAnonID(s.rnd),
		Title:     strings.TrimSpace(input.Title),
		Content:   strings.TrimSpace(input.Content),
		Category:  input.Category,
		Tags:      ParseTags(input.Tags),
		Timestamp: s.now().UnixMilli(),
		Likes:     0,
		Comments:  []models.Comment{},
	}

	s.doc.Posts = append([]models.Post{post}, s.doc.Posts...)
	err := s.persist(ctx)
	return post.Clone(), err
}

// CreateComment добавляет комментарий в конец обсуждения поста.
// Вход не перепроверяется: вызывающий обязан сначала вызвать ValidateComment.
func (s *Store) CreateComment(ctx context.Context, postID string, input models.CommentInput) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(postID)
	if idx < 0 {
		return models.Comment{}, ErrPostNotFound
	}

	comment := models.Comment{
		ID:        newID(),
		AnonID:    newAnonID(s.rnd),
		Content:   strings.TrimSpace(input.Content),
		Timestamp: s.now().UnixMilli(),
	}

	post := &s.doc.Posts[idx]
	post.Comments = append(post.Comments, comment)
	return comment, s.persist(ctx)
}

// LikePost увеличивает счетчик лайков на 1. Повторный лайк того же поста
// возвращает ErrAlreadyLiked без изменений.
func (s *Store) LikePost(ctx context.Context, postID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(postID)
	if idx < 0 {
		return 0, ErrPostNotFound
	}
	if _, ok := s.likedSet[postID]; ok {
		return s.doc.Posts[idx].Likes, ErrAlreadyLiked
	}

	post := &s.doc.Posts[idx]
	post.Likes++
	s.addLiked(ctx, postID)

	return post.Likes, s.persist(ctx)
}

// IsLiked сообщает, лайкал ли локальный пользователь пост
func (s *Store) IsLiked(postID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.likedSet[postID]
	return ok
}

func (s *Store) GetPost(id string) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Post{}, false
	}
	return s.doc.Posts[idx].Clone(), true
}

func (s *Store) indexOf(id string) int {
	for i := range s.doc.Posts {
		if s.doc.Posts[i].ID == id {
			return i
		}
	}
	return -1
}

// CleanOldData удаляет посты старше daysOld дней (по времени создания поста).
// daysOld <= 0 означает 30 дней.
func (s *Store) CleanOldData(ctx context.Context, daysOld int) (int, error) {
	if daysOld <= 0 {
		daysOld = 30
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-time.Duration(daysOld) * 24 * time.Hour).UnixMilli()
	kept := s.doc.Posts[:0:0]
	for _, p := range s.doc.Posts {
		if p.Timestamp > cutoff {
			kept = append(kept, p)
		}
	}

	removed := len(s.doc.Posts) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	s.doc.Posts = kept
	return removed, s.persist(ctx)
}

// Набор лайкнутых постов хранится отдельно от документа и сохраняется
// по принципу best effort: ошибки только логируются.
func (s *Store) loadLiked(ctx context.Context) {
	s.liked = nil
	s.likedSet = make(map[string]struct{})

	raw, err := s.backend.Get(ctx, storage.LikedKey)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("Failed to load liked posts", zap.Error(err))
		return
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logger.Warn("Liked posts are not parseable", zap.Error(err))
		return
	}
	for _, id := range ids {
		if _, ok := s.likedSet[id]; ok {
			continue
		}
		s.likedSet[id] = struct{}{}
		s.liked = append(s.liked, id)
	}
}

func (s *Store) addLiked(ctx context.Context, postID string) {
	s.likedSet[postID] = struct{}{}
	s.liked = append(s.liked, postID)

	data, err := json.Marshal(s.liked)
	if err != nil {
		s.logger.Warn("Failed to serialize liked posts", zap.Error(err))
		return
	}
	if err := s.backend.Set(ctx, storage.LikedKey, string(data)); err != nil {
		s.logger.Warn("Failed to save liked post", zap.String("post_id", postID), zap.Error(err))
	}
}
