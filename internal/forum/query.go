package forum

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ButyrinIA/anonforum/internal/models"
)

// Ключи сортировки для GetPosts. Любой другой ключ сортирует по времени.
const (
	SortByTimestamp = "timestamp"
	SortByLikes     = "likes"
	SortByComments  = "comments"
)

const (
	defaultTrendingLimit = 10
	minSearchLength      = 2
)

// GetPosts возвращает копию ленты, отфильтрованную по категории
// (models.CategoryAll - без фильтра) и отсортированную по убыванию ключа.
// Сортировка стабильная.
func (s *Store) GetPosts(category, sortBy string) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]models.Post, 0, len(s.doc.Posts))
	for _, p := range s.doc.Posts {
		if category == models.CategoryAll || category == "" || p.Category == category {
			posts = append(posts, p.Clone())
		}
	}

	var key func(p models.Post) int64
	switch sortBy {
	case SortByLikes:
		key = func(p models.Post) int64 { return int64(p.Likes) }
	case SortByComments:
		key = func(p models.Post) int64 { return int64(len(p.Comments)) }
	default:
		key = func(p models.Post) int64 { return p.Timestamp }
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return key(posts[i]) > key(posts[j])
	})
	return posts
}

// SearchPosts ищет подстроку без учета регистра в заголовке, тексте и тегах.
// Запросы короче двух символов ничего не находят.
func (s *Store) SearchPosts(query string) []models.Post {
	term := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(term) < minSearchLength {
		return []models.Post{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Post{}
	for _, p := range s.doc.Posts {
		if matches(p, term) {
			result = append(result, p.Clone())
		}
	}
	return result
}

func matches(p models.Post, term string) bool {
	if strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Content), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func (s *Store) GetPostsByTag(tag string) []models.Post {
	want := strings.ToLower(strings.TrimSpace(tag))

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Post{}
	for _, p := range s.doc.Posts {
		for _, t := range p.Tags {
			if strings.ToLower(t) == want {
				result = append(result, p.Clone())
				break
			}
		}
	}
	return result
}

// GetTrendingTags - самые частые теги по убыванию. При равенстве
// сохраняется порядок первого появления тега в ленте.
func (s *Store) GetTrendingTags(limit int) []models.TagCount {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := []models.TagCount{}
	index := make(map[string]int)
	for _, p := range s.doc.Posts {
		for _, tag := range p.Tags {
			if i, ok := index[tag]; ok {
				counts[i].Count++
				continue
			}
			index[tag] = len(counts)
			counts = append(counts, models.TagCount{Tag: tag, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// GetCategoryStats - количество постов по категориям
func (s *Store) GetCategoryStats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int)
	for _, p := range s.doc.Posts {
		stats[p.Category]++
	}
	return stats
}

// GetRecentActivity считает посты и комментарии за последние 24 часа,
// каждый по собственной метке времени.
func (s *Store) GetRecentActivity() models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-24 * time.Hour).UnixMilli()
	var activity models.Activity
	for _, p := range s.doc.Posts {
		if p.Timestamp > cutoff {
			activity.Posts++
		}
		for _, c := range p.Comments {
			if c.Timestamp > cutoff {
				activity.Comments++
			}
		}
	}
	return activity
}
