package models

import "time"

// Категории, допустимые для поста
const (
	CategoryGeneral    = "general"
	CategoryTech       = "tech"
	CategoryCrypto     = "crypto"
	CategorySociety    = "society"
	CategoryConfession = "confession"
	CategoryQuestion   = "question"
	CategoryRandom     = "random"

	// CategoryAll отключает фильтрацию по категории
	CategoryAll = "all"
)

var Categories = []string{
	CategoryGeneral,
	CategoryTech,
	CategoryCrypto,
	CategorySociety,
	CategoryConfession,
	CategoryQuestion,
	CategoryRandom,
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Все временные метки хранятся в миллисекундах Unix
type Post struct {
	ID        string    `json:"id"`
	AnonID    string    `json:"anonId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Timestamp int64     `json:"timestamp"`
	Likes     int       `json:"likes"`
	Comments  []Comment `json:"comments"`
}

// CreatedAt возвращает время создания поста
func (p Post) CreatedAt() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// Clone возвращает копию поста, не разделяющую срезы с оригиналом
func (p Post) Clone() Post {
	c := p
	if p.Tags != nil {
		c.Tags = make([]string, len(p.Tags))
		copy(c.Tags, p.Tags)
	}
	if p.Comments != nil {
		c.Comments = make([]Comment, len(p.Comments))
		copy(c.Comments, p.Comments)
	}
	return c
}

type Comment struct {
	ID        string `json:"id"`
	AnonID    string `json:"anonId"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func (c Comment) CreatedAt() time.Time {
	return time.UnixMilli(c.Timestamp)
}

type Stats struct {
	TotalPosts    int `json:"totalPosts"`
	TotalComments int `json:"totalComments"`
	TotalLikes    int `json:"totalLikes"`
}

// Settings хранятся как есть, хранилище их не интерпретирует
type Settings map[string]any

func DefaultSettings() Settings {
	return Settings{
		"theme":         "dark",
		"autoSave":      true,
		"notifications": true,
	}
}

// Document - весь сохраняемый стейт форума
type Document struct {
	Version    string   `json:"version"`
	Posts      []Post   `json:"posts"`
	Settings   Settings `json:"settings"`
	Stats      Stats    `json:"stats"`
	LastUpdate int64    `json:"lastUpdate"`
}

// Export - документ с отметкой об экспорте
type Export struct {
	Document
	ExportDate    string `json:"exportDate"`
	ExportVersion string `json:"exportVersion"`
}

type PostInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	// Tags - строка тегов через запятую
	Tags string `json:"tags"`
}

type CommentInput struct {
	Content string `json:"content"`
}

type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type Activity struct {
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
}

// StorageInfo - оценка занятого места в килобайтах
type StorageInfo struct {
	Used       int `json:"used"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}
