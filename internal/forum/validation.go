package forum

import (
	"strings"
	"unicode/utf8"

	"github.com/ButyrinIA/anonforum/internal/models"
)

const (
	TitleMinLength   = 3
	TitleMaxLength   = 200
	ContentMinLength = 10
	ContentMaxLength = 2000
	CommentMinLength = 1
	CommentMaxLength = 1000

	MaxTags      = 5
	MaxTagLength = 50
)

const (
	errTitleTooShort   = "Title must be at least 3 characters long"
	errTitleTooLong    = "Title cannot exceed 200 characters"
	errContentTooShort = "Content must be at least 10 characters long"
	errContentTooLong  = "Content cannot exceed 2000 characters"
	errCategoryMissing = "Category is required"
	errCategoryInvalid = "Invalid category"
	errCommentEmpty    = "Comment cannot be empty"
	errCommentTooLong  = "Comment cannot exceed 1000 characters"
)

func trimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// ValidatePost проверяет все правила независимо и возвращает все нарушения
// в фиксированном порядке. Не зависит от стейта хранилища.
func ValidatePost(input models.PostInput) models.ValidationResult {
	errs := []string{}

	title := trimmedLen(input.Title)
	if title < TitleMinLength {
		errs = append(errs, errTitleTooShort)
	}
	if title > TitleMaxLength {
		errs = append(errs, errTitleTooLong)
	}

	content := trimmedLen(input.Content)
	if content < ContentMinLength {
		errs = append(errs, errContentTooShort)
	}
	if content > ContentMaxLength {
		errs = append(errs, errContentTooLong)
	}

	if input.Category == "" {
		errs = append(errs, errCategoryMissing)
	} else if !models.IsValidCategory(input.Category) {
		errs = append(errs, errCategoryInvalid)
	}

	return models.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func ValidateComment(input models.CommentInput) models.ValidationResult {
	errs := []string{}

	content := trimmedLen(input.Content)
	if content < CommentMinLength {
		errs = append(errs, errCommentEmpty)
	}
	if content > CommentMaxLength {
		errs = append(errs, errCommentTooLong)
	}

	return models.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func (s *Store) ValidatePost(input models.PostInput) models.ValidationResult {
	return ValidatePost(input)
}

func (s *Store) ValidateComment(input models.CommentInput) models.ValidationResult {
	return ValidateComment(input)
}

// ParseTags разбирает строку тегов через запятую: trim, lower-case,
// пустые и длиннее 50 символов отбрасываются, остается не больше 5 первых.
// Дубликаты не удаляются.
func ParseTags(raw string) []string {
	tags := []string{}
	if strings.TrimSpace(raw) == "" {
		return tags
	}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" || utf8.RuneCountInString(tag) > MaxTagLength {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}
