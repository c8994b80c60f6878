package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for user-supplied fields.
const (
	maxTitleLen    = 300
	maxSlugLen     = 300
	maxContentLen  = 200_000
	maxExcerptLen  = 1_000
	maxCommentLen  = 5_000
	maxUsernameLen = 50
	maxNameLen     = 100
	minPasswordLen = 8
)

// validateArticle checks required article fields and returns the first
// error found, or "" when valid.
func validateArticle(title, slugValue, content string) string {
	if strings.TrimSpace(title) == "" {
		return "Title and content are required"
	}
	if strings.TrimSpace(content) == "" {
		return "Title and content are required"
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)"
	}
	if utf8.RuneCountInString(slugValue) > maxSlugLen {
		return "Slug is too long (max 300 characters)"
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 200,000 characters)"
	}
	return ""
}

// validateComment checks comment content.
func validateComment(content string) string {
	if strings.TrimSpace(content) == "" {
		return "Comment content is required"
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "Comment is too long (max 5,000 characters)"
	}
	return ""
}

// validateCategory checks category fields.
func validateCategory(name, slugValue string) string {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(slugValue) == "" {
		return "Name and slug are required"
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 100 characters)"
	}
	if utf8.RuneCountInString(slugValue) > maxSlugLen {
		return "Slug is too long (max 300 characters)"
	}
	return ""
}

// validateRegistration checks new-account fields.
func validateRegistration(username, email, password string) string {
	if username == "" || email == "" || password == "" {
		return "Username, email, and password are required"
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Username is too long (max 50 characters)"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Invalid email address"
	}
	if len(password) < minPasswordLen {
		return "Password must be at least 8 characters"
	}
	return ""
}
