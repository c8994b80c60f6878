// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// ArticleStore handles all article-related database operations, including
// slug conflict resolution and promotion of scheduled articles.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `id, title, slug, excerpt, content, cover_image, category_id,
	       author_id, featured, view_count, status, published_at, created_at, updated_at`

// scanArticle scans a row into an Article struct.
func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Excerpt, &a.Content, &a.CoverImage,
		&a.CategoryID, &a.AuthorID, &a.Featured, &a.ViewCount, &a.Status,
		&a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// NewArticle carries the caller-supplied fields for article creation.
type NewArticle struct {
	Title       string
	Slug        string
	Excerpt     *string
	Content     string
	CoverImage  *string
	CategoryID  *uuid.UUID
	Featured    bool
	Status      models.ArticleStatus
	PublishedAt *time.Time
	Tags        []string
}

// ArticleUpdate carries a partial update: nil fields are left untouched.
// A non-nil CategoryID equal to uuid.Nil clears the category association.
// A non-nil Tags slice replaces the article's tag set entirely.
type ArticleUpdate struct {
	Title       *string
	Slug        *string
	Excerpt     *string
	Content     *string
	CoverImage  *string
	CategoryID  *uuid.UUID
	Featured    *bool
	Status      *models.ArticleStatus
	PublishedAt *time.Time
	Tags        []string
}

// withSlugRetry attempts persist with the candidate slug. If the store
// reports a uniqueness violation on the article slug column and the
// candidate is non-empty, it retries exactly once with a disambiguated
// slug. Any other failure, or a failure of the retry itself, propagates
// unchanged.
func withSlugRetry(candidate string, persist func(slug string) (*models.Article, error)) (*models.Article, error) {
	a, err := persist(candidate)
	if err == nil {
		return a, nil
	}

	conflict, ok := IsConflict(err)
	if !ok || conflict.Constraint != "articles_slug_key" || candidate == "" {
		return nil, err
	}

	return persist(slug.Disambiguate(candidate))
}

// Create inserts a new article and its tags, resolving a slug collision
// with a single disambiguated retry. When no slug is supplied it is
// derived from the title. Status defaults to published; publishing
// without an explicit published_at stamps the current time.
func (s *ArticleStore) Create(authorID uuid.UUID, in NewArticle) (*models.Article, error) {
	candidate := in.Slug
	if candidate == "" {
		candidate = slug.Generate(in.Title)
	}

	status := in.Status
	if status == "" {
		status = models.ArticleStatusPublished
	}

	publishedAt := in.PublishedAt
	if publishedAt == nil && status == models.ArticleStatusPublished {
		now := time.Now()
		publishedAt = &now
	}

	return withSlugRetry(candidate, func(articleSlug string) (*models.Article, error) {
		tx, err := s.db.Begin()
		if err != nil {
			return nil, fmt.Errorf("create article begin: %w", err)
		}
		defer tx.Rollback()

		row := tx.QueryRow(`
			INSERT INTO articles (title, slug, excerpt, content, cover_image,
			                      category_id, author_id, featured, status, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING `+articleColumns,
			in.Title, articleSlug, in.Excerpt, in.Content, in.CoverImage,
			in.CategoryID, authorID, in.Featured, status, publishedAt,
		)
		created, err := scanArticle(row)
		if err != nil {
			return nil, classify(fmt.Errorf("create article: %w", err))
		}

		if err := replaceTags(tx, created.ID, in.Tags, false); err != nil {
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("create article commit: %w", err)
		}
		return created, nil
	})
}

// Update applies a partial update to an article. Only supplied fields
// change; updated_at is always refreshed. Transitioning to published
// without an explicit published_at stamps the current time as a side
// effect; an explicit value always wins. Returns ErrNotFound when the
// article does not exist.
func (s *ArticleStore) Update(id uuid.UUID, in ArticleUpdate) (*models.Article, error) {
	candidate := ""
	if in.Slug != nil {
		candidate = *in.Slug
	}

	return withSlugRetry(candidate, func(articleSlug string) (*models.Article, error) {
		var sets []string
		var values []any
		idx := 1

		add := func(column string, value any) {
			sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
			values = append(values, value)
			idx++
		}

		if in.Title != nil {
			add("title", *in.Title)
		}
		if in.Slug != nil {
			add("slug", articleSlug)
		}
		if in.Excerpt != nil {
			add("excerpt", *in.Excerpt)
		}
		if in.Content != nil {
			add("content", *in.Content)
		}
		if in.CoverImage != nil {
			add("cover_image", *in.CoverImage)
		}
		if in.CategoryID != nil {
			if *in.CategoryID == uuid.Nil {
				sets = append(sets, "category_id = NULL")
			} else {
				add("category_id", *in.CategoryID)
			}
		}
		if in.Featured != nil {
			add("featured", *in.Featured)
		}
		if in.Status != nil {
			add("status", *in.Status)
			// Publishing without an explicit timestamp stamps the
			// transition time. The explicit value below wins if both
			// are supplied.
			if *in.Status == models.ArticleStatusPublished && in.PublishedAt == nil {
				sets = append(sets, "published_at = NOW()")
			}
		}
		if in.PublishedAt != nil {
			add("published_at", *in.PublishedAt)
		}

		sets = append(sets, "updated_at = NOW()")
		values = append(values, id)

		tx, err := s.db.Begin()
		if err != nil {
			return nil, fmt.Errorf("update article begin: %w", err)
		}
		defer tx.Rollback()

		row := tx.QueryRow(
			fmt.Sprintf(`UPDATE articles SET %s WHERE id = $%d RETURNING %s`,
				strings.Join(sets, ", "), idx, articleColumns),
			values...,
		)
		updated, err := scanArticle(row)
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, classify(fmt.Errorf("update article: %w", err))
		}

		if err := replaceTags(tx, updated.ID, in.Tags, true); err != nil {
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("update article commit: %w", err)
		}
		return updated, nil
	})
}

// replaceTags writes an article's tag set inside a transaction. On update
// (clearFirst) a supplied set is a full replace, not a merge; a nil slice
// leaves existing tags untouched.
func replaceTags(tx *sql.Tx, articleID uuid.UUID, tags []string, clearFirst bool) error {
	if tags == nil {
		return nil
	}
	if clearFirst {
		if _, err := tx.Exec(`DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
			return fmt.Errorf("clear article tags: %w", err)
		}
	}
	for _, tag := range tags {
		if _, err := tx.Exec(
			`INSERT INTO article_tags (article_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			articleID, tag,
		); err != nil {
			return fmt.Errorf("insert article tag %q: %w", tag, err)
		}
	}
	return nil
}

// Delete removes an article by ID. Comments and tag associations cascade.
// Returns false when the article does not exist.
func (s *ArticleStore) Delete(id uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete article rows: %w", err)
	}
	return n > 0, nil
}

// FindByID retrieves an article by its UUID. Returns nil if not found.
func (s *ArticleStore) FindByID(id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

const articleDetailColumns = `a.id, a.title, a.slug, a.excerpt, a.content, a.cover_image,
	       a.category_id, a.author_id, a.featured, a.view_count, a.status,
	       a.published_at, a.created_at, a.updated_at,
	       c.id, c.name, c.slug, c.created_at,
	       u.id, u.username, u.avatar`

const articleDetailJoins = `
	FROM articles a
	LEFT JOIN categories c ON a.category_id = c.id
	JOIN users u ON a.author_id = u.id`

// scanArticleDetails scans a joined row into an ArticleDetails struct.
func scanArticleDetails(scanner interface{ Scan(...any) error }) (*models.ArticleDetails, error) {
	var d models.ArticleDetails
	var catID *uuid.UUID
	var catName, catSlug sql.NullString
	var catCreated sql.NullTime

	err := scanner.Scan(
		&d.ID, &d.Title, &d.Slug, &d.Excerpt, &d.Content, &d.CoverImage,
		&d.CategoryID, &d.AuthorID, &d.Featured, &d.ViewCount, &d.Status,
		&d.PublishedAt, &d.CreatedAt, &d.UpdatedAt,
		&catID, &catName, &catSlug, &catCreated,
		&d.Author.ID, &d.Author.Username, &d.Author.Avatar,
	)
	if err != nil {
		return nil, err
	}

	if catID != nil {
		d.Category = &models.CategoryBrief{
			ID:        *catID,
			Name:      catName.String,
			Slug:      catSlug.String,
			CreatedAt: catCreated.Time,
		}
	}
	return &d, nil
}

// loadTags fetches the tag list for one article.
func (s *ArticleStore) loadTags(articleID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(`SELECT tag FROM article_tags WHERE article_id = $1 ORDER BY tag`, articleID)
	if err != nil {
		return nil, fmt.Errorf("load article tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan article tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// FindBySlug retrieves an article with its author, category, and tags by
// slug, regardless of status. Returns nil if not found.
func (s *ArticleStore) FindBySlug(articleSlug string) (*models.ArticleDetails, error) {
	row := s.db.QueryRow(
		`SELECT `+articleDetailColumns+articleDetailJoins+` WHERE a.slug = $1`, articleSlug)
	d, err := scanArticleDetails(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}

	if d.Tags, err = s.loadTags(d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// FindDetailsByID retrieves an article with its author, category, and tags
// by ID. Returns nil if not found. Used by the admin editor.
func (s *ArticleStore) FindDetailsByID(id uuid.UUID) (*models.ArticleDetails, error) {
	row := s.db.QueryRow(
		`SELECT `+articleDetailColumns+articleDetailJoins+` WHERE a.id = $1`, id)
	d, err := scanArticleDetails(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article details by id: %w", err)
	}

	if d.Tags, err = s.loadTags(d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// ListOptions filters and paginates article listings.
type ListOptions struct {
	CategorySlug string
	Featured     bool
	Status       models.ArticleStatus // exact status filter when set
	AllStatuses  bool                 // admin listing: no status filter
	Limit        int
	Offset       int
}

// List returns articles with details, newest first. By default only
// published articles are returned; AllStatuses lifts the filter and
// Status narrows it to one state.
func (s *ArticleStore) List(opts ListOptions) ([]models.ArticleDetails, error) {
	query := `SELECT ` + articleDetailColumns + articleDetailJoins + ` WHERE 1=1`
	var params []any
	idx := 1

	switch {
	case opts.AllStatuses:
		// no status filter
	case opts.Status != "":
		query += fmt.Sprintf(" AND a.status = $%d", idx)
		params = append(params, opts.Status)
		idx++
	default:
		query += " AND a.status = 'published'"
	}

	if opts.CategorySlug != "" {
		query += fmt.Sprintf(" AND c.slug = $%d", idx)
		params = append(params, opts.CategorySlug)
		idx++
	}
	if opts.Featured {
		query += " AND a.featured = TRUE"
	}

	query += " ORDER BY a.created_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		params = append(params, opts.Limit)
		idx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		params = append(params, opts.Offset)
	}

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var items []models.ArticleDetails
	for rows.Next() {
		d, err := scanArticleDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Tags, err = s.loadTags(items[i].ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// IncrementViewCount bumps an article's view counter.
func (s *ArticleStore) IncrementViewCount(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE articles SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// IncrementViewCountBySlug bumps the view counter when only the slug is
// known, e.g. when the response itself came from cache.
func (s *ArticleStore) IncrementViewCountBySlug(articleSlug string) error {
	_, err := s.db.Exec(`UPDATE articles SET view_count = view_count + 1 WHERE slug = $1`, articleSlug)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// PromoteDue publishes every scheduled article whose publish time has
// arrived, in a single conditional update. published_at is overwritten
// with the actual promotion instant. The status predicate makes the
// operation idempotent: rows promoted by a concurrent run no longer
// match and are skipped. Returns the number of articles promoted.
func (s *ArticleStore) PromoteDue(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE articles
		SET status = 'published', published_at = NOW(), updated_at = NOW()
		WHERE status = 'scheduled' AND published_at <= NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("promote due articles: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("promote due rows: %w", err)
	}
	return int(n), nil
}
