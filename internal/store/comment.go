// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// CommentStore handles all comment-related database operations, including
// assembly of an article's reply tree.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts a comment under an article. When parentID is set, the
// parent must exist and belong to the same article; a mismatch surfaces
// as ErrParentMismatch.
func (s *CommentStore) Create(articleID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*models.Comment, error) {
	if parentID != nil {
		var parentArticle uuid.UUID
		err := s.db.QueryRow(
			`SELECT article_id FROM comments WHERE id = $1`, *parentID,
		).Scan(&parentArticle)
		if err == sql.ErrNoRows {
			return nil, ErrParentMismatch
		}
		if err != nil {
			return nil, fmt.Errorf("check comment parent: %w", err)
		}
		if parentArticle != articleID {
			return nil, ErrParentMismatch
		}
	}

	c := &models.Comment{}
	err := s.db.QueryRow(`
		INSERT INTO comments (article_id, author_id, content, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, article_id, author_id, content, parent_id, created_at, updated_at
	`, articleID, authorID, content, parentID).Scan(
		&c.ID, &c.ArticleID, &c.AuthorID, &c.Content, &c.ParentID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// FindByID retrieves a comment by its UUID. Returns nil if not found.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(`
		SELECT id, article_id, author_id, content, parent_id, created_at, updated_at
		FROM comments WHERE id = $1
	`, id).Scan(
		&c.ID, &c.ArticleID, &c.AuthorID, &c.Content, &c.ParentID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// Delete removes a comment by ID. Descendant replies cascade. Returns
// false when the comment does not exist.
func (s *CommentStore) Delete(id uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete comment rows: %w", err)
	}
	return n > 0, nil
}

// GetThread loads all comments for an article in one query and assembles
// them into a forest. Top-level comments are ordered newest first; every
// reply list, at every depth, is ordered oldest first.
func (s *CommentStore) GetThread(articleID uuid.UUID) ([]*models.CommentNode, error) {
	// Ascending scan order makes every child list arrive oldest-first;
	// roots are reversed afterwards to satisfy the newest-first contract.
	rows, err := s.db.Query(`
		SELECT c.id, c.article_id, c.author_id, c.content, c.parent_id,
		       c.created_at, c.updated_at,
		       u.id, u.username, u.avatar
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.article_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("load comment thread: %w", err)
	}
	defer rows.Close()

	var all []*models.CommentNode
	for rows.Next() {
		node := &models.CommentNode{Replies: []*models.CommentNode{}}
		if err := rows.Scan(
			&node.ID, &node.ArticleID, &node.AuthorID, &node.Content, &node.ParentID,
			&node.CreatedAt, &node.UpdatedAt,
			&node.Author.ID, &node.Author.Username, &node.Author.Avatar,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		all = append(all, node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assembleForest(all), nil
}

// assembleForest links flat comment nodes into parent/child trees.
// Input must be ordered oldest-first; children keep that order while
// the returned roots are reversed to newest-first.
func assembleForest(all []*models.CommentNode) []*models.CommentNode {
	index := make(map[uuid.UUID]*models.CommentNode, len(all))
	for _, node := range all {
		index[node.ID] = node
	}

	var roots []*models.CommentNode
	for _, node := range all {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := index[*node.ParentID]
		if !ok {
			// Orphaned reply (parent deleted mid-scan): surface as a root
			// rather than dropping it.
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	// Newest top-level comment first.
	for i, j := 0, len(roots)-1; i < j; i, j = i+1, j-1 {
		roots[i], roots[j] = roots[j], roots[i]
	}

	if roots == nil {
		roots = []*models.CommentNode{}
	}
	return roots
}
