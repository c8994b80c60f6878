// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrParentMismatch is returned when a reply references a parent comment
// that belongs to a different article (or does not exist).
var ErrParentMismatch = errors.New("parent comment does not belong to this article")

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// ConflictError reports a unique constraint violation, tagged with the
// violated constraint and column so callers can branch on structure
// instead of matching error text.
type ConflictError struct {
	Constraint string // e.g. "articles_slug_key"
	Column     string // e.g. "slug"
	Err        error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unique constraint %s violated on column %s: %v", e.Constraint, e.Column, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// classify converts PostgreSQL unique violations into *ConflictError and
// passes every other error through unchanged.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &ConflictError{
			Constraint: pgErr.ConstraintName,
			Column:     conflictColumn(pgErr.ConstraintName),
			Err:        err,
		}
	}
	return err
}

// conflictColumn derives the violated column from a constraint named in
// the "<table>_<column>_key" convention used by the schema.
func conflictColumn(constraint string) string {
	s := strings.TrimSuffix(constraint, "_key")
	if i := strings.LastIndex(s, "_"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// IsConflict reports whether err is a unique constraint violation, and if
// so returns the conflict details.
func IsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
