package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

func TestArticleCreateDefaults(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	author := testUser(t, db)

	slug := "test-defaults-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	created, err := s.Create(author.ID, NewArticle{
		Title:   "Defaults",
		Slug:    slug,
		Content: "body",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.Status != models.ArticleStatusPublished {
		t.Errorf("status: got %q, want published", created.Status)
	}
	if created.PublishedAt == nil {
		t.Error("expected published_at set for defaulted published article")
	} else if time.Since(*created.PublishedAt) > time.Minute {
		t.Errorf("published_at too old: %v", created.PublishedAt)
	}
}

func TestArticleCreateDraftAndScheduled(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	author := testUser(t, db)

	draftSlug := "test-draft-" + uuid.NewString()[:8]
	schedSlug := "test-sched-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanArticles(t, db, draftSlug, schedSlug) })

	draft, err := s.Create(author.ID, NewArticle{
		Title: "Draft", Slug: draftSlug, Content: "body",
		Status: models.ArticleStatusDraft,
	})
	if err != nil {
		t.Fatalf("Create draft: %v", err)
	}
	if draft.PublishedAt != nil {
		t.Error("expected nil published_at for draft")
	}

	when := time.Now().Add(time.Hour).Truncate(time.Second)
	sched, err := s.Create(author.ID, NewArticle{
		Title: "Scheduled", Slug: schedSlug, Content: "body",
		Status: models.ArticleStatusScheduled, PublishedAt: &when,
	})
	if err != nil {
		t.Fatalf("Create scheduled: %v", err)
	}
	if sched.PublishedAt == nil || !sched.PublishedAt.Equal(when) {
		t.Errorf("scheduled published_at: got %v, want %v", sched.PublishedAt, when)
	}
}

func TestArticleSlugCollision(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	author := testUser(t, db)

	slug := "test-collision-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	first, err := s.Create(author.ID, NewArticle{
		Title: "First", Slug: slug, Content: "body",
		Status: models.ArticleStatusDraft,
	})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if first.Slug != slug {
		t.Fatalf("first slug: got %q, want %q", first.Slug, slug)
	}

	second, err := s.Create(author.ID, NewArticle{
		Title: "Second", Slug: slug, Content: "body",
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if second.Slug == slug {
		t.Fatal("second article stored under the colliding slug")
	}
	if !strings.HasPrefix(second.Slug, slug+"-") {
		t.Errorf("second slug: got %q, want prefix %q", second.Slug, slug+"-")
	}

	// Both coexist.
	if a, _ := s.FindByID(first.ID); a == nil {
		t.Error("first article vanished")
	}
	if a, _ := s.FindByID(second.ID); a == nil {
		t.Error("second article vanished")
	}
}

func TestArticleUpdatePartial(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	author := testUser(t, db)

	slug := "test-partial-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	created, err := s.Create(author.ID, NewArticle{
		Title: "Original", Slug: slug, Content: "original body",
		Status: models.ArticleStatusDraft,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newTitle := "Changed"
	updated, err := s.Update(created.ID, ArticleUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Title != "Changed" {
		t.Errorf("title: got %q, want Changed", updated.Title)
	}
	if updated.Content != "original body" {
		t.Errorf("content changed on partial update: %q", updated.Content)
	}
	if updated.Status != models.ArticleStatusDraft {
		t.Errorf("status changed on partial update: %q", updated.Status)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("updated_at was not refreshed")
	}
}

func TestArticleUpdatePublishSideEffect(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	author := testUser(t, db)

	slugA := "test-publish-auto-" + uuid.NewString()[:8]
	slugB := "test-publish-explicit-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanArticles(t, db, slugA, slugB) })

	a, _ := s.Create(author.ID, NewArticle{
		Title: "A", Slug: slugA, Content: "body", Status: models.ArticleStatusDraft,
	})
	b, _ := s.Create(author.ID, NewArticle{
		Title: "B", Slug: slugB, Content: "body", Status: models.ArticleStatusDraft,
	})

	published := models.ArticleStatusPublished

	// No explicit timestamp — the transition stamps now.
	updatedA, err := s.Update(a.ID, ArticleUpdate{Status: &published})
	if err != nil {
		t.Fatalf("Update A: %v", err)
	}
	if updatedA.PublishedAt == nil {
		t.Fatal("expected published_at set by publish transition")
	}
	if time.Since(*updatedA.PublishedAt) > time.Minute {
		t.Errorf("published_at not close to now: %v", updatedA.PublishedAt)
	}

	// Explicit timestamp wins.
	explicit := time.Now().Add(-24 * time.Hour).Truncate(time.Second)
	updatedB, err := s.Update(b.ID, ArticleUpdate{Status: &published, PublishedAt: &explicit})
	if err != nil {
		t.Fatalf("Update B: %v", err)
	}
	if updatedB.PublishedAt == nil || !updatedB.PublishedAt.Equal(explicit) {
		t.Errorf("explicit published_at: got %v, want %v", updatedB.PublishedAt, explicit)
	}
}

func TestArticleUpdateBackwardTransitionKeepsTimestamp(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	author := testUser(t, db)

	slug := "test-backward-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	created, _ := s.Create(author.ID, NewArticle{
		Title: "Back", Slug: slug, Content: "body",
	})
	if created.PublishedAt == nil {
		t.Fatal("expected published_at on creation")
	}

	draft := models.ArticleStatusDraft
	updated, err := s.Update(created.ID, ArticleUpdate{Status: &draft})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != models.ArticleStatusDraft {
		t.Errorf("status: got %q, want draft", updated.Status)
	}
	// Moving back to draft does not clear published_at.
	if updated.PublishedAt == nil {
		t.Error("published_at cleared by backward transition")
	}
}

func TestArticleUpdateTagsFullReplace(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	author := testUser(t, db)

	slug := "test-tags-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanArticles(t, db, slug) })

	created, err := s.Create(author.ID, NewArticle{
		Title: "Tagged", Slug: slug, Content: "body",
		Tags: []string{"go", "testing"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	details, err := s.FindDetailsByID(created.ID)
	if err != nil {
		t.Fatalf("FindDetailsByID: %v", err)
	}
	if len(details.Tags) != 2 {
		t.Fatalf("tags after create: got %v", details.Tags)
	}

	// Replace, not merge.
	if _, err := s.Update(created.ID, ArticleUpdate{Tags: []string{"databases"}}); err != nil {
		t.Fatalf("Update tags: %v", err)
	}
	details, _ = s.FindDetailsByID(created.ID)
	if len(details.Tags) != 1 || details.Tags[0] != "databases" {
		t.Errorf("tags after replace: got %v, want [databases]", details.Tags)
	}

	// Nil slice leaves tags untouched.
	newTitle := "Still Tagged"
	if _, err := s.Update(created.ID, ArticleUpdate{Title: &newTitle}); err != nil {
		t.Fatalf("Update title: %v", err)
	}
	details, _ = s.FindDetailsByID(created.ID)
	if len(details.Tags) != 1 {
		t.Errorf("tags after unrelated update: got %v", details.Tags)
	}
}

func TestArticleUpdateNotFound(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)

	title := "ghost"
	_, err := s.Update(uuid.New(), ArticleUpdate{Title: &title})
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestArticleDelete(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	author := testUser(t, db)

	slug := "test-delete-" + uuid.NewString()[:8]
	created, err := s.Create(author.ID, NewArticle{
		Title: "Doomed", Slug: slug, Content: "body",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := s.Delete(created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !ok {
		t.Error("expected delete to report success")
	}

	ok, err = s.Delete(created.ID)
	if err != nil {
		t.Fatalf("Delete again: %v", err)
	}
	if ok {
		t.Error("expected delete of missing article to report false")
	}
}

func TestPromoteDue(t *testing.T) {
	db := testDB(t)
	s := NewArticleStore(db)
	author := testUser(t, db)
	ctx := context.Background()

	futureSlug := "test-promote-future-" + uuid.NewString()[:8]
	dueSlug := "test-promote-due-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanArticles(t, db, futureSlug, dueSlug) })

	// Drain any leftovers so counts below are exact.
	if _, err := s.PromoteDue(ctx); err != nil {
		t.Fatalf("PromoteDue drain: %v", err)
	}

	future := time.Now().Add(time.Hour)
	if _, err := s.Create(author.ID, NewArticle{
		Title: "Future", Slug: futureSlug, Content: "body",
		Status: models.ArticleStatusScheduled, PublishedAt: &future,
	}); err != nil {
		t.Fatalf("Create future: %v", err)
	}

	// Not yet due: nothing promoted.
	n, err := s.PromoteDue(ctx)
	if err != nil {
		t.Fatalf("PromoteDue: %v", err)
	}
	if n != 0 {
		t.Errorf("promoted %d articles before due time", n)
	}

	// Scheduling in the past is permitted and promotes on the next run.
	past := time.Now().Add(-time.Minute)
	due, err := s.Create(author.ID, NewArticle{
		Title: "Due", Slug: dueSlug, Content: "body",
		Status: models.ArticleStatusScheduled, PublishedAt: &past,
	})
	if err != nil {
		t.Fatalf("Create due: %v", err)
	}

	before := time.Now()
	n, err = s.PromoteDue(ctx)
	if err != nil {
		t.Fatalf("PromoteDue: %v", err)
	}
	if n != 1 {
		t.Fatalf("promoted %d articles, want 1", n)
	}

	promoted, err := s.FindByID(due.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if promoted.Status != models.ArticleStatusPublished {
		t.Errorf("status after promotion: got %q", promoted.Status)
	}
	// published_at is the promotion instant, not the requested time.
	if promoted.PublishedAt == nil || promoted.PublishedAt.Before(before.Add(-time.Second)) {
		t.Errorf("published_at not overwritten with promotion instant: %v", promoted.PublishedAt)
	}

	// Idempotent: an immediate second run promotes nothing.
	n, err = s.PromoteDue(ctx)
	if err != nil {
		t.Fatalf("PromoteDue repeat: %v", err)
	}
	if n != 0 {
		t.Errorf("second run promoted %d articles, want 0", n)
	}
}

func TestConflictColumn(t *testing.T) {
	tests := []struct {
		constraint string
		want       string
	}{
		{"articles_slug_key", "slug"},
		{"categories_slug_key", "slug"},
		{"users_email_key", "email"},
		{"users_username_key", "username"},
	}
	for _, tt := range tests {
		if got := conflictColumn(tt.constraint); got != tt.want {
			t.Errorf("conflictColumn(%q) = %q, want %q", tt.constraint, got, tt.want)
		}
	}
}

func TestWithSlugRetry(t *testing.T) {
	slugConflict := &ConflictError{Constraint: "articles_slug_key", Column: "slug"}
	otherConflict := &ConflictError{Constraint: "users_email_key", Column: "email"}

	t.Run("retries once on slug conflict", func(t *testing.T) {
		var attempts []string
		_, err := withSlugRetry("hello", func(s string) (*models.Article, error) {
			attempts = append(attempts, s)
			return nil, slugConflict
		})
		if err != slugConflict {
			t.Errorf("expected conflict to surface after retry, got %v", err)
		}
		if len(attempts) != 2 {
			t.Fatalf("attempts: got %d, want 2", len(attempts))
		}
		if attempts[0] != "hello" || !strings.HasPrefix(attempts[1], "hello-") {
			t.Errorf("attempt slugs: %v", attempts)
		}
	})

	t.Run("no retry for other conflicts", func(t *testing.T) {
		calls := 0
		_, err := withSlugRetry("hello", func(s string) (*models.Article, error) {
			calls++
			return nil, otherConflict
		})
		if err != otherConflict {
			t.Errorf("got %v", err)
		}
		if calls != 1 {
			t.Errorf("calls: got %d, want 1", calls)
		}
	})

	t.Run("no retry for empty candidate", func(t *testing.T) {
		calls := 0
		_, err := withSlugRetry("", func(s string) (*models.Article, error) {
			calls++
			return nil, slugConflict
		})
		if err != slugConflict {
			t.Errorf("got %v", err)
		}
		if calls != 1 {
			t.Errorf("calls: got %d, want 1", calls)
		}
	})

	t.Run("success passes through", func(t *testing.T) {
		want := &models.Article{Slug: "hello"}
		got, err := withSlugRetry("hello", func(s string) (*models.Article, error) {
			return want, nil
		})
		if err != nil || got != want {
			t.Errorf("got %v, %v", got, err)
		}
	})
}
