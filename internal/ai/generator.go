// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"inkwell/internal/models"
)

// GenerateOptions controls what kind of article the generator produces.
type GenerateOptions struct {
	Topic    string   `json:"topic"`
	Style    string   `json:"style"`    // formal, casual, technical
	Length   string   `json:"length"`   // short, medium, long
	Keywords []string `json:"keywords"`
}

// GeneratedArticle is the structured result parsed from the model output.
type GeneratedArticle struct {
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	Category   string   `json:"category"`
	CoverImage string   `json:"cover_image"`
}

var stylePrompts = map[string]string{
	"formal":    "a formal, academic register",
	"casual":    "a relaxed, conversational blog voice",
	"technical": "a technical, in-depth analytical style",
}

var lengthGuidance = map[string]string{
	"short":  "concise and focused on the core idea",
	"medium": "substantial, with enough depth and worked examples",
	"long":   "thorough and complete, covering background, practice, and a closing summary",
}

const systemPrompt = "You are a writing assistant for a technical blog. " +
	"You produce complete, well-structured articles in Markdown and you follow " +
	"the requested output format exactly."

// metadataSeparator splits the metadata block from the article body in the
// model output.
const metadataSeparator = "==="

// Generator produces blog articles through the configured LLM provider.
type Generator struct {
	registry *Registry
}

// NewGenerator creates a generator backed by the given provider registry.
func NewGenerator(registry *Registry) *Generator {
	return &Generator{registry: registry}
}

// GenerateArticle asks the active provider for a full article on the given
// topic and parses the structured response. categories is the list of
// existing category names the model should choose from.
func (g *Generator) GenerateArticle(ctx context.Context, opts GenerateOptions, categories []models.Category) (*GeneratedArticle, error) {
	if opts.Style == "" {
		opts.Style = "technical"
	}
	if opts.Length == "" {
		opts.Length = "medium"
	}
	if _, ok := stylePrompts[opts.Style]; !ok {
		return nil, fmt.Errorf("ai: unknown style %q", opts.Style)
	}
	if _, ok := lengthGuidance[opts.Length]; !ok {
		return nil, fmt.Errorf("ai: unknown length %q", opts.Length)
	}

	raw, err := g.registry.Generate(ctx, systemPrompt, buildPrompt(opts, categories))
	if err != nil {
		return nil, err
	}

	return parseGenerated(raw, categories), nil
}

func buildPrompt(opts GenerateOptions, categories []models.Category) string {
	var b strings.Builder

	b.WriteString("Write a complete blog article with the following requirements:\n\n")
	fmt.Fprintf(&b, "Topic: %s\n", opts.Topic)
	fmt.Fprintf(&b, "Writing style: %s\n", stylePrompts[opts.Style])
	fmt.Fprintf(&b, "Depth: %s\n", lengthGuidance[opts.Length])
	if len(opts.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords to cover: %s\n", strings.Join(opts.Keywords, ", "))
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}

	b.WriteString(`
Requirements:
1. Produce the full article; never truncate it.
2. Structure it with an introduction, several sections, and a conclusion.
3. Write in Markdown, with code examples where they help.

Output format (follow it exactly, with "` + metadataSeparator + `" on its own line between metadata and body):
Title: [article title]
Excerpt: [one or two sentence summary]
Category: [the best fit from: ` + strings.Join(names, ", ") + `]
Tags: [tag1, tag2, tag3]
` + metadataSeparator + `
[article body in Markdown]`)

	return b.String()
}

// parseGenerated extracts the structured article from raw model output.
// Malformed output degrades to sensible defaults rather than failing:
// a generation that cost tokens should still be usable as a draft.
func parseGenerated(raw string, categories []models.Category) *GeneratedArticle {
	art := &GeneratedArticle{
		Title:      "Untitled draft",
		CoverImage: randomCoverURL(),
	}
	if len(categories) > 0 {
		art.Category = categories[0].Name
	}

	meta, body, found := strings.Cut(raw, metadataSeparator)
	if !found {
		art.Content = strings.TrimSpace(raw)
		art.Excerpt = excerptFrom(art.Content)
		return art
	}

	art.Content = strings.TrimSpace(body)

	var category string
	for _, line := range strings.Split(meta, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(key) {
		case "title":
			if value != "" {
				art.Title = value
			}
		case "excerpt":
			art.Excerpt = value
		case "category":
			category = value
		case "tags":
			for _, tag := range strings.Split(value, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					art.Tags = append(art.Tags, tag)
				}
			}
		}
	}

	if art.Excerpt == "" {
		art.Excerpt = excerptFrom(art.Content)
	}
	if matched := matchCategory(category, categories); matched != "" {
		art.Category = matched
	}

	return art
}

// matchCategory maps the model's free-form category answer onto an existing
// category name, matching name or slug case-insensitively.
func matchCategory(answer string, categories []models.Category) string {
	if answer == "" {
		return ""
	}
	lower := strings.ToLower(answer)
	for _, c := range categories {
		if strings.Contains(lower, strings.ToLower(c.Name)) || strings.Contains(lower, strings.ToLower(c.Slug)) {
			return c.Name
		}
	}
	return ""
}

// excerptFrom derives a short excerpt from the article body when the model
// did not supply one.
func excerptFrom(content string) string {
	cleaned := strings.NewReplacer("#", "", "*", "", "`", "").Replace(content)
	cleaned = strings.TrimSpace(cleaned)
	runes := []rune(cleaned)
	if len(runes) > 150 {
		return string(runes[:150]) + "..."
	}
	return cleaned
}

// randomCoverURL returns a placeholder cover image, seeded so repeated
// generations get different images.
func randomCoverURL() string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/1200/630", rand.Intn(10000))
}
