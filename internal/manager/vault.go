package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/clarity/internal/category"
	"github.com/hpungsan/clarity/internal/errors"
	"github.com/hpungsan/clarity/internal/store"
)

// FilterAll matches any category or platform.
const FilterAll = "all"

// IdeaInput is a new vault entry. Tags is the comma separated form typed by
// the user.
type IdeaInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Platform string `json:"platform"`
	Category string `json:"category"`
	Tags     string `json:"tags"`
}

// GeneratedInput describes generated content being saved to the vault.
type GeneratedInput struct {
	Format   string `json:"format"`
	Topic    string `json:"topic"`
	Platform string `json:"platform"`
	Content  string `json:"content"`
}

// IdeaFilter narrows ListIdeas. Empty fields match everything.
type IdeaFilter struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Platform string `json:"platform"`
}

// AddIdea prepends a new idea to the vault.
func (m *Manager) AddIdea(ctx context.Context, in IdeaInput) (*category.ContentIdea, error) {
	if in.Title == "" || in.Content == "" {
		return nil, errors.NewInvalidRequest("Please fill in title and content")
	}
	idea := category.ContentIdea{
		Title:    in.Title,
		Content:  in.Content,
		Platform: in.Platform,
		Category: in.Category,
		Tags:     SplitTags(in.Tags),
	}
	if err := m.prependIdea(ctx, &idea); err != nil {
		return nil, err
	}
	m.notifier.Success("Idea added to vault!")
	return &idea, nil
}

// SaveGenerated stores generated content as a vault idea titled
// "<format> - <topic>" in the generated category.
func (m *Manager) SaveGenerated(ctx context.Context, in GeneratedInput) (*category.ContentIdea, error) {
	if in.Content == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}
	idea := category.ContentIdea{
		Title:    fmt.Sprintf("%s - %s", in.Format, in.Topic),
		Content:  in.Content,
		Platform: in.Platform,
		Category: "generated",
		Tags:     []string{TopicTag(in.Topic)},
	}
	if err := m.prependIdea(ctx, &idea); err != nil {
		return nil, err
	}
	m.notifier.Success("Content saved to vault!")
	return &idea, nil
}

func (m *Manager) prependIdea(ctx context.Context, idea *category.ContentIdea) error {
	if idea.Tags == nil {
		idea.Tags = []string{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.update(ctx, store.KeyContentIdeas, func(existing json.RawMessage) (json.RawMessage, error) {
		items, err := category.SplitArray(existing)
		if err != nil {
			return nil, errors.NewInvalidFormat("content vault is not an array")
		}

		now := m.now()
		idea.ID = now.UnixMilli()
		for category.HasID(items, idea.ID) {
			idea.ID++
		}
		idea.DateAdded = now.UTC().Format("2006-01-02")
		idea.IsFavorite = false

		encoded, err := category.Encode(idea)
		if err != nil {
			return nil, err
		}
		return category.JoinArray(append([]json.RawMessage{encoded}, items...))
	})
	if err != nil {
		m.logger.Error("failed to save idea", zap.Error(err))
		m.notifier.Error("Failed to save idea")
	}
	return err
}

// ListIdeas returns vault ideas matching f, in vault order. Search is a
// case-insensitive substring match over title, content and tags.
func (m *Manager) ListIdeas(ctx context.Context, f IdeaFilter) ([]category.ContentIdea, error) {
	raw, ok, err := m.readRaw(ctx, store.KeyContentIdeas)
	if err != nil {
		return nil, err
	}
	ideas := []category.ContentIdea{}
	if !ok {
		return ideas, nil
	}

	items, err := category.SplitArray(raw)
	if err != nil {
		return nil, errors.NewInvalidFormat("content vault is not an array")
	}

	search := strings.ToLower(f.Search)
	for i, item := range items {
		var idea category.ContentIdea
		if err := json.Unmarshal(item, &idea); err != nil {
			m.logger.Warn("skipping unreadable idea", zap.Int("index", i), zap.Error(err))
			continue
		}
		if matchesIdea(idea, search, f) {
			ideas = append(ideas, idea)
		}
	}
	return ideas, nil
}

func matchesIdea(idea category.ContentIdea, search string, f IdeaFilter) bool {
	if f.Category != "" && f.Category != FilterAll && idea.Category != f.Category {
		return false
	}
	if f.Platform != "" && f.Platform != FilterAll && idea.Platform != f.Platform {
		return false
	}
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(idea.Title), search) ||
		strings.Contains(strings.ToLower(idea.Content), search) {
		return true
	}
	for _, tag := range idea.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

// SetFavorite sets the isFavorite flag on the idea with id.
func (m *Manager) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	return m.editIdea(ctx, id, func(item json.RawMessage) (json.RawMessage, error) {
		return category.SetField(item, "isFavorite", favorite)
	})
}

// ToggleFavorite flips the isFavorite flag and returns the new value.
func (m *Manager) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	var next bool
	err := m.editIdea(ctx, id, func(item json.RawMessage) (json.RawMessage, error) {
		var cur struct {
			IsFavorite bool `json:"isFavorite"`
		}
		_ = json.Unmarshal(item, &cur)
		next = !cur.IsFavorite
		return category.SetField(item, "isFavorite", next)
	})
	if err != nil {
		return false, err
	}
	m.notifier.Success("Favorite updated!")
	return next, nil
}

// DeleteIdea removes the idea with id.
func (m *Manager) DeleteIdea(ctx context.Context, id int64) error {
	if err := m.editIdea(ctx, id, func(json.RawMessage) (json.RawMessage, error) {
		return nil, nil
	}); err != nil {
		return err
	}
	m.notifier.Success("Idea deleted!")
	return nil
}

// editIdea rewrites the vault item with id through fn. A nil result from fn
// drops the item.
func (m *Manager) editIdea(ctx context.Context, id int64, fn func(json.RawMessage) (json.RawMessage, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.update(ctx, store.KeyContentIdeas, func(existing json.RawMessage) (json.RawMessage, error) {
		items, err := category.SplitArray(existing)
		if err != nil {
			return nil, errors.NewInvalidFormat("content vault is not an array")
		}

		found := false
		out := make([]json.RawMessage, 0, len(items))
		for _, item := range items {
			if !category.SameID(item, id) {
				out = append(out, item)
				continue
			}
			found = true
			next, err := fn(item)
			if err != nil {
				return nil, err
			}
			if next != nil {
				out = append(out, next)
			}
		}
		if !found {
			return nil, errors.NewNotFound(fmt.Sprintf("idea %d", id))
		}
		return category.JoinArray(out)
	})
	return err
}

// SplitTags splits a comma separated tag list, trimming blanks.
func SplitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// TopicTag turns a topic into a lowercase hyphenated tag.
func TopicTag(topic string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(topic), "-")
}
