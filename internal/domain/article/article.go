package article

import (
	"context"
	"errors"
	"strings"
	"time"

	"riderlink/internal/domain/participant"
)

var (
	ErrNotFound      = errors.New("article: not found")
	ErrTitleRequired = errors.New("article: title is required")
	ErrBodyRequired  = errors.New("article: body is required")
	ErrNotAuthor     = errors.New("article: caller is not the author")
)

// Status controls visibility in public listings.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
)

// Article is an editorial post written by a rider or sponsor.
type Article struct {
	ID        string
	Author    participant.Participant
	Title     string
	Body      string
	Tags      []string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams feed NewArticle.
type CreateParams struct {
	ID      string
	Author  participant.Participant
	Title   string
	Body    string
	Tags    []string
	Publish bool
	Now     time.Time
}

// NewArticle validates required fields.
func NewArticle(params CreateParams) (*Article, error) {
	if strings.TrimSpace(params.ID) == "" {
		return nil, errors.New("article: id is required")
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, ErrBodyRequired
	}
	status := StatusDraft
	if params.Publish {
		status = StatusPublished
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	tags := make([]string, 0, len(params.Tags))
	seen := make(map[string]struct{}, len(params.Tags))
	for _, tag := range params.Tags {
		tag = strings.TrimSpace(strings.ToLower(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return &Article{
		ID:        params.ID,
		Author:    params.Author,
		Title:     title,
		Body:      body,
		Tags:      tags,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Publish makes a draft visible.
func (a *Article) Publish(now time.Time) {
	a.Status = StatusPublished
	a.touch(now)
}

func (a *Article) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	a.UpdatedAt = now.UTC()
}

// ListFilter narrows article listings.
type ListFilter struct {
	AuthorID string
	Tag      string
	Offset   int
	Limit    int
}

// Repository is the persistence contract for articles. List returns published
// articles only, newest first, plus the unpaginated total.
type Repository interface {
	ByID(ctx context.Context, id string) (*Article, error)
	Save(ctx context.Context, article *Article) error
	List(ctx context.Context, filter ListFilter) ([]*Article, int64, error)
}
