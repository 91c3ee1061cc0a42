package articles

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"riderlink/internal/app/dto"
	domainarticle "riderlink/internal/domain/article"
	"riderlink/internal/domain/participant"
)

// Service manages editorial articles.
type Service struct {
	Articles    domainarticle.Repository
	IDGenerator func() string
	Clock       func() time.Time
}

// CreateParams feed Create.
type CreateParams struct {
	Author  participant.Participant
	Title   string
	Body    string
	Tags    []string
	Publish bool
}

// Create stores a new article for the authenticated author.
func (s *Service) Create(ctx context.Context, params CreateParams) (dto.ArticleCard, error) {
	created, err := domainarticle.NewArticle(domainarticle.CreateParams{
		ID:      s.newID(),
		Author:  params.Author,
		Title:   params.Title,
		Body:    params.Body,
		Tags:    params.Tags,
		Publish: params.Publish,
		Now:     s.now(),
	})
	if err != nil {
		return dto.ArticleCard{}, err
	}
	if err := s.Articles.Save(ctx, created); err != nil {
		return dto.ArticleCard{}, err
	}
	return dto.MapArticleCard(created), nil
}

// ByID returns a published article; drafts are visible to their author only.
func (s *Service) ByID(ctx context.Context, id string, viewer *participant.Participant) (dto.ArticleCard, error) {
	found, err := s.Articles.ByID(ctx, id)
	if err != nil {
		return dto.ArticleCard{}, err
	}
	if found.Status != domainarticle.StatusPublished {
		if viewer == nil || !viewer.Equal(found.Author) {
			return dto.ArticleCard{}, domainarticle.ErrNotFound
		}
	}
	return dto.MapArticleCard(found), nil
}

// List returns one page of published articles, newest first.
func (s *Service) List(ctx context.Context, filter domainarticle.ListFilter, page, limit int) (dto.ArticleList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	filter.Offset = (page - 1) * limit
	filter.Limit = limit
	items, total, err := s.Articles.List(ctx, filter)
	if err != nil {
		return dto.ArticleList{}, err
	}
	cards := make([]dto.ArticleCard, 0, len(items))
	for _, item := range items {
		cards = append(cards, dto.MapArticleCard(item))
	}
	return dto.ArticleList{Items: cards, Pagination: dto.NewPagination(page, limit, total)}, nil
}

// Publish flips the author's draft to published.
func (s *Service) Publish(ctx context.Context, author participant.Participant, id string) (dto.ArticleCard, error) {
	found, err := s.Articles.ByID(ctx, id)
	if err != nil {
		return dto.ArticleCard{}, err
	}
	if !found.Author.Equal(author) {
		return dto.ArticleCard{}, domainarticle.ErrNotAuthor
	}
	found.Publish(s.now())
	if err := s.Articles.Save(ctx, found); err != nil {
		return dto.ArticleCard{}, err
	}
	return dto.MapArticleCard(found), nil
}

func (s *Service) newID() string {
	if s.IDGenerator != nil {
		return s.IDGenerator()
	}
	return primitive.NewObjectID().Hex()
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}
