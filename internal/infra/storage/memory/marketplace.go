package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"riderlink/internal/domain/article"
	"riderlink/internal/domain/offer"
	"riderlink/internal/domain/profile"
	"riderlink/internal/domain/sponsor"
)

// SponsorRepository is the in-memory sponsor store.
type SponsorRepository struct {
	mu    sync.RWMutex
	items map[string]*sponsor.Sponsor
}

func NewSponsorRepository() *SponsorRepository {
	return &SponsorRepository{items: make(map[string]*sponsor.Sponsor)}
}

var _ sponsor.Repository = (*SponsorRepository)(nil)

func (r *SponsorRepository) ByID(ctx context.Context, id string) (*sponsor.Sponsor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agg, ok := r.items[id]
	if !ok {
		return nil, sponsor.ErrNotFound
	}
	clone := *agg
	return &clone, nil
}

func (r *SponsorRepository) ByEmail(ctx context.Context, email string) (*sponsor.Sponsor, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, agg := range r.items {
		if agg.Email == email {
			clone := *agg
			return &clone, nil
		}
	}
	return nil, sponsor.ErrNotFound
}

func (r *SponsorRepository) Save(ctx context.Context, agg *sponsor.Sponsor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.items {
		if id != agg.ID && existing.Email == agg.Email {
			return sponsor.ErrEmailAlreadyUsed
		}
	}
	clone := *agg
	r.items[agg.ID] = &clone
	return nil
}

func (r *SponsorRepository) PreviewsByIDs(ctx context.Context, ids []string) (map[string]profile.Preview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	previews := make(map[string]profile.Preview, len(ids))
	for _, id := range ids {
		if agg, ok := r.items[id]; ok && agg.Status == sponsor.StatusActive {
			previews[id] = agg.Preview()
		}
	}
	return previews, nil
}

// OfferRepository stores offers and applications, enforcing the single
// application per (offer, rider) rule the database index carries.
type OfferRepository struct {
	mu           sync.RWMutex
	offers       map[string]*offer.Offer
	applications map[string]*offer.Application
}

func NewOfferRepository() *OfferRepository {
	return &OfferRepository{
		offers:       make(map[string]*offer.Offer),
		applications: make(map[string]*offer.Application),
	}
}

var _ offer.Repository = (*OfferRepository)(nil)

func (r *OfferRepository) ByID(ctx context.Context, id string) (*offer.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agg, ok := r.offers[id]
	if !ok {
		return nil, offer.ErrNotFound
	}
	clone := *agg
	return &clone, nil
}

func (r *OfferRepository) Save(ctx context.Context, agg *offer.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *agg
	r.offers[agg.ID] = &clone
	return nil
}

func (r *OfferRepository) List(ctx context.Context, filter offer.ListFilter) ([]*offer.Offer, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*offer.Offer
	for _, agg := range r.offers {
		if agg.Status == offer.StatusDeleted {
			continue
		}
		if filter.OnlyOpen && agg.Status != offer.StatusOpen {
			continue
		}
		if filter.SponsorID != "" && agg.SponsorID != filter.SponsorID {
			continue
		}
		if filter.Sport != "" && agg.Sport != filter.Sport {
			continue
		}
		if filter.ContractType != "" && agg.ContractType != filter.ContractType {
			continue
		}
		matches = append(matches, agg)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := int64(len(matches))
	page := paginate(matches, filter.Offset, filter.Limit)
	out := make([]*offer.Offer, 0, len(page))
	for _, agg := range page {
		clone := *agg
		out = append(out, &clone)
	}
	return out, total, nil
}

func (r *OfferRepository) InsertApplication(ctx context.Context, application *offer.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.applications {
		if existing.OfferID == application.OfferID && existing.RiderID == application.RiderID {
			return offer.ErrApplicationExists
		}
	}
	clone := *application
	r.applications[application.ID] = &clone
	return nil
}

func (r *OfferRepository) ApplicationsByOffer(ctx context.Context, offerID string, offset, limit int) ([]*offer.Application, int64, error) {
	return r.listApplications(func(a *offer.Application) bool { return a.OfferID == offerID }, offset, limit)
}

func (r *OfferRepository) ApplicationsByRider(ctx context.Context, riderID string, offset, limit int) ([]*offer.Application, int64, error) {
	return r.listApplications(func(a *offer.Application) bool { return a.RiderID == riderID }, offset, limit)
}

func (r *OfferRepository) listApplications(match func(*offer.Application) bool, offset, limit int) ([]*offer.Application, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*offer.Application
	for _, application := range r.applications {
		if match(application) {
			matches = append(matches, application)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := int64(len(matches))
	page := paginate(matches, offset, limit)
	out := make([]*offer.Application, 0, len(page))
	for _, application := range page {
		clone := *application
		out = append(out, &clone)
	}
	return out, total, nil
}

func (r *OfferRepository) SaveApplication(ctx context.Context, application *offer.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *application
	r.applications[application.ID] = &clone
	return nil
}

func (r *OfferRepository) ApplicationByID(ctx context.Context, id string) (*offer.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	application, ok := r.applications[id]
	if !ok {
		return nil, offer.ErrApplicationMissing
	}
	clone := *application
	return &clone, nil
}

// ArticleRepository is the in-memory article store.
type ArticleRepository struct {
	mu    sync.RWMutex
	items map[string]*article.Article
}

func NewArticleRepository() *ArticleRepository {
	return &ArticleRepository{items: make(map[string]*article.Article)}
}

var _ article.Repository = (*ArticleRepository)(nil)

func (r *ArticleRepository) ByID(ctx context.Context, id string) (*article.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agg, ok := r.items[id]
	if !ok {
		return nil, article.ErrNotFound
	}
	clone := cloneArticle(agg)
	return clone, nil
}

func (r *ArticleRepository) Save(ctx context.Context, agg *article.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[agg.ID] = cloneArticle(agg)
	return nil
}

func (r *ArticleRepository) List(ctx context.Context, filter article.ListFilter) ([]*article.Article, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*article.Article
	for _, agg := range r.items {
		if agg.Status != article.StatusPublished {
			continue
		}
		if filter.AuthorID != "" && agg.Author.UserID != filter.AuthorID {
			continue
		}
		if filter.Tag != "" && !containsToken(agg.Tags, filter.Tag) {
			continue
		}
		matches = append(matches, agg)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := int64(len(matches))
	page := paginate(matches, filter.Offset, filter.Limit)
	out := make([]*article.Article, 0, len(page))
	for _, agg := range page {
		out = append(out, cloneArticle(agg))
	}
	return out, total, nil
}

func cloneArticle(agg *article.Article) *article.Article {
	clone := *agg
	clone.Tags = append([]string(nil), agg.Tags...)
	return &clone
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}
