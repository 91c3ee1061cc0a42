package dto

import (
	"time"

	"riderlink/internal/domain/article"
	"riderlink/internal/domain/offer"
	"riderlink/internal/domain/sponsor"
)

// SponsorCard is the public sponsor representation.
type SponsorCard struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	ContactName string    `json:"contact_name,omitempty"`
	Website     string    `json:"website,omitempty"`
	Country     string    `json:"country,omitempty"`
	About       string    `json:"about,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MapSponsorCard copies public sponsor data.
func MapSponsorCard(s *sponsor.Sponsor) SponsorCard {
	return SponsorCard{
		ID:          s.ID,
		CompanyName: s.CompanyName,
		DisplayName: s.DisplayName,
		AvatarURL:   s.AvatarURL,
		ContactName: s.ContactName,
		Website:     s.Website,
		Country:     s.Country,
		About:       s.About,
		CreatedAt:   s.CreatedAt,
	}
}

// OfferCard is the public offer representation.
type OfferCard struct {
	ID           string    `json:"id"`
	SponsorID    string    `json:"sponsor_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Sport        string    `json:"sport,omitempty"`
	ContractType string    `json:"contract_type,omitempty"`
	Country      string    `json:"country,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// OfferList is a paginated offer collection.
type OfferList struct {
	Items      []OfferCard `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// MapOfferCard copies offer data.
func MapOfferCard(o *offer.Offer) OfferCard {
	return OfferCard{
		ID:           o.ID,
		SponsorID:    o.SponsorID,
		Title:        o.Title,
		Description:  o.Description,
		Sport:        o.Sport,
		ContractType: o.ContractType,
		Country:      o.Country,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
	}
}

// ApplicationCard represents a rider's application.
type ApplicationCard struct {
	ID        string    `json:"id"`
	OfferID   string    `json:"offer_id"`
	RiderID   string    `json:"rider_id"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplicationList is a paginated application collection.
type ApplicationList struct {
	Items      []ApplicationCard `json:"items"`
	Pagination Pagination        `json:"pagination"`
}

// MapApplicationCard copies application data.
func MapApplicationCard(a *offer.Application) ApplicationCard {
	return ApplicationCard{
		ID:        a.ID,
		OfferID:   a.OfferID,
		RiderID:   a.RiderID,
		Message:   a.Message,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
	}
}

// ArticleCard is the public article representation.
type ArticleCard struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorType string    `json:"author_type"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Tags       []string  `json:"tags"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ArticleList is a paginated article collection.
type ArticleList struct {
	Items      []ArticleCard `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// MapArticleCard copies article data.
func MapArticleCard(a *article.Article) ArticleCard {
	return ArticleCard{
		ID:         a.ID,
		AuthorID:   a.Author.UserID,
		AuthorType: string(a.Author.UserType),
		Title:      a.Title,
		Body:       a.Body,
		Tags:       append([]string(nil), a.Tags...),
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
	}
}
