package dto

import (
	"time"

	"riderlink/internal/domain/rider"
)

// RiderSearchRequest is the JSON body accepted by the search endpoint.
type RiderSearchRequest struct {
	Sports         []string `json:"sports"`
	Country        string   `json:"country"`
	Gender         string   `json:"gender"`
	AgeMin         float64  `json:"age_min"`
	AgeMax         float64  `json:"age_max"`
	Languages      []string `json:"languages"`
	SocialNetworks []string `json:"social_networks"`
	Availability   *bool    `json:"availability"`
	ContractType   string   `json:"contract_type"`
	Query          string   `json:"q"`
	Sort           string   `json:"sort"`
	Direction      string   `json:"direction"`
	Page           int      `json:"page"`
	Limit          int      `json:"limit"`
}

// Filters maps the request onto the domain filter object.
func (r RiderSearchRequest) Filters() rider.SearchFilters {
	return rider.SearchFilters{
		Sports:         r.Sports,
		Country:        r.Country,
		Gender:         rider.Gender(r.Gender),
		Age:            rider.AgeRange{Min: r.AgeMin, Max: r.AgeMax},
		Languages:      r.Languages,
		SocialNetworks: r.SocialNetworks,
		Availability:   r.Availability,
		ContractType:   rider.ContractType(r.ContractType),
		Query:          r.Query,
		Sort:           rider.SearchSort(r.Sort),
		Direction:      r.Direction,
		Page:           r.Page,
		Limit:          r.Limit,
	}
}

// RiderCard is the public profile representation. Password hashes and linked
// account secrets never appear here.
type RiderCard struct {
	ID           string        `json:"id"`
	Username     string        `json:"username"`
	DisplayName  string        `json:"display_name"`
	AvatarURL    string        `json:"avatar_url,omitempty"`
	Bio          string        `json:"bio,omitempty"`
	FirstName    string        `json:"first_name,omitempty"`
	LastName     string        `json:"last_name,omitempty"`
	FullName     string        `json:"full_name,omitempty"`
	Country      string        `json:"country,omitempty"`
	Gender       string        `json:"gender,omitempty"`
	BirthDate    *time.Time    `json:"birth_date,omitempty"`
	Sports       []string      `json:"sports"`
	Languages    []string      `json:"languages"`
	Networks     []NetworkCard `json:"networks"`
	Availability bool          `json:"availability"`
	ContractType string        `json:"contract_type,omitempty"`
	Views        int64         `json:"views"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NetworkCard exposes the public part of a linked account.
type NetworkCard struct {
	Network   string `json:"network"`
	Handle    string `json:"handle"`
	Followers int64  `json:"followers"`
}

// RiderSearchResult is the paginated search response.
type RiderSearchResult struct {
	Items      []RiderCard `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// MapRiderCard copies profile data, dropping secret fields.
func MapRiderCard(r *rider.Rider) RiderCard {
	networks := make([]NetworkCard, 0, len(r.LinkedAccounts))
	for _, account := range r.LinkedAccounts {
		networks = append(networks, NetworkCard{
			Network:   account.Network,
			Handle:    account.Handle,
			Followers: account.Followers,
		})
	}
	var birth *time.Time
	if !r.Identity.BirthDate.IsZero() {
		b := r.Identity.BirthDate
		birth = &b
	}
	return RiderCard{
		ID:           r.ID,
		Username:     r.Username,
		DisplayName:  r.DisplayName,
		AvatarURL:    r.AvatarURL,
		Bio:          r.Bio,
		FirstName:    r.Identity.FirstName,
		LastName:     r.Identity.LastName,
		FullName:     r.Identity.FullName,
		Country:      r.Identity.Country,
		Gender:       string(r.Identity.Gender),
		BirthDate:    birth,
		Sports:       append([]string(nil), r.Sports...),
		Languages:    append([]string(nil), r.Languages...),
		Networks:     networks,
		Availability: r.Availability,
		ContractType: string(r.ContractType),
		Views:        r.Views,
		CreatedAt:    r.CreatedAt,
	}
}
