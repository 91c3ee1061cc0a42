package profile

import (
	"context"

	"riderlink/internal/domain/participant"
)

// Preview is the display subset of a rider or sponsor profile used to enrich
// conversations and messages.
type Preview struct {
	UserID      string
	UserType    participant.UserType
	DisplayName string
	AvatarURL   string
	FirstName   string
	LastName    string
	FullName    string
	CompanyName string
}

// Source resolves previews for a batch of ids within one profile collection.
// Ids without an active profile are simply absent from the result.
type Source interface {
	PreviewsByIDs(ctx context.Context, ids []string) (map[string]Preview, error)
}

// Directory composes the rider and sponsor collections into one preview lookup
// keyed by participant.
type Directory struct {
	Riders   Source
	Sponsors Source
}

// PreviewsFor batch-fetches previews for the given participants, grouped by
// user type so each collection is queried at most once. Unresolvable
// references are dropped, not errors: listings degrade enrichment to absent.
func (d Directory) PreviewsFor(ctx context.Context, participants []participant.Participant) (map[string]Preview, error) {
	var riderIDs, sponsorIDs []string
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := seen[p.Key()]; ok {
			continue
		}
		seen[p.Key()] = struct{}{}
		switch p.UserType {
		case participant.TypeRider:
			riderIDs = append(riderIDs, p.UserID)
		case participant.TypeSponsor:
			sponsorIDs = append(sponsorIDs, p.UserID)
		}
	}

	out := make(map[string]Preview, len(participants))
	if len(riderIDs) > 0 && d.Riders != nil {
		previews, err := d.Riders.PreviewsByIDs(ctx, riderIDs)
		if err != nil {
			return nil, err
		}
		for id, preview := range previews {
			preview.UserID = id
			preview.UserType = participant.TypeRider
			out[participant.Participant{UserID: id, UserType: participant.TypeRider}.Key()] = preview
		}
	}
	if len(sponsorIDs) > 0 && d.Sponsors != nil {
		previews, err := d.Sponsors.PreviewsByIDs(ctx, sponsorIDs)
		if err != nil {
			return nil, err
		}
		for id, preview := range previews {
			preview.UserID = id
			preview.UserType = participant.TypeSponsor
			out[participant.Participant{UserID: id, UserType: participant.TypeSponsor}.Key()] = preview
		}
	}
	return out, nil
}
