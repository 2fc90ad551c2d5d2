package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sentineliq/internal/client/client"
	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/common"
)

// LinkService covers the provider link flow. The OAuth dance happens in the
// user's browser; afterwards Resolve finds the inboxes it added.
type LinkService struct {
	client client.Client
}

func NewLinkService(c client.Client) *LinkService {
	return &LinkService{client: c}
}

// URL returns the address that starts linking provider.
func (s *LinkService) URL(provider string) (string, error) {
	if !models.ValidProvider(provider) {
		return "", fmt.Errorf("provider %q: %w", provider, common.ErrValidation)
	}
	return s.client.LinkURL(provider), nil
}

// Resolve returns the inboxes reported by the server that are not in known,
// in server order.
func (s *LinkService) Resolve(ctx context.Context, known []models.InboxSummary) ([]models.LinkResult, error) {
	profile, err := s.client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve linked inboxes: %w", err)
	}

	seen := make(map[string]struct{}, len(known))
	for _, in := range known {
		seen[in.ID] = struct{}{}
	}

	out := []models.LinkResult{}
	for _, in := range profile.Inboxes {
		if _, ok := seen[in.ID]; ok {
			continue
		}
		out = append(out, models.LinkResult{Inbox: in})
	}
	return out, nil
}
