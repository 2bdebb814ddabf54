package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prelovedguru/backend/internal/domain"
)

// CatalogProvider supplies catalog snapshots by view
type CatalogProvider interface {
	Current(ctx context.Context, view domain.CatalogView) (*domain.Catalog, error)
}

// ProfileService serves the shopper's wishlist and the matches found for it
type ProfileService struct {
	catalogs  CatalogProvider
	wishlist  domain.WishlistRepository
	deleted   domain.DeletedIDRepository
	scorer    *MatchScorer
	publisher domain.EventPublisher
	logger    *zap.Logger
	metrics   MetricsRecorder
	now       func() time.Time

	mu         sync.Mutex
	matchDates map[string]time.Time
}

// NewProfileService creates a new profile service with dependencies
func NewProfileService(
	catalogs CatalogProvider,
	wishlist domain.WishlistRepository,
	deleted domain.DeletedIDRepository,
	scorer *MatchScorer,
	publisher domain.EventPublisher,
	logger *zap.Logger,
	metrics MetricsRecorder,
) *ProfileService {
	if scorer == nil {
		scorer = NewMatchScorer(MatchConfig{}, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProfileService{
		catalogs:   catalogs,
		wishlist:   wishlist,
		deleted:    deleted,
		scorer:     scorer,
		publisher:  publisher,
		logger:     logger,
		metrics:    recorderOrNoop(metrics),
		now:        time.Now,
		matchDates: make(map[string]time.Time),
	}
}

// Matches regenerates the matches of every match_found wishlist entry against the
// profile catalog, leaving out deleted match IDs.
func (s *ProfileService) Matches(ctx context.Context) ([]domain.Match, error) {
	entries, err := s.wishlist.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.matchesFor(ctx, entries)
}

func (s *ProfileService) matchesFor(ctx context.Context, entries []domain.WishlistEntry) ([]domain.Match, error) {
	catalog, err := s.catalogs.Current(ctx, domain.ViewProfile)
	if err != nil {
		return nil, err
	}

	deleted, err := s.deleted.Load(ctx, domain.KeyDeletedMatchIDs)
	if err != nil {
		return nil, err
	}

	matches := s.scorer.GenerateMatches(entries, catalog, deleted, s.matchDate)
	s.metrics.MatchesGenerated(len(matches))
	return matches, nil
}

// matchDate assigns a date the first time a match ID is seen and keeps it
func (s *ProfileService) matchDate(matchID string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if date, ok := s.matchDates[matchID]; ok {
		return date
	}
	date := StableMatchDater(s.now())(matchID)
	s.matchDates[matchID] = date
	return date
}

// DeleteMatch hides a match from future results. The wishlist entry keeps its status.
func (s *ProfileService) DeleteMatch(ctx context.Context, matchID string) error {
	if matchID == "" {
		return domain.ErrInvalidRequest
	}

	matches, err := s.Matches(ctx)
	if err != nil {
		return err
	}

	var target *domain.Match
	for i := range matches {
		if matches[i].ID == matchID {
			target = &matches[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: match %q", domain.ErrNotFound, matchID)
	}

	if err := s.deleted.Append(ctx, domain.KeyDeletedMatchIDs, matchID); err != nil {
		return err
	}

	remaining := 0
	for _, m := range matches {
		if m.WishlistID == target.WishlistID && m.ID != matchID {
			remaining++
		}
	}
	if remaining == 0 {
		s.logger.Info("no matches left for wishlist entry", zap.String("wishlist_id", target.WishlistID))
	}

	s.metrics.MatchDeleted()
	s.publish(ctx, domain.SubjectMatchDeleted, map[string]string{
		"matchId":    matchID,
		"wishlistId": target.WishlistID,
	})
	return nil
}

// Wishlist lists wishlist entries with their live match counts
func (s *ProfileService) Wishlist(ctx context.Context, filter domain.WishlistFilter, order domain.WishlistSort) (*domain.WishlistView, error) {
	if filter == "" {
		filter = domain.WishlistFilterAll
	}
	if order == "" {
		order = domain.WishlistSortDateDesc
	}
	if !validWishlistFilter(filter) || !validWishlistSort(order) {
		return nil, fmt.Errorf("%w: filter %q sort %q", domain.ErrInvalidRequest, filter, order)
	}

	entries, err := s.wishlist.List(ctx)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchesFor(ctx, entries)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, m := range matches {
		counts[m.WishlistID]++
	}

	items := make([]domain.WishlistItemView, 0, len(entries))
	for _, e := range entries {
		switch filter {
		case domain.WishlistFilterWithMatches:
			if e.Status != domain.WishlistMatchFound {
				continue
			}
		case domain.WishlistFilterWatching:
			if e.Status != domain.WishlistWatching {
				continue
			}
		}

		count := 0
		if e.Status == domain.WishlistMatchFound {
			count = counts[e.ID]
		}
		items = append(items, domain.WishlistItemView{WishlistEntry: e, MatchCount: count})
	}

	sortWishlist(items, order)

	return &domain.WishlistView{Items: items, Count: len(items), TotalCount: len(entries)}, nil
}

func sortWishlist(items []domain.WishlistItemView, order domain.WishlistSort) {
	switch order {
	case domain.WishlistSortDateDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].AddedDate.After(items[j].AddedDate) })
	case domain.WishlistSortDateAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].AddedDate.Before(items[j].AddedDate) })
	case domain.WishlistSortMatches:
		sort.SliceStable(items, func(i, j int) bool { return items[i].MatchCount > items[j].MatchCount })
	case domain.WishlistSortAlphabetical:
		collator := newCollator()
		sort.SliceStable(items, func(i, j int) bool {
			return collator.CompareString(items[i].Title, items[j].Title) < 0
		})
	}
}

func validWishlistFilter(f domain.WishlistFilter) bool {
	switch f {
	case domain.WishlistFilterAll, domain.WishlistFilterWithMatches, domain.WishlistFilterWatching:
		return true
	}
	return false
}

func validWishlistSort(o domain.WishlistSort) bool {
	switch o {
	case domain.WishlistSortDateDesc, domain.WishlistSortDateAsc, domain.WishlistSortMatches, domain.WishlistSortAlphabetical:
		return true
	}
	return false
}

// publish sends an event; failures are logged and never fail the request
func (s *ProfileService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		s.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
