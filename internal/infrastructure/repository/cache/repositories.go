package cache

import (
	"context"

	"github.com/riskibarqy/pick-league/internal/domain/league"
	basecache "github.com/riskibarqy/pick-league/internal/platform/cache"
)

// LeagueRepository caches league metadata and rosters. Games and cards are
// never cached here: lock checks must see the stored state.
type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	key := "league:id:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeagueByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeagueByID)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) GetMember(ctx context.Context, leagueID, userID string) (league.Member, bool, error) {
	key := "league:member:" + leagueID + ":" + userID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetMember(ctx, leagueID, userID)
		if err != nil {
			return nil, err
		}
		return cachedMember{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.Member{}, false, err
	}

	cached, _ := v.(cachedMember)
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Member, error) {
	key := "league:members:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListMembers(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return append([]league.Member(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.Member)
	return append([]league.Member(nil), items...), nil
}

// InvalidateLeague drops cached league and roster entries after a membership change.
func (r *LeagueRepository) InvalidateLeague(ctx context.Context, leagueID string) {
	r.cache.Delete(ctx, "league:id:"+leagueID)
	r.cache.Delete(ctx, "league:members:"+leagueID)
	r.cache.DeletePrefix(ctx, "league:member:"+leagueID+":")
}

type cachedLeagueByID struct {
	value  league.League
	exists bool
}

type cachedMember struct {
	value  league.Member
	exists bool
}
