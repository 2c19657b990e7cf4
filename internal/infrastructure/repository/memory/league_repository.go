package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pick-league/internal/domain/league"
)

type LeagueRepository struct {
	mu      sync.RWMutex
	items   map[string]league.League
	members map[string]map[string]league.Member
}

func NewLeagueRepository(leagues []league.League, members []league.Member) *LeagueRepository {
	r := &LeagueRepository{
		items:   make(map[string]league.League, len(leagues)),
		members: make(map[string]map[string]league.Member, len(leagues)),
	}
	for _, l := range leagues {
		r.items[l.ID] = l
	}
	for _, m := range members {
		r.addMemberLocked(m)
	}
	return r
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}

	return l, true, nil
}

func (r *LeagueRepository) GetMember(_ context.Context, leagueID, userID string) (league.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[leagueID][userID]
	return m, ok, nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.Member, 0, len(r.members[leagueID]))
	for _, m := range r.members[leagueID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// AddMember is a seeding helper; roster administration lives elsewhere.
func (r *LeagueRepository) AddMember(m league.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addMemberLocked(m)
}

func (r *LeagueRepository) addMemberLocked(m league.Member) {
	roster, ok := r.members[m.LeagueID]
	if !ok {
		roster = make(map[string]league.Member)
		r.members[m.LeagueID] = roster
	}
	roster[m.UserID] = m
}
