package league

import "context"

// Repository describes the league reads the scoring core depends on.
type Repository interface {
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetMember(ctx context.Context, leagueID, userID string) (Member, bool, error)
	ListMembers(ctx context.Context, leagueID string) ([]Member, error)
}
