package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/domain/game"
	"github.com/riskibarqy/pick-league/internal/domain/league"
	"github.com/riskibarqy/pick-league/internal/platform/id"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/platform/resilience"
	"github.com/shopspring/decimal"
)

type PickInput struct {
	GameID    string
	Kind      card.BetKind
	Selection card.Selection
	Line      *decimal.Decimal
}

type SubmitCardInput struct {
	UserID   string
	LeagueID string
	Week     int
	Year     int
	Picks    []PickInput
}

type PickView struct {
	card.Pick
	Locked bool
}

type CardView struct {
	Card              card.Card
	Picks             []PickView
	LockedCount       int
	RemainingCapacity int
}

type WeekInfo struct {
	LeagueID string
	Week     int
	Start    time.Time
	End      time.Time
}

type standingsInvalidator interface {
	InvalidateLeague(ctx context.Context, leagueID string)
}

type PickLedgerService struct {
	leagueRepo league.Repository
	gameRepo   game.Repository
	cardRepo   card.Repository
	ids        id.Generator
	cardLocks  *resilience.KeyedMutex
	standings  standingsInvalidator
	clock      clockwork.Clock
	logger     *logging.Logger
}

func NewPickLedgerService(
	leagueRepo league.Repository,
	gameRepo game.Repository,
	cardRepo card.Repository,
	ids id.Generator,
	cardLocks *resilience.KeyedMutex,
	standings standingsInvalidator,
	clock clockwork.Clock,
	logger *logging.Logger,
) *PickLedgerService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if cardLocks == nil {
		cardLocks = &resilience.KeyedMutex{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &PickLedgerService{
		leagueRepo: leagueRepo,
		gameRepo:   gameRepo,
		cardRepo:   cardRepo,
		ids:        ids,
		cardLocks:  cardLocks,
		standings:  standings,
		clock:      clock,
		logger:     logger,
	}
}

// SubmitOrEditCard replaces the editable picks on the caller's card. Picks on
// locked games are never changed.
func (s *PickLedgerService) SubmitOrEditCard(ctx context.Context, input SubmitCardInput) (card.Card, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickLedgerService.SubmitOrEditCard")
	defer span.End()

	key := card.Key{
		UserID:   strings.TrimSpace(input.UserID),
		LeagueID: strings.TrimSpace(input.LeagueID),
		Week:     input.Week,
		Year:     input.Year,
	}
	if err := key.Validate(); err != nil {
		return card.Card{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	desired, err := normalizePickInputs(input.Picks)
	if err != nil {
		return card.Card{}, err
	}

	if err := s.ensureMember(ctx, key.LeagueID, key.UserID); err != nil {
		return card.Card{}, err
	}

	games, err := s.resolveGames(ctx, key.LeagueID, desired)
	if err != nil {
		return card.Card{}, err
	}

	unlock, err := s.cardLocks.Lock(ctx, key.String())
	if err != nil {
		return card.Card{}, fmt.Errorf("acquire card lock: %w", err)
	}
	defer unlock()

	existing, exists, err := s.cardRepo.GetByKey(ctx, key)
	if err != nil {
		return card.Card{}, fmt.Errorf("get card by key: %w", err)
	}
	if err := s.loadMissingGames(ctx, games, existing.Picks); err != nil {
		return card.Card{}, err
	}

	now := s.clock.Now()
	plan, err := planCardEdit(existing.Picks, desired, games, now)
	if err != nil {
		return card.Card{}, err
	}

	cardID := existing.ID
	if !exists {
		cardID, err = s.ids.NewID()
		if err != nil {
			return card.Card{}, fmt.Errorf("generate card id: %w", err)
		}
	}
	for i := range plan.insert {
		pickID, err := s.ids.NewID()
		if err != nil {
			return card.Card{}, fmt.Errorf("generate pick id: %w", err)
		}
		plan.insert[i].ID = pickID
		plan.insert[i].CardID = cardID
		plan.insert[i].Result = card.ResultPending
		plan.insert[i].CreatedAt = now
	}

	edit := card.Edit{
		CardID:    cardID,
		Key:       key,
		Remove:    plan.remove,
		Insert:    plan.insert,
		UpdatedAt: now,
	}
	saved, err := s.cardRepo.SaveEdit(ctx, edit, s.lockGuard())
	if err != nil {
		if errors.Is(err, card.ErrStaleLockState) {
			return card.Card{}, err
		}
		return card.Card{}, fmt.Errorf("save card edit: %w", err)
	}

	if s.standings != nil {
		s.standings.InvalidateLeague(ctx, key.LeagueID)
	}
	s.logger.InfoContext(ctx, "card saved",
		"card_id", saved.ID,
		"league_id", key.LeagueID,
		"user_id", key.UserID,
		"week", key.Week,
		"year", key.Year,
		"locked", plan.lockedCount,
		"removed", len(plan.remove),
		"inserted", len(plan.insert),
	)
	return saved, nil
}

// lockGuard rejects the write when any game it touches locked after planning.
func (s *PickLedgerService) lockGuard() card.LockGuard {
	return func(current []game.Game) error {
		asOf := s.clock.Now()
		for _, g := range current {
			if game.IsLocked(g, asOf) {
				return fmt.Errorf("%w: game %s", card.ErrStaleLockState, g.ID)
			}
		}
		return nil
	}
}

func (s *PickLedgerService) GetCardView(ctx context.Context, cardID string) (CardView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickLedgerService.GetCardView")
	defer span.End()

	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return CardView{}, fmt.Errorf("%w: card_id is required", ErrInvalidInput)
	}

	item, exists, err := s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return CardView{}, fmt.Errorf("get card by id: %w", err)
	}
	if !exists {
		return CardView{}, fmt.Errorf("%w: card=%s", ErrNotFound, cardID)
	}
	return s.buildView(ctx, item)
}

// GetMyCard returns the caller's card for a week, or ErrNotFound before the
// first submission.
func (s *PickLedgerService) GetMyCard(ctx context.Context, userID, leagueID string, week, year int) (CardView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickLedgerService.GetMyCard")
	defer span.End()

	key := card.Key{UserID: strings.TrimSpace(userID), LeagueID: strings.TrimSpace(leagueID), Week: week, Year: year}
	if err := key.Validate(); err != nil {
		return CardView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.ensureMember(ctx, key.LeagueID, key.UserID); err != nil {
		return CardView{}, err
	}

	item, exists, err := s.cardRepo.GetByKey(ctx, key)
	if err != nil {
		return CardView{}, fmt.Errorf("get card by key: %w", err)
	}
	if !exists {
		return CardView{}, fmt.Errorf("%w: no card for league=%s week=%d year=%d", ErrNotFound, key.LeagueID, week, year)
	}
	return s.buildView(ctx, item)
}

// CurrentWeek is the only place a week number is derived for a league.
func (s *PickLedgerService) CurrentWeek(ctx context.Context, leagueID string) (WeekInfo, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickLedgerService.CurrentWeek")
	defer span.End()

	item, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return WeekInfo{}, err
	}

	week := item.CurrentWeek(s.clock.Now())
	anchor := league.WeekAnchor(item.CreatedAt, item.WeekBoundary, item.Zone())
	start, end := league.WeekInterval(anchor, week)
	return WeekInfo{
		LeagueID: item.ID,
		Week:     week,
		Start:    start,
		End:      end,
	}, nil
}

func (s *PickLedgerService) buildView(ctx context.Context, item card.Card) (CardView, error) {
	gameIDs := make([]string, 0, len(item.Picks))
	for _, p := range item.Picks {
		gameIDs = append(gameIDs, p.GameID)
	}
	games, err := s.gameRepo.ListByIDs(ctx, gameIDs)
	if err != nil {
		return CardView{}, fmt.Errorf("list card games: %w", err)
	}
	byID := make(map[string]game.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}

	now := s.clock.Now()
	view := CardView{Card: item, Picks: make([]PickView, 0, len(item.Picks))}
	for _, p := range item.Picks {
		locked := false
		if g, ok := byID[p.GameID]; ok {
			locked = game.IsLocked(g, now)
		}
		if locked {
			view.LockedCount++
		}
		view.Picks = append(view.Picks, PickView{Pick: p, Locked: locked})
	}
	view.RemainingCapacity = card.MaxPicks - len(item.Picks)
	if view.RemainingCapacity < 0 {
		view.RemainingCapacity = 0
	}
	return view, nil
}

func (s *PickLedgerService) getLeague(ctx context.Context, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}
	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by id: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return item, nil
}

func (s *PickLedgerService) ensureMember(ctx context.Context, leagueID, userID string) error {
	if _, err := s.getLeague(ctx, leagueID); err != nil {
		return err
	}
	_, isMember, err := s.leagueRepo.GetMember(ctx, leagueID, userID)
	if err != nil {
		return fmt.Errorf("get league member: %w", err)
	}
	if !isMember {
		return fmt.Errorf("%w: user is not a member of league %s", ErrUnauthorized, leagueID)
	}
	return nil
}

func (s *PickLedgerService) resolveGames(ctx context.Context, leagueID string, desired []card.Pick) (map[string]game.Game, error) {
	ids := uniqueGameIDs(desired)
	byID := make(map[string]game.Game, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	games, err := s.gameRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list games by ids: %w", err)
	}
	for _, g := range games {
		byID[g.ID] = g
	}
	for _, gameID := range ids {
		g, ok := byID[gameID]
		if !ok {
			return nil, fmt.Errorf("%w: game %s not found", ErrInvalidInput, gameID)
		}
		if g.LeagueID != "" && g.LeagueID != leagueID {
			return nil, fmt.Errorf("%w: game %s is not part of league %s", ErrInvalidInput, gameID, leagueID)
		}
	}
	return byID, nil
}

func (s *PickLedgerService) loadMissingGames(ctx context.Context, games map[string]game.Game, picks []card.Pick) error {
	missing := make([]string, 0)
	for _, gameID := range uniqueGameIDs(picks) {
		if _, ok := games[gameID]; !ok {
			missing = append(missing, gameID)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	loaded, err := s.gameRepo.ListByIDs(ctx, missing)
	if err != nil {
		return fmt.Errorf("list card games: %w", err)
	}
	for _, g := range loaded {
		games[g.ID] = g
	}
	return nil
}

type cardEditPlan struct {
	lockedCount int
	remove      []string
	insert      []card.Pick
}

// planCardEdit decides the edit against the stored picks as locked at asOf.
// A desired pick on a locked game is dropped when the card already holds that
// slot and is stale otherwise.
func planCardEdit(existing, desired []card.Pick, games map[string]game.Game, asOf time.Time) (cardEditPlan, error) {
	plan := cardEditPlan{}
	onCard := make(map[string]struct{}, len(existing))
	editable := make([]card.Pick, 0, len(existing))
	for _, p := range existing {
		onCard[p.Slot()] = struct{}{}
		g, ok := games[p.GameID]
		if ok && game.IsLocked(g, asOf) {
			plan.lockedCount++
			continue
		}
		editable = append(editable, p)
	}

	wanted := make([]card.Pick, 0, len(desired))
	staleGameID := ""
	for _, p := range desired {
		if !game.IsLocked(games[p.GameID], asOf) {
			wanted = append(wanted, p)
			continue
		}
		if _, ok := onCard[p.Slot()]; ok {
			continue
		}
		if staleGameID == "" {
			staleGameID = p.GameID
		}
		wanted = append(wanted, p)
	}

	if plan.lockedCount+len(wanted) > card.MaxPicks {
		return cardEditPlan{}, &card.CapacityError{Locked: plan.lockedCount, Requested: len(wanted), Max: card.MaxPicks}
	}
	if staleGameID != "" {
		return cardEditPlan{}, fmt.Errorf("%w: game %s", card.ErrStaleLockState, staleGameID)
	}

	kept := make(map[int]struct{}, len(wanted))
	for _, p := range editable {
		match := -1
		for i, w := range wanted {
			if _, used := kept[i]; !used && w.SameWager(p) {
				match = i
				break
			}
		}
		if match >= 0 {
			kept[match] = struct{}{}
			continue
		}
		plan.remove = append(plan.remove, p.ID)
	}
	for i, w := range wanted {
		if _, ok := kept[i]; ok {
			continue
		}
		plan.insert = append(plan.insert, w)
	}
	return plan, nil
}

// normalizePickInputs validates picks and applies toggles. Repeating the exact
// same wager toggles it; a different selection on the same slot is a
// duplicate selection.
func normalizePickInputs(inputs []PickInput) ([]card.Pick, error) {
	type slotState struct {
		pick  card.Pick
		count int
	}
	slots := make(map[string]*slotState, len(inputs))
	order := make([]string, 0, len(inputs))

	for _, in := range inputs {
		p := card.Pick{
			GameID:    strings.TrimSpace(in.GameID),
			Kind:      card.BetKind(strings.ToUpper(strings.TrimSpace(string(in.Kind)))),
			Selection: card.Selection(strings.ToUpper(strings.TrimSpace(string(in.Selection)))),
			Line:      in.Line,
		}
		if err := p.ValidateBasic(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		state, ok := slots[p.Slot()]
		if !ok {
			slots[p.Slot()] = &slotState{pick: p, count: 1}
			order = append(order, p.Slot())
			continue
		}
		if !state.pick.SameWager(p) {
			return nil, fmt.Errorf("%w: game %s has more than one %s pick", card.ErrDuplicateSelection, p.GameID, p.Kind)
		}
		state.count++
	}

	out := make([]card.Pick, 0, len(order))
	for _, slot := range order {
		state := slots[slot]
		if state.count%2 == 0 {
			continue
		}
		out = append(out, state.pick)
	}
	return out, nil
}

func uniqueGameIDs(picks []card.Pick) []string {
	seen := make(map[string]struct{}, len(picks))
	out := make([]string, 0, len(picks))
	for _, p := range picks {
		if _, ok := seen[p.GameID]; ok {
			continue
		}
		seen[p.GameID] = struct{}{}
		out = append(out, p.GameID)
	}
	return out
}
