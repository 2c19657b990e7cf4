package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pick-league/internal/domain/card"
	qb "github.com/riskibarqy/pick-league/internal/platform/querybuilder"
)

type CardRepository struct {
	db *sqlx.DB
}

func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) GetByID(ctx context.Context, cardID string) (card.Card, bool, error) {
	return r.getOne(ctx, "get card by id", qb.Select(cardColumns).From("cards").
		Where(qb.Eq("public_id", cardID)))
}

func (r *CardRepository) GetByKey(ctx context.Context, key card.Key) (card.Card, bool, error) {
	return r.getOne(ctx, "get card by key", qb.Select(cardColumns).From("cards").
		Where(
			qb.Eq("user_id", key.UserID),
			qb.Eq("league_public_id", key.LeagueID),
			qb.Eq("week", key.Week),
			qb.Eq("year", key.Year),
		))
}

func (r *CardRepository) ListByLeague(ctx context.Context, leagueID string) ([]card.Card, error) {
	return r.listCards(ctx, "list cards by league", qb.Select(cardColumns).From("cards").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("public_id"))
}

func (r *CardRepository) ListByLeagueWeek(ctx context.Context, leagueID string, week, year int) ([]card.Card, error) {
	return r.listCards(ctx, "list cards by league week", qb.Select(cardColumns).From("cards").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("week", week),
			qb.Eq("year", year),
		).
		OrderBy("public_id"))
}

func (r *CardRepository) ListPicksByGames(ctx context.Context, gameIDs []string) ([]card.Pick, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	return listPicks(ctx, r.db, "list picks by games", qb.Select(pickColumns).From("picks").
		Where(qb.AnyText("game_public_id", gameIDs)).
		OrderBy("public_id"))
}

// SaveEdit runs the whole edit in one transaction. The card row is upserted
// first so concurrent edits of the same card serialize on it, then the games
// the edit touches are locked before guard runs.
func (r *CardRepository) SaveEdit(ctx context.Context, edit card.Edit, guard card.LockGuard) (card.Card, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return card.Card{}, fmt.Errorf("begin tx for card edit: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	cardID, err := upsertCardRow(ctx, tx, edit)
	if err != nil {
		return card.Card{}, err
	}

	current, err := listPicks(ctx, tx, "lock card picks", qb.Select(pickColumns).From("picks").
		Where(qb.Eq("card_public_id", cardID)).
		OrderBy("public_id").
		ForUpdate())
	if err != nil {
		return card.Card{}, err
	}

	if guard != nil {
		gameIDs := edit.GameIDs(current)
		if len(gameIDs) > 0 {
			locked, err := listGames(ctx, tx, "lock edit games", qb.Select(gameColumns).From("games").
				Where(qb.AnyText("public_id", gameIDs)).
				OrderBy("public_id").
				ForUpdate())
			if err != nil {
				return card.Card{}, err
			}
			if err := guard(locked); err != nil {
				return card.Card{}, err
			}
		}
	}

	if len(edit.Remove) > 0 {
		query, args, err := qb.DeleteFrom("picks").
			Where(
				qb.Eq("card_public_id", cardID),
				qb.AnyText("public_id", edit.Remove),
			).
			ToSQL()
		if err != nil {
			return card.Card{}, fmt.Errorf("build delete picks query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return card.Card{}, fmt.Errorf("delete picks card=%s: %w", cardID, err)
		}
	}

	if len(edit.Insert) > 0 {
		rows := make([]pickTableModel, 0, len(edit.Insert))
		for _, p := range edit.Insert {
			p.CardID = cardID
			rows = append(rows, pickRowFrom(p))
		}
		query, args, err := qb.InsertModels("picks", rows, "")
		if err != nil {
			return card.Card{}, fmt.Errorf("build insert picks query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return card.Card{}, fmt.Errorf("%w: pick slot already taken", card.ErrDuplicateSelection)
			}
			return card.Card{}, fmt.Errorf("insert picks card=%s: %w", cardID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return card.Card{}, fmt.Errorf("commit card edit tx: %w", err)
	}

	saved, ok, err := r.GetByID(ctx, cardID)
	if err != nil {
		return card.Card{}, err
	}
	if !ok {
		return card.Card{}, fmt.Errorf("card %s vanished after edit", cardID)
	}
	return saved, nil
}

func (r *CardRepository) UpdatePickResults(ctx context.Context, results []card.PickResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for pick results: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, res := range results {
		query, args, err := qb.Update("picks").
			Set("result", string(res.Result)).
			Set("graded_revision", res.GradedRevision).
			Set("graded_at", res.GradedAt.UTC()).
			Where(qb.Eq("public_id", res.PickID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update pick result query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update pick result pick=%s: %w", res.PickID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pick results tx: %w", err)
	}
	return nil
}

func (r *CardRepository) UpdateCardScore(ctx context.Context, cardID string, score int, updatedAt time.Time) error {
	query, args, err := qb.Update("cards").
		Set("total_score", score).
		Set("updated_at", updatedAt.UTC()).
		Where(qb.Eq("public_id", cardID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update card score query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update card score card=%s: %w", cardID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("card %s not found", cardID)
	}
	return nil
}

func (r *CardRepository) getOne(ctx context.Context, op string, builder *qb.SelectBuilder) (card.Card, bool, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return card.Card{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row cardTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return card.Card{}, false, nil
		}
		return card.Card{}, false, fmt.Errorf("%s: %w", op, err)
	}

	cards, err := r.attachPicks(ctx, []card.Card{cardFromRow(row)})
	if err != nil {
		return card.Card{}, false, err
	}
	return cards[0], true, nil
}

func (r *CardRepository) listCards(ctx context.Context, op string, builder *qb.SelectBuilder) ([]card.Card, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []cardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cards := make([]card.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, cardFromRow(row))
	}
	return r.attachPicks(ctx, cards)
}

// attachPicks loads picks for every card in one query.
func (r *CardRepository) attachPicks(ctx context.Context, cards []card.Card) ([]card.Card, error) {
	if len(cards) == 0 {
		return cards, nil
	}

	ids := make([]string, 0, len(cards))
	index := make(map[string]int, len(cards))
	for i, c := range cards {
		ids = append(ids, c.ID)
		index[c.ID] = i
		cards[i].Picks = []card.Pick{}
	}

	picks, err := listPicks(ctx, r.db, "list picks by cards", qb.Select(pickColumns).From("picks").
		Where(qb.AnyText("card_public_id", ids)).
		OrderBy("card_public_id", "public_id"))
	if err != nil {
		return nil, err
	}
	for _, p := range picks {
		i := index[p.CardID]
		cards[i].Picks = append(cards[i].Picks, p)
	}
	return cards, nil
}

func upsertCardRow(ctx context.Context, tx *sqlx.Tx, edit card.Edit) (string, error) {
	updatedAt := edit.UpdatedAt.UTC()
	query, args, err := qb.InsertInto("cards").
		Columns("public_id", "user_id", "league_public_id", "week", "year", "total_score", "created_at", "updated_at").
		Values(edit.CardID, edit.Key.UserID, edit.Key.LeagueID, edit.Key.Week, edit.Key.Year, 0, updatedAt, updatedAt).
		Suffix(`ON CONFLICT (user_id, league_public_id, week, year)
DO UPDATE SET updated_at = EXCLUDED.updated_at
RETURNING public_id`).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("build upsert card query: %w", err)
	}

	var cardID string
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&cardID); err != nil {
		return "", fmt.Errorf("upsert card key=%s: %w", edit.Key, err)
	}
	return cardID, nil
}

func listPicks(ctx context.Context, q sqlx.QueryerContext, op string, builder *qb.SelectBuilder) ([]card.Pick, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []pickTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]card.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}
	return out, nil
}
