package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fundpal/internal/models"
)

// SavedInvestment is one persisted line of an accepted allocation plan.
type SavedInvestment struct {
	ID         string
	UserID     string
	AssetClass string
	FundName   string
	Ticker     string
	Weight     float64
	UnitPrice  float64
	Status     string
	CreatedAt  time.Time
}

// SaveInvestments replaces the user's active plan with the given
// allocation. The previous plan's rows are marked replaced, not
// deleted, so history survives.
func (s *Store) SaveInvestments(userID string, plan models.AllocationPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save investments: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE investments SET status = 'replaced' WHERE user_id = ? AND status = 'active'`, userID); err != nil {
		return fmt.Errorf("retire plan: %w", err)
	}
	now := time.Now().Unix()
	for class, pick := range plan.Allocation {
		_, err := tx.Exec(`
			INSERT INTO investments (id, user_id, asset_class, fund_name, ticker, weight, unit_price, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 'active', ?)`,
			uuid.NewString(), userID, class, pick.Fund, pick.Ticker, pick.Weight, pick.UnitPrice, now)
		if err != nil {
			return fmt.Errorf("save investment line: %w", err)
		}
	}
	return tx.Commit()
}

// ActiveInvestments returns the user's current plan lines.
func (s *Store) ActiveInvestments(userID string) ([]SavedInvestment, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, asset_class, fund_name, ticker, weight, unit_price, status, created_at
		FROM investments WHERE user_id = ? AND status = 'active'
		ORDER BY weight DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	var out []SavedInvestment
	for rows.Next() {
		var inv SavedInvestment
		var created int64
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.AssetClass, &inv.FundName, &inv.Ticker,
			&inv.Weight, &inv.UnitPrice, &inv.Status, &created); err != nil {
			return nil, err
		}
		inv.CreatedAt = time.Unix(created, 0)
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Holdings returns the user's positions with quantity and average buy
// price. Pricing and PnL are the portfolio service's job.
func (s *Store) Holdings(userID string) ([]models.Holding, error) {
	rows, err := s.db.Query(`
		SELECT symbol, quantity, average_buy_price
		FROM holdings WHERE user_id = ?
		ORDER BY symbol`, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	defer rows.Close()

	var out []models.Holding
	for rows.Next() {
		var h models.Holding
		var qty, avg string
		if err := rows.Scan(&h.Symbol, &qty, &avg); err != nil {
			return nil, err
		}
		if h.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("bad quantity for %s: %w", h.Symbol, err)
		}
		if h.AvgBuyPrice, err = decimal.NewFromString(avg); err != nil {
			return nil, fmt.Errorf("bad avg price for %s: %w", h.Symbol, err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Holding returns one position, or a zero holding when the user has
// never bought the symbol.
func (s *Store) Holding(userID, symbol string) (models.Holding, error) {
	all, err := s.Holdings(userID)
	if err != nil {
		return models.Holding{}, err
	}
	for _, h := range all {
		if h.Symbol == symbol {
			return h, nil
		}
	}
	return models.Holding{Symbol: symbol, Quantity: decimal.Zero, AvgBuyPrice: decimal.Zero}, nil
}

// UpsertHolding writes one position. Zero quantity removes the row.
func (s *Store) UpsertHolding(userID string, h models.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.Quantity.IsZero() {
		_, err := s.db.Exec(`DELETE FROM holdings WHERE user_id = ? AND symbol = ?`, userID, h.Symbol)
		if err != nil {
			return fmt.Errorf("delete holding: %w", err)
		}
		return nil
	}
	_, err := s.db.Exec(`
		INSERT INTO holdings (user_id, symbol, quantity, average_buy_price, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, symbol) DO UPDATE SET
			quantity=excluded.quantity,
			average_buy_price=excluded.average_buy_price,
			updated_at=excluded.updated_at`,
		userID, h.Symbol, h.Quantity.String(), h.AvgBuyPrice.String(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert holding: %w", err)
	}
	return nil
}
