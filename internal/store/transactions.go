package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fundpal/internal/models"
)

// AddTransaction appends one ledger entry and returns it with the
// generated id filled in.
func (s *Store) AddTransaction(userID, txType string, amount decimal.Decimal, category, description string, date time.Time) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Category:    normalizeCategory(category),
		Description: description,
		Date:        date,
	}
	_, err := s.db.Exec(`
		INSERT INTO transactions (id, user_id, type, amount, category, description, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.UserID, txn.Type, txn.Amount.String(), txn.Category, txn.Description, txn.Date.Unix())
	if err != nil {
		return models.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	return txn, nil
}

// Transactions returns the user's ledger entries between from and to,
// newest first.
func (s *Store) Transactions(userID string, from, to time.Time) ([]models.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, type, amount, category, description, date
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date < ?
		ORDER BY date DESC`,
		userID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var amount string
		var unix int64
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &amount, &t.Category, &t.Description, &unix); err != nil {
			return nil, err
		}
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("bad amount in ledger row %s: %w", t.ID, err)
		}
		t.Date = time.Unix(unix, 0)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Balance sums the whole ledger: income minus expenses.
func (s *Store) Balance(userID string) (decimal.Decimal, error) {
	rows, err := s.db.Query(`SELECT type, amount FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance: %w", err)
	}
	defer rows.Close()

	balance := decimal.Zero
	for rows.Next() {
		var txType, amount string
		if err := rows.Scan(&txType, &amount); err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, err
		}
		if txType == "income" {
			balance = balance.Add(d)
		} else {
			balance = balance.Sub(d)
		}
	}
	return balance, rows.Err()
}
