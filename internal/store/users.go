package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fundpal/internal/models"
)

// ErrUnknownUser is returned when no profile row exists.
var ErrUnknownUser = errors.New("unknown user")

// SaveProfile inserts or replaces a user's profile.
func (s *Store) SaveProfile(p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	debt := 0
	if p.HasCreditCardDebt {
		debt = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO users (user_id, age_bracket, risk_tolerance, income_type, literacy_level,
			monthly_income, monthly_rent, monthly_emi, monthly_surplus, daily_essential, has_credit_card_debt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			age_bracket=excluded.age_bracket,
			risk_tolerance=excluded.risk_tolerance,
			income_type=excluded.income_type,
			literacy_level=excluded.literacy_level,
			monthly_income=excluded.monthly_income,
			monthly_rent=excluded.monthly_rent,
			monthly_emi=excluded.monthly_emi,
			monthly_surplus=excluded.monthly_surplus,
			daily_essential=excluded.daily_essential,
			has_credit_card_debt=excluded.has_credit_card_debt`,
		p.UserID, string(p.AgeBracket), string(p.RiskTolerance), string(p.IncomeType), p.LiteracyLevel,
		p.MonthlyIncome, p.MonthlyRent, p.MonthlyEMI, p.MonthlySurplus, p.DailyEssential, debt)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// GetProfile loads a profile by user id.
func (s *Store) GetProfile(userID string) (models.UserProfile, error) {
	var p models.UserProfile
	var bracket, risk, income string
	var debt int

	err := s.db.QueryRow(`
		SELECT user_id, age_bracket, risk_tolerance, income_type, literacy_level,
			monthly_income, monthly_rent, monthly_emi, monthly_surplus, daily_essential, has_credit_card_debt
		FROM users WHERE user_id = ?`, userID).
		Scan(&p.UserID, &bracket, &risk, &income, &p.LiteracyLevel,
			&p.MonthlyIncome, &p.MonthlyRent, &p.MonthlyEMI, &p.MonthlySurplus, &p.DailyEssential, &debt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrUnknownUser
	}
	if err != nil {
		return p, fmt.Errorf("get profile: %w", err)
	}

	p.AgeBracket = models.AgeBracket(bracket)
	p.RiskTolerance = models.RiskTolerance(risk)
	p.IncomeType = models.IncomeType(income)
	p.HasCreditCardDebt = debt != 0
	return p, nil
}

// ListUserIDs returns every known user, for the daily digest sweep.
func (s *Store) ListUserIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetBudget sets the monthly budget for one category.
func (s *Store) SetBudget(userID, category string, monthlyBudget float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO budgets (user_id, category, monthly_budget) VALUES (?, ?, ?)
		ON CONFLICT(user_id, category) DO UPDATE SET monthly_budget=excluded.monthly_budget`,
		userID, category, monthlyBudget)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

// AddObligation registers an upcoming payment.
func (s *Store) AddObligation(userID, name string, amount float64, dueDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO obligations (user_id, name, amount, due_date) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, name) DO UPDATE SET amount=excluded.amount, due_date=excluded.due_date`,
		userID, name, amount, dueDate.Unix())
	if err != nil {
		return fmt.Errorf("add obligation: %w", err)
	}
	return nil
}

// RecordSafety appends one row to the audit trail. Implements the
// safety gate's AuditSink.
func (s *Store) RecordSafety(userID string, result models.SafetyCheckResult, context string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	safe := 0
	if result.IsSafe {
		safe = 1
	}
	warnings, _ := json.Marshal(result.WarningsAdded)

	_, err := s.db.Exec(`
		INSERT INTO safety_log (user_id, timestamp, is_safe, warnings, blocked, context)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, time.Now().Unix(), safe, string(warnings), result.BlockedReason, context)
	if err != nil {
		return fmt.Errorf("record safety: %w", err)
	}
	return nil
}

// SafetyLogCount reports audit rows for a user, newest window only
// being a presentation concern.
func (s *Store) SafetyLogCount(userID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM safety_log WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

// normalizeCategory keeps ledger categories comparable regardless of
// the interpreter's capitalization.
func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return "Other"
	}
	return strings.ToUpper(category[:1]) + strings.ToLower(category[1:])
}
