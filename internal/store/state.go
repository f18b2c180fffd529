package store

import (
	"fmt"
	"time"

	"fundpal/internal/models"
)

// ComputeState rebuilds the user's financial snapshot from the ledger
// as of now. Nothing here is cached between turns.
func (s *Store) ComputeState(userID string, now time.Time) (models.UserFinancialState, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return models.UserFinancialState{}, err
	}

	balance, err := s.Balance(userID)
	if err != nil {
		return models.UserFinancialState{}, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	categories, err := s.categorySpend(userID, monthStart, now)
	if err != nil {
		return models.UserFinancialState{}, err
	}

	income30, expense30, err := s.flowTotals(userID, now.AddDate(0, 0, -30), now)
	if err != nil {
		return models.UserFinancialState{}, err
	}
	_, expense7, err := s.flowTotals(userID, now.AddDate(0, 0, -7), now)
	if err != nil {
		return models.UserFinancialState{}, err
	}

	upcoming, bills7d, err := s.upcomingObligations(userID, now)
	if err != nil {
		return models.UserFinancialState{}, err
	}

	dailyEssential := profile.DailyEssential
	bal := balance.InexactFloat64()

	monthlyIncome := profile.MonthlyIncome
	if income30 > monthlyIncome {
		monthlyIncome = income30
	}

	savingsRate := 0.0
	if monthlyIncome > 0 {
		savingsRate = (monthlyIncome - expense30) / monthlyIncome * 100
		if savingsRate < 0 {
			savingsRate = 0
		}
	}

	emergencyMonths := 0.0
	if dailyEssential > 0 {
		emergencyMonths = bal / (dailyEssential * 30)
	}

	return models.UserFinancialState{
		CurrentBalance:         bal,
		DailyEssential:         dailyEssential,
		EmergencyFundMonths:    emergencyMonths,
		HasCreditCardDebt:      profile.HasCreditCardDebt,
		Categories:             categories,
		Upcoming:               upcoming,
		DaysElapsed:            now.Day(),
		DaysInPeriod:           nextMonth.Add(-time.Second).Day(),
		MonthlyIncome:          monthlyIncome,
		Avg7DayExpense:         expense7 / 7,
		PredictedIncome7d:      monthlyIncome / 30 * 7,
		UpcomingBills7d:        bills7d,
		AvailableForObligation: bal,
		SavingsRate:            savingsRate,
		IncomeStability:        incomeStability(profile.IncomeType),
	}, nil
}

// categorySpend joins month-to-date expense totals with any budgets
// the user has set. Budgeted categories with no spend still appear.
func (s *Store) categorySpend(userID string, from, to time.Time) (map[string]models.CategoryBudget, error) {
	out := map[string]models.CategoryBudget{}

	rows, err := s.db.Query(`
		SELECT category, SUM(CAST(amount AS REAL))
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND date >= ? AND date < ?
		GROUP BY category`,
		userID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("category spend: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var spent float64
		if err := rows.Scan(&category, &spent); err != nil {
			return nil, err
		}
		out[category] = models.CategoryBudget{Spent: spent}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	budgets, err := s.db.Query(`SELECT category, monthly_budget FROM budgets WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("budgets: %w", err)
	}
	defer budgets.Close()
	for budgets.Next() {
		var category string
		var budget float64
		if err := budgets.Scan(&category, &budget); err != nil {
			return nil, err
		}
		cb := out[category]
		cb.Budget = budget
		out[category] = cb
	}
	return out, budgets.Err()
}

// flowTotals sums income and expense amounts in [from, to).
func (s *Store) flowTotals(userID string, from, to time.Time) (income, expense float64, err error) {
	rows, err := s.db.Query(`
		SELECT type, SUM(CAST(amount AS REAL))
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date < ?
		GROUP BY type`,
		userID, from.Unix(), to.Unix())
	if err != nil {
		return 0, 0, fmt.Errorf("flow totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var txType string
		var total float64
		if err := rows.Scan(&txType, &total); err != nil {
			return 0, 0, err
		}
		switch txType {
		case "income":
			income = total
		case "expense":
			expense = total
		}
	}
	return income, expense, rows.Err()
}

// upcomingObligations returns obligations due in the next 30 days and
// the total due inside 7.
func (s *Store) upcomingObligations(userID string, now time.Time) ([]models.Obligation, float64, error) {
	rows, err := s.db.Query(`
		SELECT name, amount, due_date
		FROM obligations
		WHERE user_id = ? AND due_date >= ? AND due_date < ?
		ORDER BY due_date`,
		userID, now.Unix(), now.AddDate(0, 0, 30).Unix())
	if err != nil {
		return nil, 0, fmt.Errorf("obligations: %w", err)
	}
	defer rows.Close()

	var out []models.Obligation
	var bills7d float64
	for rows.Next() {
		var ob models.Obligation
		var due int64
		if err := rows.Scan(&ob.Name, &ob.Amount, &due); err != nil {
			return nil, 0, err
		}
		ob.DaysUntil = int(time.Unix(due, 0).Sub(now).Hours() / 24)
		if ob.DaysUntil <= 7 {
			bills7d += ob.Amount
		}
		out = append(out, ob)
	}
	return out, bills7d, rows.Err()
}

func incomeStability(t models.IncomeType) float64 {
	switch t {
	case models.IncomeSalaried:
		return 90
	case models.IncomeBusiness:
		return 70
	case models.IncomeGig:
		return 50
	}
	return 70
}
