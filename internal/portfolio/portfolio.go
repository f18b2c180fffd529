// Package portfolio tracks priceable positions bought through the
// assistant and values them against live quotes.
package portfolio

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fundpal/internal/models"
	"fundpal/internal/quotes"
	"fundpal/internal/store"
)

var (
	// ErrInsufficientBalance means the ledger cannot cover the buy.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientUnits means the user tried to sell more than held.
	ErrInsufficientUnits = errors.New("insufficient units")
)

// Service executes simulated buys and sells against the ledger and
// values holdings with the quote provider.
type Service struct {
	store  *store.Store
	quotes quotes.Provider
}

func NewService(st *store.Store, q quotes.Provider) *Service {
	return &Service{store: st, quotes: q}
}

// Summary is the valued portfolio returned to the presentation layer.
type Summary struct {
	Holdings      []models.Holding
	InvestedValue decimal.Decimal
	CurrentValue  decimal.Decimal
	TotalPnL      decimal.Decimal
}

// Get values every holding at the current quote. A failed quote for
// one symbol falls back to its average buy price so a flaky upstream
// never hides the position.
func (s *Service) Get(userID string) (Summary, error) {
	held, err := s.store.Holdings(userID)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		InvestedValue: decimal.Zero,
		CurrentValue:  decimal.Zero,
		TotalPnL:      decimal.Zero,
	}
	for _, h := range held {
		price := h.AvgBuyPrice
		if p, err := s.quotes.Price(h.Symbol); err == nil {
			price = decimal.NewFromFloat(p)
		}

		h.CurrentPrice = price
		h.InvestedValue = h.Quantity.Mul(h.AvgBuyPrice)
		h.CurrentValue = h.Quantity.Mul(price)
		h.PnL = h.CurrentValue.Sub(h.InvestedValue)
		if h.InvestedValue.IsPositive() {
			h.PnLPct = h.PnL.Div(h.InvestedValue).Mul(decimal.NewFromInt(100)).Round(2)
		}

		sum.InvestedValue = sum.InvestedValue.Add(h.InvestedValue)
		sum.CurrentValue = sum.CurrentValue.Add(h.CurrentValue)
		sum.TotalPnL = sum.TotalPnL.Add(h.PnL)
		sum.Holdings = append(sum.Holdings, h)
	}
	return sum, nil
}

// Buy spends amount on symbol at the current quote. The position's
// average buy price is the quantity-weighted mean across all buys,
// and the spend is logged as an Investment expense.
func (s *Service) Buy(userID, symbol string, amount decimal.Decimal) (models.Holding, error) {
	if !amount.IsPositive() {
		return models.Holding{}, fmt.Errorf("buy amount must be positive, got %s", amount)
	}

	balance, err := s.store.Balance(userID)
	if err != nil {
		return models.Holding{}, err
	}
	if balance.LessThan(amount) {
		return models.Holding{}, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, balance, amount)
	}

	p, err := s.quotes.Price(symbol)
	if err != nil {
		return models.Holding{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	price := decimal.NewFromFloat(p)
	units := amount.Div(price).Round(4)

	h, err := s.store.Holding(userID, symbol)
	if err != nil {
		return models.Holding{}, err
	}
	oldCost := h.Quantity.Mul(h.AvgBuyPrice)
	newQty := h.Quantity.Add(units)
	h.Quantity = newQty
	h.AvgBuyPrice = oldCost.Add(units.Mul(price)).Div(newQty).Round(4)

	if err := s.store.UpsertHolding(userID, h); err != nil {
		return models.Holding{}, err
	}
	if _, err := s.store.AddTransaction(userID, "expense", amount, "Investment",
		fmt.Sprintf("Bought %s units of %s @ %s", units, symbol, price), time.Now()); err != nil {
		return models.Holding{}, err
	}
	h.CurrentPrice = price
	return h, nil
}

// Sell liquidates units of symbol at the current quote and credits the
// proceeds back to the ledger. Average buy price is unchanged by sells.
func (s *Service) Sell(userID, symbol string, units decimal.Decimal) (models.Holding, error) {
	if !units.IsPositive() {
		return models.Holding{}, fmt.Errorf("sell units must be positive, got %s", units)
	}

	h, err := s.store.Holding(userID, symbol)
	if err != nil {
		return models.Holding{}, err
	}
	if h.Quantity.LessThan(units) {
		return models.Holding{}, fmt.Errorf("%w: hold %s of %s, tried to sell %s", ErrInsufficientUnits, h.Quantity, symbol, units)
	}

	p, err := s.quotes.Price(symbol)
	if err != nil {
		return models.Holding{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	price := decimal.NewFromFloat(p)
	proceeds := units.Mul(price).Round(2)

	h.Quantity = h.Quantity.Sub(units)
	if err := s.store.UpsertHolding(userID, h); err != nil {
		return models.Holding{}, err
	}
	if _, err := s.store.AddTransaction(userID, "income", proceeds, "Investment",
		fmt.Sprintf("Sold %s units of %s @ %s", units, symbol, price), time.Now()); err != nil {
		return models.Holding{}, err
	}
	h.CurrentPrice = price
	return h, nil
}
