// Package quotes resolves a ticker to a current unit price. The
// concrete source sits behind an interface so the allocation engine and
// tests can swap in fakes, and so the price cache wraps any source.
package quotes

// Provider returns the latest traded price for a ticker. Callers must
// tolerate failure: price lookup is best-effort and the decision core
// has its own fallback.
type Provider interface {
	Price(ticker string) (float64, error)
}
