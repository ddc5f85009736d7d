package yahoo

// ClosingPrice is one daily close for a symbol.
// Close is NaN when Yahoo reported the trading date but no price.
type ClosingPrice struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}
