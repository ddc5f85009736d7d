package universe

import "strings"

// Ticker is one instrument in the analysis universe
type Ticker struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name,omitempty"`
	AddedAt string `json:"added_at,omitempty"`
}

// NormalizeSymbol canonicalizes a ticker symbol the way user-facing
// surfaces accept it: trimmed and upper-cased
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// DefaultSymbols seeds an empty universe. A cross-sector slice of large-cap
// US tickers, enough for the correlation network to form meaningful
// communities out of the box.
var DefaultSymbols = []string{
	"AAPL", "MSFT", "AMZN", "GOOGL", "META", "TSLA", "NVDA", "AVGO", "AMD", "INTC",
	"QCOM", "TXN", "ADBE", "CRM", "ORCL", "IBM", "CSCO", "NOW", "INTU", "ADI",
	"JPM", "BAC", "WFC", "GS", "BLK", "SCHW", "V", "MA", "PYPL", "AXP",
	"UNH", "JNJ", "PFE", "ABBV", "MRK", "TMO", "ABT", "AMGN", "GILD", "BMY",
	"XOM", "CVX", "COP", "SLB", "OKE", "KMI",
	"WMT", "PG", "KO", "PEP", "COST", "MCD", "NKE", "SBUX", "TGT", "HD",
	"CAT", "DE", "HON", "GE", "UPS", "FDX", "UNP", "CSX", "RTX", "LMT",
	"NEE", "DUK", "SO", "AEP", "EXC",
	"AMT", "PLD", "EQIX", "PSA",
	"DIS", "NFLX", "CMCSA", "T", "VZ",
}
