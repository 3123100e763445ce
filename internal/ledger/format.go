package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const DefaultCurrencySymbol = "R$"

func FormatAmount(symbol string, amount decimal.Decimal) string {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return fmt.Sprintf("%s %s", symbol, amount.StringFixed(2))
}
