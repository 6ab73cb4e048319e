package chart

import (
	"math"

	"github.com/shopspring/decimal"
)

// CurrencySymbol 货币符号
const CurrencySymbol = "₹"

var abbreviations = []struct {
	threshold decimal.Decimal
	suffix    string
}{
	{decimal.New(1, 7), "Cr"}, // 千万
	{decimal.New(1, 5), "L"},  // 十万
	{decimal.New(1, 3), "K"},
}

// FormatAbbrev 坐标轴金额缩写：>=1e7 为 Cr，>=1e5 为 L，>=1e3 为 K（一位小数），否则截断为整数
func FormatAbbrev(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return CurrencySymbol + "0"
	}
	d := decimal.NewFromFloat(v)
	for _, a := range abbreviations {
		if d.GreaterThanOrEqual(a.threshold) {
			return CurrencySymbol + d.Div(a.threshold).StringFixed(1) + a.suffix
		}
	}
	return CurrencySymbol + d.Truncate(0).String()
}
