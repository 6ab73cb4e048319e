package util

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var indiaTag = language.MustParse("en-IN")

// FormatINR 按印度数字分组格式化（1,23,45,678.9），最多保留 maxFrac 位小数
func FormatINR(value float64, maxFrac int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}
	p := message.NewPrinter(indiaTag)
	return p.Sprint(number.Decimal(value, number.MaxFractionDigits(maxFrac)))
}

// FormatRupees 货币列显示：₹ + 分组数字，最多两位小数
func FormatRupees(value float64) string {
	return "₹" + FormatINR(value, 2)
}

// FormatCount 整数计数（四舍五入后分组）
func FormatCount(value float64) string {
	return FormatINR(math.Round(value), 0)
}
