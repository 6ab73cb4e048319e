package query

import (
	"salesanalytics/internal/model"
	"salesanalytics/internal/util"
)

// DisplayColumns 明细表展示的列
var DisplayColumns = []string{
	"Customer Name",
	"Sales Doc No",
	"Sales Doc Date",
	"Item Name",
	"Quantity",
	"Unit Price",
	"Quantity x Price",
	model.ComputedPriceColumn,
	"CGST",
	"SGST",
	"IGST",
	"Document Total",
}

var currencyColumns = map[string]bool{
	model.ComputedPriceColumn: true,
	"Unit Price":              true,
	"Quantity x Price":        true,
	"Document Total":          true,
	"CGST":                    true,
	"SGST":                    true,
	"IGST":                    true,
}

// IsCurrencyColumn 是否按货币显示
func IsCurrencyColumn(column string) bool {
	return currencyColumns[column]
}

// FormatCell 单元格显示文本：货币列的数值加 ₹ 并按印度分组，其余原样
func FormatCell(column string, v model.Value) string {
	if v.Kind == model.KindNumber && IsCurrencyColumn(column) {
		return util.FormatRupees(v.Num)
	}
	return v.String()
}

// Project 按列取出一行的显示文本
func Project(rec *model.SalesRecord, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		v, _ := rec.Get(c)
		out[i] = FormatCell(c, v)
	}
	return out
}
