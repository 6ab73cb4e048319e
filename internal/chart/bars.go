package chart

import (
	"salesanalytics/internal/model"
	"salesanalytics/internal/util"
)

// LabelLimit 柱标签最多显示的字符数
const LabelLimit = 20

// Palette 柱颜色（按序循环使用）
var Palette = [8]string{
	"hsl(var(--chart-1))",
	"hsl(var(--chart-2))",
	"hsl(var(--chart-3))",
	"hsl(var(--chart-4))",
	"hsl(var(--chart-5))",
	"hsl(var(--chart-6))",
	"hsl(var(--chart-7))",
	"hsl(var(--chart-8))",
}

// SelectedColor 选中客户的柱颜色
const SelectedColor = "hsl(var(--accent))"

// Bar 一根柱子
type Bar struct {
	Label    string  `json:"label"`
	FullName string  `json:"fullName"`
	Value    float64 `json:"value"`
	Count    int     `json:"count"`
	Revenue  string  `json:"revenue"` // 悬停提示中的金额
	Color    string  `json:"color"`
	Opacity  float64 `json:"opacity"`
	Selected bool    `json:"selected"`
}

// Bars 由客户汇总生成柱子；selected 非空时其余柱子半透明
func Bars(aggs []model.CustomerAggregate, selected string) []Bar {
	out := make([]Bar, len(aggs))
	for i, a := range aggs {
		b := Bar{
			Label:    TruncateLabel(a.CustomerName),
			FullName: a.CustomerName,
			Value:    a.TotalComputedPrice,
			Count:    a.RecordCount,
			Revenue:  CurrencySymbol + util.FormatINR(a.TotalComputedPrice, 3),
			Color:    Palette[i%len(Palette)],
			Opacity:  1,
		}
		if selected != "" {
			if a.CustomerName == selected {
				b.Selected = true
				b.Color = SelectedColor
			} else {
				b.Opacity = 0.3
			}
		}
		out[i] = b
	}
	return out
}

// TruncateLabel 超过 LabelLimit 个字符时截断并追加 "..."
func TruncateLabel(name string) string {
	r := []rune(name)
	if len(r) <= LabelLimit {
		return name
	}
	return string(r[:LabelLimit]) + "..."
}
