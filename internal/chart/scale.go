// Package chart 客户收入柱状图的坐标轴选择与标签
package chart

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// Mode 坐标轴类型
type Mode string

const (
	ModeLinear      Mode = "linear"
	ModeLogarithmic Mode = "logarithmic"
)

// VarianceThreshold 最大值与最小值之比超过该值时改用对数轴
const VarianceThreshold = 100

var (
	headroom  = decimal.RequireFromString("1.1")
	floorHalf = decimal.RequireFromString("0.5")
)

// Scale 坐标轴选择结果，只有 LinearScale 与 LogScale 两种
type Scale interface {
	Mode() Mode
	Domain() (min, max float64)
	// Format 轴标签，按 Cr/L/K 缩写
	Format(v float64) string
	// Ticks 建议的刻度值
	Ticks() []float64
	isScale()
}

// LinearScale 线性轴，下限固定为 0
type LinearScale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// LogScale 对数轴
type LogScale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (LinearScale) Mode() Mode                   { return ModeLinear }
func (s LinearScale) Domain() (float64, float64) { return s.Min, s.Max }
func (LinearScale) Format(v float64) string      { return FormatAbbrev(v) }
func (LinearScale) isScale()                     {}

// Ticks 等分 5 段
func (s LinearScale) Ticks() []float64 {
	if s.Max <= s.Min {
		return []float64{s.Min}
	}
	const n = 5
	step := (s.Max - s.Min) / n
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, s.Min+step*float64(i))
	}
	return out
}

func (LogScale) Mode() Mode                   { return ModeLogarithmic }
func (s LogScale) Domain() (float64, float64) { return s.Min, s.Max }
func (LogScale) Format(v float64) string      { return FormatAbbrev(v) }
func (LogScale) isScale()                     {}

// Ticks 区间内的 10 的整数次幂，两端补上区间端点
func (s LogScale) Ticks() []float64 {
	out := []float64{s.Min}
	if s.Min <= 0 || s.Max <= s.Min {
		return out
	}
	for p := math.Ceil(math.Log10(s.Min)); ; p++ {
		v := math.Pow(10, p)
		if v >= s.Max {
			break
		}
		if v > s.Min {
			out = append(out, v)
		}
	}
	return append(out, s.Max)
}

// SelectScale 根据数值分布选择坐标轴
// variance = max / max(min, 1)；variance > 100 用对数轴 [max(1, min*0.5), max*1.1]，否则线性轴 [0, max*1.1]
// 只决定展示方式，不改变数值本身
// 非有限值（NaN、±Inf）不参与计算
func SelectScale(values []float64) Scale {
	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		return LinearScale{}
	}

	lo, err := data.Min()
	if err != nil {
		return LinearScale{}
	}
	hi, err := data.Max()
	if err != nil {
		return LinearScale{}
	}

	upper := math.Min(decimal.NewFromFloat(hi).Mul(headroom).InexactFloat64(), math.MaxFloat64)
	variance := hi / math.Max(lo, 1)

	if variance > VarianceThreshold {
		lower := decimal.NewFromFloat(lo).Mul(floorHalf).InexactFloat64()
		return LogScale{Min: math.Max(1, lower), Max: upper}
	}
	return LinearScale{Min: 0, Max: upper}
}
