package query

import (
	"math"
	"strconv"
	"strings"

	"salesanalytics/internal/model"
)

// Compare 模拟宽松比较 a < b / a > b：
//   - 数值与数值按大小
//   - 文本与文本按字典序
//   - 文本与数值时文本先转数值（"" 为 0，无法转换视为 NaN）
//   - 任一方为空值或 NaN 时视为相等
//
// 返回 -1 / 0 / 1
func Compare(a, b model.Value) int {
	if a.Kind == model.KindEmpty || b.Kind == model.KindEmpty {
		return 0
	}
	if a.Kind == model.KindText && b.Kind == model.KindText {
		return strings.Compare(a.Str, b.Str)
	}

	x, y := toNumber(a), toNumber(b)
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return 0
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func toNumber(v model.Value) float64 {
	switch v.Kind {
	case model.KindNumber:
		return v.Num
	case model.KindText:
		return textToNumber(v.Str)
	default:
		return math.NaN()
	}
}

// textToNumber 整串转换：允许首尾空白、十六进制/八进制/二进制前缀、Infinity；空串为 0
func textToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil || strings.ContainsRune(s[2:], '_') {
				return math.NaN()
			}
			return float64(n)
		}
	}

	// 只接受十进制写法，排除 inf/nan/下划线/十六进制浮点等写法
	for _, r := range s {
		if !(r >= '0' && r <= '9') && !strings.ContainsRune("+-.eE", r) {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}
