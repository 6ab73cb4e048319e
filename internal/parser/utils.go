package parser

import (
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"salesanalytics/internal/model"
)

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber 宽松数值解析
// 数值单元格原样返回；文本去掉首尾空白后取最长的数字前缀（"12.5 kg" -> 12.5，"1,500" -> 1）
// 无法解析时 ok=false，由调用方决定默认值
func ParseNumber(v model.Value) (f float64, ok bool) {
	switch v.Kind {
	case model.KindNumber:
		return v.Num, true
	case model.KindText:
		return parseFloatPrefix(v.Str)
	default:
		return 0, false
	}
}

func parseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	m := numberPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CheckFileName 只接受 .xlsx 文件
func CheckFileName(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ErrInvalidFileType
	}
	return nil
}

// headerName 处理空表头与重复表头：空表头命名为 __EMPTY、__EMPTY_1 ...，重复表头追加 _1、_2 ...
func headerName(raw string, seen map[string]int) string {
	base := raw
	if base == "" {
		base = "__EMPTY"
	}
	n, dup := seen[base]
	seen[base] = n + 1
	if !dup {
		return base
	}
	for {
		candidate := base + "_" + strconv.Itoa(n)
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}
		n++
	}
}
