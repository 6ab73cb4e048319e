package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind 单元格值类型
type ValueKind uint8

const (
	KindEmpty  ValueKind = iota // 空单元格 / 缺失列
	KindNumber                  // 数值
	KindText                    // 文本
)

// Value 单元格标量值（数值、文本或空）
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Number 构造数值
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Kind: KindNumber, Num: f}
}

// Text 构造文本
func Text(s string) Value {
	return Value{Kind: KindText, Str: s}
}

// IsEmpty 是否为空值
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// String 返回用于展示与搜索的字符串形式
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Str
	default:
		return ""
	}
}

// MarshalJSON 空值输出 null，数值输出 number，文本输出 string
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return []byte(strconv.FormatFloat(v.Num, 'f', -1, 64)), nil
	case KindText:
		return json.Marshal(v.Str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON 与 MarshalJSON 对称
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = Value{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*v = Text(string(data))
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid cell value %s: %w", data, err)
		}
		*v = Number(f)
	}
	return nil
}
