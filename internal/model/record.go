package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// CurrentDatasetID 当前数据集在存储中的固定键
const CurrentDatasetID = "currentData"

// RawRecord 一行原始数据：表头列名 -> 单元格值（未经校验）
type RawRecord map[string]Value

// Columns 返回该行包含的列名（无序）
func (r RawRecord) Columns() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}

// NamedValue 非固定列（表头中额外出现的列）
type NamedValue struct {
	Name  string
	Value Value
}

// SalesRecord 校验通过并计算过 ComputedPrice 的销售明细
type SalesRecord struct {
	Cells         [ColumnCount]Value
	Extra         []NamedValue
	ComputedPrice float64
}

// Cell 读取固定列
func (r *SalesRecord) Cell(c Column) Value {
	if c < 0 || int(c) >= ColumnCount {
		return Value{}
	}
	return r.Cells[c]
}

// CustomerName 客户名称（缺失时为空字符串）
func (r *SalesRecord) CustomerName() string {
	return r.Cells[ColCustomerName].String()
}

// Get 按列名读取：固定列、Computed Price、额外列
func (r *SalesRecord) Get(name string) (Value, bool) {
	if c, ok := LookupColumn(name); ok {
		return r.Cells[c], true
	}
	if name == ComputedPriceColumn {
		return Number(r.ComputedPrice), true
	}
	for _, nv := range r.Extra {
		if nv.Name == name {
			return nv.Value, true
		}
	}
	return Value{}, false
}

// Each 按“固定列 -> 额外列 -> Computed Price”的顺序遍历所有字段
func (r *SalesRecord) Each(fn func(name string, v Value) bool) {
	for i, name := range Columns {
		if !fn(name, r.Cells[i]) {
			return
		}
	}
	for _, nv := range r.Extra {
		if !fn(nv.Name, nv.Value) {
			return
		}
	}
	fn(ComputedPriceColumn, Number(r.ComputedPrice))
}

// MarshalJSON 输出为 {列名: 值, ..., "Computed Price": n}，保持列顺序
func (r SalesRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	r.Each(func(name string, v Value) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		var key, val []byte
		if key, err = json.Marshal(name); err != nil {
			return false
		}
		if val, err = v.MarshalJSON(); err != nil {
			return false
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 逐 token 解析以保留额外列的顺序
func (r *SalesRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("sales record must be a JSON object")
	}

	*r = SalesRecord{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}

		if c, ok := LookupColumn(name); ok {
			r.Cells[c] = v
			continue
		}
		if name == ComputedPriceColumn {
			if v.Kind == KindNumber {
				r.ComputedPrice = v.Num
			} else if f, err := strconv.ParseFloat(v.Str, 64); err == nil {
				r.ComputedPrice = f
			}
			continue
		}
		r.Extra = append(r.Extra, NamedValue{Name: name, Value: v})
	}
	_, err = dec.Token()
	return err
}

// Dataset 持久化的当前数据集（整体写入、整体读取）
type Dataset struct {
	ID         string        `json:"id"`
	Version    string        `json:"version"`
	SourceFile string        `json:"sourceFile,omitempty"`
	SavedAt    time.Time     `json:"savedAt"`
	Records    []SalesRecord `json:"records"`
}

// Len 记录数（nil 安全）
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Clone 深拷贝（额外列切片独立）
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := *d
	if d.Records != nil {
		out.Records = make([]SalesRecord, len(d.Records))
		for i, rec := range d.Records {
			out.Records[i] = rec
			if rec.Extra != nil {
				out.Records[i].Extra = append([]NamedValue(nil), rec.Extra...)
			}
		}
	}
	return &out
}

// CustomerAggregate 按客户汇总结果，不持久化
type CustomerAggregate struct {
	CustomerName       string  `json:"customerName"`
	TotalComputedPrice float64 `json:"totalComputedPrice"`
	RecordCount        int     `json:"recordCount"`
}
