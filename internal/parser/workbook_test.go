package parser

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"salesanalytics/internal/model"
	"salesanalytics/internal/testkit"
)

func TestReadFirstSheet_ReadsOnlyFirstSheet(t *testing.T) {
	t.Parallel()

	buf, err := testkit.Workbook(testkit.FullHeader(), []testkit.Row{
		{"Customer Name": "Acme", "Quantity x Price": 1200.5, "Ex Rate": 1},
		{"Customer Name": "Globex", "Quantity x Price": "n/a"},
	}, "Notes")
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	sheet, err := ReadFirstSheet(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(sheet.Headers) != model.ColumnCount {
		t.Fatalf("unexpected header count: %d", len(sheet.Headers))
	}
	if len(sheet.Records) != 2 {
		t.Fatalf("unexpected record count: %d", len(sheet.Records))
	}

	first := sheet.Records[0]
	if v := first["Quantity x Price"]; v.Kind != model.KindNumber || v.Num != 1200.5 {
		t.Fatalf("unexpected Quantity x Price: %+v", v)
	}
	if v := first["Customer Name"]; v.String() != "Acme" {
		t.Fatalf("unexpected customer: %+v", v)
	}
	if v, ok := first["Sales Org"]; !ok || !v.IsEmpty() {
		t.Fatalf("blank cell should be present and empty: %+v %v", v, ok)
	}
	if v := sheet.Records[1]["Quantity x Price"]; v.Kind != model.KindText || v.Str != "n/a" {
		t.Fatalf("text cell should stay text: %+v", v)
	}
}

func TestReadFirstSheet_TextCellsKeepExactString(t *testing.T) {
	t.Parallel()

	buf, err := testkit.Workbook(testkit.FullHeader(), []testkit.Row{{
		"Customer Name":    "12345678901234567890",
		"Item Name":        "12.50",
		"Sales Org":        "007",
		"Quantity x Price": 12.5,
		"Ex Rate":          true,
	}})
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	sheet, err := ReadFirstSheet(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	rec := sheet.Records[0]

	for col, want := range map[string]string{
		"Customer Name": "12345678901234567890",
		"Item Name":     "12.50",
		"Sales Org":     "007",
	} {
		if v := rec[col]; v.Kind != model.KindText || v.Str != want {
			t.Fatalf("%s: text cell changed: %+v", col, v)
		}
	}
	if v := rec["Quantity x Price"]; v.Kind != model.KindNumber || v.Num != 12.5 {
		t.Fatalf("numeric cell should be a number: %+v", v)
	}
	if v := rec["Ex Rate"]; v.Kind != model.KindText || v.Str != "true" {
		t.Fatalf("boolean cell: %+v", v)
	}
}

func TestTypedCell(t *testing.T) {
	t.Parallel()

	cases := []struct {
		typ  excelize.CellType
		raw  string
		want model.Value
	}{
		{excelize.CellTypeNumber, "1.0", model.Number(1)},
		{excelize.CellTypeUnset, "-3", model.Number(-3)},
		{excelize.CellTypeUnset, "abc", model.Text("abc")},
		{excelize.CellTypeSharedString, "1.0", model.Text("1.0")},
		{excelize.CellTypeInlineString, "42", model.Text("42")},
		{excelize.CellTypeFormula, "99", model.Text("99")},
		{excelize.CellTypeBool, "0", model.Text("false")},
		{excelize.CellTypeDate, "2024-03-01T00:00:00Z", model.Text("2024-03-01T00:00:00Z")},
	}
	for _, c := range cases {
		if got := typedCell(c.typ, c.raw); got != c.want {
			t.Fatalf("typedCell(%v, %q) = %+v want %+v", c.typ, c.raw, got, c.want)
		}
	}
}

func TestReadFirstSheet_EmptySheet(t *testing.T) {
	t.Parallel()

	buf, err := testkit.Workbook(testkit.FullHeader(), nil)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	if _, err := ReadFirstSheet(buf); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("want ErrEmptyInput, got %v", err)
	}
}

func TestFromRows_SkipsBlankRowsAndNamesEmptyHeaders(t *testing.T) {
	t.Parallel()

	sheet, err := FromRows("Sheet1", [][]string{
		{"A", "", "A", ""},
		{"1", "x", "2"},
		{"", " ", ""},
		{"3"},
	})
	if err != nil {
		t.Fatalf("from rows: %v", err)
	}
	want := []string{"A", "__EMPTY", "A_1", "__EMPTY_1"}
	for i, h := range want {
		if sheet.Headers[i] != h {
			t.Fatalf("header %d: want %q got %q", i, h, sheet.Headers[i])
		}
	}
	if len(sheet.Records) != 2 {
		t.Fatalf("blank row should be skipped, got %d records", len(sheet.Records))
	}
	if v := sheet.Records[0]["A"]; v.Kind != model.KindText || v.Str != "1" {
		t.Fatalf("untyped cell should stay text: %+v", v)
	}
	if v := sheet.Records[1]["A_1"]; !v.IsEmpty() {
		t.Fatalf("short row should pad with empty values: %+v", v)
	}
}

func TestFromRows_HeaderOnly(t *testing.T) {
	t.Parallel()

	if _, err := FromRows("Sheet1", [][]string{{"A", "B"}}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("want ErrEmptyInput, got %v", err)
	}
	if _, err := FromRows("Sheet1", nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("want ErrEmptyInput for no rows, got %v", err)
	}
}
