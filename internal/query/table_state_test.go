package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"salesanalytics/internal/model"
)

func TestTableState_ToggleSort(t *testing.T) {
	t.Parallel()

	s := NewTableState()
	s.ToggleSort("Quantity")
	assert.Equal(t, "Quantity", s.SortColumn)
	assert.Equal(t, Asc, s.Direction)

	s.ToggleSort("Quantity")
	assert.Equal(t, Desc, s.Direction)

	s.ToggleSort(model.ComputedPriceColumn)
	assert.Equal(t, model.ComputedPriceColumn, s.SortColumn)
	assert.Equal(t, Asc, s.Direction)
}

func TestTableState_SearchResetsPageButSortDoesNot(t *testing.T) {
	t.Parallel()

	s := NewTableState()
	s.SetPage(3)
	s.ToggleSort("Quantity")
	assert.Equal(t, 3, s.Page)

	s.SetSearch("abc")
	assert.Equal(t, 1, s.Page)

	s.Next()
	s.Next()
	s.SetCustomer("Acme")
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, Request{Customer: "Acme", Search: "abc", SortColumn: "Quantity", Direction: Asc, Page: 1}, s.Request())
}

func TestTableState_NextPrevAndSync(t *testing.T) {
	t.Parallel()

	s := NewTableState()
	s.Prev()
	assert.Equal(t, 1, s.Page)

	for i := 0; i < 5; i++ {
		s.Next()
	}
	res := Run(dataset(25), s.Request())
	s.Sync(res)
	assert.Equal(t, 3, s.Page)

	s.SetPage(0)
	assert.Equal(t, 1, s.Page)
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "₹1,23,456.75", FormatCell("Document Total", model.Number(123456.75)))
	assert.Equal(t, "1500", FormatCell("Quantity", model.Number(1500)))
	assert.Equal(t, "n/a", FormatCell("CGST", model.Text("n/a")))
	assert.Equal(t, "", FormatCell("IGST", model.Value{}))
	assert.Len(t, DisplayColumns, 12)
	assert.True(t, IsCurrencyColumn(model.ComputedPriceColumn))
	assert.False(t, IsCurrencyColumn("Customer Name"))
}
