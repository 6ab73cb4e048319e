package calculator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesanalytics/internal/importer"
	"salesanalytics/internal/model"
	"salesanalytics/internal/testkit"
)

func records() []model.SalesRecord {
	return []model.SalesRecord{
		testkit.Record("A", 0.1, nil),
		testkit.Record("B", 500, nil),
		testkit.Record("A", 0.2, nil),
		testkit.Record("C", 500, nil),
		testkit.Record("", 7, nil),
		testkit.Record("A", 1000, nil),
	}
}

func TestAggregate_SortsByTotalWithStableTies(t *testing.T) {
	t.Parallel()

	got := Aggregate(records())
	require.Len(t, got, 4)

	assert.Equal(t, "A", got[0].CustomerName)
	assert.Equal(t, 1000.3, got[0].TotalComputedPrice)
	assert.Equal(t, 3, got[0].RecordCount)

	// B 与 C 总额相同，B 先出现
	assert.Equal(t, "B", got[1].CustomerName)
	assert.Equal(t, "C", got[2].CustomerName)

	assert.Equal(t, "", got[3].CustomerName)
	assert.Equal(t, 1, got[3].RecordCount)
}

func TestAggregate_PermutationInvariant(t *testing.T) {
	t.Parallel()

	base := records()
	want := map[string]model.CustomerAggregate{}
	for _, a := range Aggregate(base) {
		want[a.CustomerName] = a
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.SalesRecord(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := Aggregate(shuffled)
		require.Len(t, got, len(want))
		for _, a := range got {
			assert.Equal(t, want[a.CustomerName], a)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Aggregate(nil))
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)
}

func TestAggregate_NonFiniteAndOverflow(t *testing.T) {
	t.Parallel()

	recs := []model.SalesRecord{
		testkit.Record("A", math.Inf(1), nil),
		testkit.Record("A", 10, nil),
		testkit.Record("B", math.NaN(), nil),
		testkit.Record("C", math.MaxFloat64, nil),
		testkit.Record("C", math.MaxFloat64, nil),
	}
	var got []model.CustomerAggregate
	require.NotPanics(t, func() { got = Aggregate(recs) })
	require.Len(t, got, 3)

	assert.Equal(t, "C", got[0].CustomerName)
	assert.Equal(t, math.MaxFloat64, got[0].TotalComputedPrice)
	assert.Equal(t, 2, got[0].RecordCount)

	assert.Equal(t, "A", got[1].CustomerName)
	assert.Equal(t, 10.0, got[1].TotalComputedPrice)
	assert.Equal(t, 2, got[1].RecordCount)

	assert.Equal(t, 0.0, got[2].TotalComputedPrice)

	s := Summarize(got)
	assert.False(t, math.IsInf(s.TotalRevenue, 0))
	assert.Equal(t, 5, s.TotalRecords)
}

func TestAggregate_RecordCountsMatchNormalizedRows(t *testing.T) {
	t.Parallel()

	raw := []model.RawRecord{
		{"Customer Name": model.Text("Acme"), "Quantity x Price": model.Number(100), "Ex Rate": model.Number(2)},
		{"Customer Name": model.Text("Internal"), "Quantity x Price": model.Number(50)},
		{"Customer Name": model.Text("Beta"), "Quantity x Price": model.Text("1e200"), "Ex Rate": model.Text("1e200")},
		{"Quantity x Price": model.Number(7)},
		{"Customer Name": model.Text("Acme"), "Quantity x Price": model.Text("n/a")},
		{"Customer Name": model.Text("Test Co"), "Quantity x Price": model.Number(1)},
		{"Customer Name": model.Text("Beta"), "Quantity x Price": model.Number(3)},
	}
	excl := importer.NewExclusionSet("Internal", "Test Co")

	normalized := importer.Normalize(raw, excl)
	require.Len(t, normalized, 5)

	aggs := Aggregate(normalized)
	total := 0
	for _, a := range aggs {
		total += a.RecordCount
		assert.NotContains(t, []string{"Internal", "Test Co"}, a.CustomerName)
	}
	assert.Equal(t, len(normalized), total)
	assert.Equal(t, len(normalized), Summarize(aggs).TotalRecords)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	aggs := Aggregate(records())
	s := Summarize(aggs)
	assert.Equal(t, 4, s.TotalCustomers)
	assert.Equal(t, 6, s.TotalRecords)
	assert.InDelta(t, 2007.3, s.TotalRevenue, 1e-9)

	cards := s.Indicators()
	require.Len(t, cards, 3)
	assert.Equal(t, 2007.0, cards[0].Value)
	assert.Equal(t, 4.0, cards[1].Value)
	assert.Equal(t, 6.0, cards[2].Value)
}

func TestFilterByCustomer(t *testing.T) {
	t.Parallel()

	all := records()
	assert.Len(t, FilterByCustomer(all, ""), len(all))

	a := FilterByCustomer(all, "A")
	require.Len(t, a, 3)
	for _, r := range a {
		assert.Equal(t, "A", r.CustomerName())
	}
	assert.Empty(t, FilterByCustomer(all, "a"))
}

func TestTopAndFind(t *testing.T) {
	t.Parallel()

	aggs := Aggregate(records())
	assert.Len(t, Top(aggs, 2), 2)
	assert.Len(t, Top(aggs, 0), 4)
	assert.Len(t, Top(aggs, 10), 4)

	c, ok := Find(aggs, "C")
	require.True(t, ok)
	assert.Equal(t, 500.0, c.TotalComputedPrice)
	_, ok = Find(aggs, "Z")
	assert.False(t, ok)
}
