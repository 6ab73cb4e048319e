package session

import (
	"context"

	"salesanalytics/internal/calculator"
	"salesanalytics/internal/chart"
	"salesanalytics/internal/model"
)

// Tick 坐标轴刻度
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// ScaleView 图表纵轴
type ScaleView struct {
	Mode   chart.Mode `json:"mode"`
	Domain [2]float64 `json:"domain"`
	Ticks  []Tick     `json:"ticks"`
}

// Analytics 汇总页数据
type Analytics struct {
	Summary          calculator.Summary        `json:"summary"`
	Indicators       []calculator.Indicator    `json:"indicators"`
	Customers        []model.CustomerAggregate `json:"customers"`
	Scale            ScaleView                 `json:"scale"`
	Bars             []chart.Bar               `json:"bars"`
	SelectedCustomer string                    `json:"selectedCustomer,omitempty"`
	FilteredCount    int                       `json:"filteredCount"`
}

// Analytics 汇总、图表纵轴与柱子；customer 只影响高亮和筛选计数
func (c *Controller) Analytics(ctx context.Context, customer string) (*Analytics, error) {
	ds, err := c.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	aggs := calculator.Aggregate(ds.Records)
	summary := calculator.Summarize(aggs)

	filtered := ds.Len()
	if customer != "" {
		filtered = 0
		if a, ok := calculator.Find(aggs, customer); ok {
			filtered = a.RecordCount
		}
	}

	return &Analytics{
		Summary:          summary,
		Indicators:       summary.Indicators(),
		Customers:        aggs,
		Scale:            scaleView(aggs),
		Bars:             chart.Bars(aggs, customer),
		SelectedCustomer: customer,
		FilteredCount:    filtered,
	}, nil
}

func scaleView(aggs []model.CustomerAggregate) ScaleView {
	values := make([]float64, len(aggs))
	for i, a := range aggs {
		values[i] = a.TotalComputedPrice
	}
	s := chart.SelectScale(values)

	lo, hi := s.Domain()
	ticks := s.Ticks()
	out := ScaleView{Mode: s.Mode(), Domain: [2]float64{lo, hi}, Ticks: make([]Tick, len(ticks))}
	for i, t := range ticks {
		out.Ticks[i] = Tick{Value: t, Label: s.Format(t)}
	}
	return out
}
