package exporter

import (
	"bytes"
	"io"
	"testing"

	"github.com/xuri/excelize/v2"

	"salesanalytics/internal/model"
	"salesanalytics/internal/testkit"
)

func TestWriteTo_RecordsAndCustomers(t *testing.T) {
	t.Parallel()

	records := []model.SalesRecord{
		testkit.Record("Acme", 1500.5, map[string]model.Value{"Item Name": model.Text("Panel")}),
		testkit.Record("Globex", 20, nil),
	}
	aggs := []model.CustomerAggregate{
		{CustomerName: "Acme", TotalComputedPrice: 1500.5, RecordCount: 1},
		{CustomerName: "Globex", TotalComputedPrice: 20, RecordCount: 1},
	}

	var events []ProgressEvent
	var buf bytes.Buffer
	err := WriteTo(&buf, ExportOptions{
		Records:   records,
		Columns:   []string{"Customer Name", "Item Name", "Computed Price"},
		Customers: aggs,
		Progress:  func(p ProgressEvent) { events = append(events, p) },
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != RecordsSheet || got[1] != CustomersSheet {
		t.Fatalf("unexpected sheets: %v", got)
	}

	rows, err := f.GetRows(RecordsSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("unexpected row count: %d", len(rows))
	}
	if rows[0][2] != "Computed Price" || rows[1][0] != "Acme" || rows[1][1] != "Panel" || rows[1][2] != "1500.5" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if len(rows[2]) != 3 || rows[2][1] != "" {
		t.Fatalf("empty item name should stay blank: %v", rows[2])
	}

	customers, err := f.GetRows(CustomersSheet)
	if err != nil {
		t.Fatalf("customer rows: %v", err)
	}
	if len(customers) != 3 || customers[2][0] != "Globex" || customers[2][2] != "1" {
		t.Fatalf("unexpected customers: %v", customers)
	}

	if len(events) == 0 || events[len(events)-1].Percent != 100 {
		t.Fatalf("missing final progress: %+v", events)
	}
}

func TestExport_ProgressCountsRows(t *testing.T) {
	t.Parallel()

	records := make([]model.SalesRecord, 25)
	for i := range records {
		records[i] = testkit.Record("Acme", float64(i), nil)
	}

	var events []ProgressEvent
	if err := WriteTo(io.Discard, ExportOptions{
		Records:  records,
		Progress: func(p ProgressEvent) { events = append(events, p) },
	}); err != nil {
		t.Fatalf("export: %v", err)
	}

	if len(events) < 3 {
		t.Fatalf("too few progress events: %+v", events)
	}
	first, last := events[0], events[len(events)-1]
	if first.Stage != StageRecords || first.Percent != 0 || first.Rows != 0 || first.Total != 25 {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if last.Stage != StageDone || last.Percent != 100 || last.Rows != 25 {
		t.Fatalf("unexpected last event: %+v", last)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Percent < events[i-1].Percent || events[i].Rows < events[i-1].Rows {
			t.Fatalf("progress went backwards at %d: %+v", i, events)
		}
		if events[i].Stage == StageRecords && events[i].Percent > 90 {
			t.Fatalf("records stage above 90%%: %+v", events[i])
		}
	}
	if got := last.String(); got != "100% done (25/25 rows)" {
		t.Fatalf("unexpected progress line: %q", got)
	}
}

func TestExport_ProgressWithoutRecords(t *testing.T) {
	t.Parallel()

	var events []ProgressEvent
	if err := WriteTo(io.Discard, ExportOptions{
		Progress: func(p ProgressEvent) { events = append(events, p) },
	}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(events) != 2 || events[1].Stage != StageDone || events[1].Total != 0 {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestExport_DefaultColumns(t *testing.T) {
	t.Parallel()

	f, err := Export(ExportOptions{Records: []model.SalesRecord{testkit.Record("Acme", 1, nil)}})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(RecordsSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows[0]) != model.ColumnCount+1 {
		t.Fatalf("unexpected header width: %d", len(rows[0]))
	}
	if len(f.GetSheetList()) != 1 {
		t.Fatalf("customers sheet should be omitted")
	}
}
