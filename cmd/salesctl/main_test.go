package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"salesanalytics/internal/testkit"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSalesctl_ImportAndInspect(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[data]\ndata_dir = \""+filepath.ToSlash(dir)+"\"\n\n[store]\ndriver = \"file\"\n\n[ingest]\nexclude_customers = [\"Self\"]\nmax_upload_mb = 5\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	buf, err := testkit.Workbook(testkit.FullHeader(), []testkit.Row{
		{"Customer Name": "Acme", "Quantity x Price": 1000, "Ex Rate": 2},
		{"Customer Name": "Globex", "Quantity x Price": 10},
		{"Customer Name": "Self", "Quantity x Price": 99},
	})
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	xlsx := filepath.Join(dir, "sales.xlsx")
	if err := os.WriteFile(xlsx, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	out, err := run(t, "--config", cfgPath, "import", xlsx)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Processed 2 records successfully") {
		t.Fatalf("unexpected import output:\n%s", out)
	}

	out, err = run(t, "--config", cfgPath, "status")
	if err != nil || !strings.Contains(out, "Source:  sales.xlsx") {
		t.Fatalf("unexpected status: %v\n%s", err, out)
	}

	out, err = run(t, "--config", cfgPath, "customers", "--top", "1")
	if err != nil {
		t.Fatalf("customers: %v", err)
	}
	if !strings.Contains(out, "Acme") || strings.Contains(out, "Globex") {
		t.Fatalf("unexpected customers output:\n%s", out)
	}

	out, err = run(t, "--config", cfgPath, "records", "--search", "glob")
	if err != nil || !strings.Contains(out, "Showing 1 to 1 of 1 records") {
		t.Fatalf("unexpected records output: %v\n%s", err, out)
	}

	exported := filepath.Join(dir, "acme.xlsx")
	out, err = run(t, "--config", cfgPath, "export", "--customer", "Acme", "-o", exported)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[export] 100% done (1/1 rows)") || !strings.Contains(out, "Exported 1 records to") {
		t.Fatalf("unexpected export output:\n%s", out)
	}
	wb, err := excelize.OpenFile(exported)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	rows, err := wb.GetRows("Records")
	_ = wb.Close()
	if err != nil || len(rows) != 2 || rows[1][0] != "Acme" {
		t.Fatalf("unexpected exported rows: %v %v", err, rows)
	}

	if _, err := run(t, "--config", cfgPath, "clear"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	_, err = run(t, "--config", cfgPath, "records")
	if err == nil || !strings.Contains(err.Error(), "No data available") {
		t.Fatalf("expected no-data error, got %v", err)
	}
}

func TestSalesctl_ImportRejectsCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(path, []byte("a,b\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := run(t, "--driver", "memory", "--data-dir", dir, "import", path)
	if err == nil || !strings.Contains(err.Error(), "Please upload only .xlsx files") {
		t.Fatalf("unexpected error: %v", err)
	}
}
