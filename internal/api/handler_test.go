package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"salesanalytics/internal/importer"
	"salesanalytics/internal/session"
	"salesanalytics/internal/store"
	"salesanalytics/internal/testkit"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	ctrl := session.New(st, importer.NewCoordinator(st, importer.NewExclusionSet("Self")))
	r := gin.New()
	NewHandler(ctrl, 0).RegisterRoutes(r.Group("/api"))
	return r, st
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// sseEvents 解析 data: {json} 行
func sseEvents(t *testing.T, body string) []importer.ProgressEvent {
	t.Helper()
	var events []importer.ProgressEvent
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var evt importer.ProgressEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt); err != nil {
			t.Fatalf("decode event %q: %v", line, err)
		}
		events = append(events, evt)
	}
	return events
}

func uploadSample(t *testing.T, r *gin.Engine) {
	t.Helper()
	rows := []testkit.Row{
		{"Customer Name": "Acme", "Quantity x Price": 1000, "Ex Rate": 2},
		{"Customer Name": "Globex", "Quantity x Price": 10},
		{"Customer Name": "Self", "Quantity x Price": 5},
	}
	for i := 0; i < 12; i++ {
		rows = append(rows, testkit.Row{"Customer Name": "Initech", "Quantity x Price": i + 1, "Item Name": "widget"})
	}
	buf, err := testkit.Workbook(testkit.FullHeader(), rows)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	w := serve(r, uploadRequest(t, "sales.xlsx", buf.Bytes()))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	events := sseEvents(t, w.Body.String())
	if len(events) == 0 {
		t.Fatalf("no events: %s", w.Body.String())
	}
	last := events[len(events)-1]
	if last.Type != importer.EventDone || last.Message != "Processed 14 records successfully" {
		t.Fatalf("unexpected final event: %+v", last)
	}
}

func TestStatus_Empty(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.HasData {
		t.Fatalf("expected no data: %+v", resp)
	}
}

func TestNoData_Returns404(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/api/analytics", "/api/records", "/api/table", "/api/records/export"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: unexpected status %d", path, w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if body["error"] != session.MsgNoData || body["code"] != "NOT_FOUND" {
			t.Fatalf("%s: unexpected body %v", path, body)
		}
	}
}

func TestUpload_ThenQuery(t *testing.T) {
	r, _ := newTestRouter(t)
	uploadSample(t, r)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var st StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !st.HasData || st.RecordCount != 14 || st.SourceFile != "sales.xlsx" {
		t.Fatalf("unexpected status: %+v", st)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/analytics?customer=Acme", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("analytics: %d %s", w.Code, w.Body.String())
	}
	var a session.Analytics
	if err := json.Unmarshal(w.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode analytics: %v", err)
	}
	if len(a.Customers) != 3 || a.Customers[0].CustomerName != "Acme" || a.Customers[0].TotalComputedPrice != 2000 {
		t.Fatalf("unexpected customers: %+v", a.Customers)
	}
	if a.FilteredCount != 1 {
		t.Fatalf("unexpected filtered count: %d", a.FilteredCount)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/records?search=WIDGET&sort=Quantity%20x%20Price&dir=desc&page=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("records: %d %s", w.Code, w.Body.String())
	}
	var rec RecordsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if rec.TotalCount != 12 || rec.Page != 2 || len(rec.Cells) != 2 {
		t.Fatalf("unexpected records page: total=%d page=%d cells=%d", rec.TotalCount, rec.Page, len(rec.Cells))
	}
	if rec.Showing != "Showing 11 to 12 of 12 records" {
		t.Fatalf("unexpected showing: %s", rec.Showing)
	}
}

func TestUpload_RejectsWrongExtension(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, uploadRequest(t, "sales.csv", []byte("a,b\n1,2\n")))
	events := sseEvents(t, w.Body.String())
	if len(events) == 0 {
		t.Fatalf("no events")
	}
	last := events[len(events)-1]
	if last.Type != importer.EventError || last.Message != "Please upload only .xlsx files" {
		t.Fatalf("unexpected final event: %+v", last)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	r, _ := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("dryRun", "true")
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := serve(r, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestTable_SessionFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	uploadSample(t, r)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/table", nil))
	sid := w.Header().Get(SessionHeader)
	if sid == "" {
		t.Fatalf("session id not issued")
	}

	post := func(path, body string) session.TableView {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SessionHeader, sid)
		w := serve(r, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", path, w.Code, w.Body.String())
		}
		var v session.TableView
		if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		return v
	}

	v := post("/api/table/page", `{"action":"next"}`)
	if v.State.Page != 2 || v.Showing != "Showing 11 to 14 of 14 records" {
		t.Fatalf("unexpected page: %+v %s", v.State, v.Showing)
	}

	v = post("/api/table/search", `{"search":"globex"}`)
	if v.State.Page != 1 || v.Result.TotalCount != 1 {
		t.Fatalf("unexpected search result: %+v total=%d", v.State, v.Result.TotalCount)
	}

	v = post("/api/table/search", `{"search":""}`)
	v = post("/api/table/sort", `{"column":"Computed Price"}`)
	v = post("/api/table/sort", `{"column":"Computed Price"}`)
	if v.State.Direction != "desc" || v.Result.Rows[0].ComputedPrice != 2000 {
		t.Fatalf("unexpected sort: %+v", v.State)
	}
	if v.Cells[0][7] != "₹2,000" {
		t.Fatalf("unexpected formatted cell: %q", v.Cells[0][7])
	}

	v = post("/api/table/customer", `{"customer":"Initech"}`)
	if v.Result.TotalCount != 12 {
		t.Fatalf("unexpected customer filter: %d", v.Result.TotalCount)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/table/page", strings.NewReader(`{"action":"jump"}`))
	req.Header.Set("Content-Type", "application/json")
	if w := serve(r, req); w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for bad action: %d", w.Code)
	}
}

func TestExportAndClear(t *testing.T) {
	r, st := newTestRouter(t)
	uploadSample(t, r)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/records/export?customer=Acme", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "-Acme.xlsx") {
		t.Fatalf("unexpected disposition: %s", w.Header().Get("Content-Disposition"))
	}
	if w.Body.Len() == 0 {
		t.Fatalf("empty export body")
	}

	w = serve(r, httptest.NewRequest(http.MethodDelete, "/api/dataset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("clear: %d", w.Code)
	}
	if ds, _ := st.Load(context.Background()); ds != nil {
		t.Fatalf("dataset should be cleared")
	}
}

func TestListImports_WithoutLogger(t *testing.T) {
	r, _ := newTestRouter(t)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/imports", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Fatalf("unexpected response: %d %s", w.Code, w.Body.String())
	}
}

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	got := sanitizeFileName("Acme Ltd/नई")
	if got != "Acme_Ltd___" {
		t.Fatalf("unexpected sanitized name: %s", got)
	}
}
