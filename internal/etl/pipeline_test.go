package etl

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/retaildwh/retail-etl/internal/source"
)

// sliceSource is an in-memory Source for tests.
type sliceSource struct {
	records []source.Record
	pos     int
}

func (s *sliceSource) Next() (source.Record, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

func (s *sliceSource) Close() error { return nil }

// memWriter captures written tables in write-completion order.
type memWriter struct {
	mu     sync.Mutex
	tables []Table
	failOn string
}

func (w *memWriter) WriteTable(ctx context.Context, table Table) (int64, error) {
	if w.failOn != "" && table.Name == w.failOn {
		return 0, errors.New("destination unavailable")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tables = append(w.tables, table)
	return int64(len(table.Rows)), nil
}

func (w *memWriter) table(name string) (Table, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

func row(invoice, customer, date, qty, price string) source.Record {
	return source.Record{
		"InvoiceNo":   invoice,
		"StockCode":   "SKU1",
		"Description": "MUG",
		"Quantity":    qty,
		"InvoiceDate": date,
		"UnitPrice":   price,
		"CustomerID":  customer,
		"Country":     "United Kingdom",
	}
}

func scenarioRecords() []source.Record {
	return []source.Record{
		row("INV1", "A", "2024-01-01", "2", "10.00"),
		row("INV2", "A", "2024-01-02", "-1", "10.00"),
		row("INV3", "B", "2024-01-01", "1", "5.00"),
	}
}

func runPipeline(t *testing.T, records []source.Record, writer Writer) *Report {
	t.Helper()
	p := &Pipeline{Writer: writer, Tables: DefaultTableNames()}
	report, err := p.Run(context.Background(), &sliceSource{records: records})
	if err != nil {
		t.Fatalf("Pipeline run failed: %v", err)
	}
	return report
}

func TestPipelineScenario(t *testing.T) {
	w := &memWriter{}
	report := runPipeline(t, scenarioRecords(), w)

	if report.RowsRead != 3 || report.Accepted != 3 || report.Rejected != 0 {
		t.Errorf("Expected 3/3/0, got read=%d accepted=%d rejected=%d",
			report.RowsRead, report.Accepted, report.Rejected)
	}

	customers, _ := w.table("DimCustomer")
	if len(customers.Rows) != 2 {
		t.Errorf("Expected 2 customer rows, got %d", len(customers.Rows))
	}

	dates, _ := w.table("DimDate")
	if len(dates.Rows) != 2 {
		t.Errorf("Expected 2 date rows, got %d", len(dates.Rows))
	}

	facts, ok := w.table("FactSales")
	if !ok {
		t.Fatal("Expected FactSales to be written")
	}
	if len(facts.Rows) != 3 {
		t.Fatalf("Expected 3 fact rows, got %d", len(facts.Rows))
	}

	revenueCol := len(facts.Columns) - 1
	want := []string{"20.00", "-10.00", "5.00"}
	for i, expected := range want {
		got, _ := facts.Rows[i][revenueCol].(string)
		if !decimal.RequireFromString(got).Equal(decimal.RequireFromString(expected)) {
			t.Errorf("Expected revenue %s for fact %d, got %s", expected, i, got)
		}
	}
}

func TestPipelineRejectsBadPrice(t *testing.T) {
	records := scenarioRecords()
	records = append(records, row("INV4", "C", "2024-01-03", "1", "N/A"))

	w := &memWriter{}
	report := runPipeline(t, records, w)

	if report.Rejected != 1 {
		t.Errorf("Expected rejected count 1, got %d", report.Rejected)
	}
	if report.RejectedByReason[ReasonNonNumeric] != 1 {
		t.Errorf("Expected reason %q tallied, got %v", ReasonNonNumeric, report.RejectedByReason)
	}

	// The rejected row must not leak into any table.
	customers, _ := w.table("DimCustomer")
	if len(customers.Rows) != 2 {
		t.Errorf("Expected rejected customer C excluded, got %d customer rows", len(customers.Rows))
	}
	dates, _ := w.table("DimDate")
	if len(dates.Rows) != 2 {
		t.Errorf("Expected rejected date excluded, got %d date rows", len(dates.Rows))
	}
	facts, _ := w.table("FactSales")
	if len(facts.Rows) != 3 {
		t.Errorf("Expected 3 fact rows, got %d", len(facts.Rows))
	}
}

func TestPipelineCountsBalance(t *testing.T) {
	records := scenarioRecords()
	records = append(records,
		row("INV4", "C", "bogus", "1", "1.00"),
		row("INV5", "D", "2024-01-03", "x", "1.00"),
	)

	report := runPipeline(t, records, &memWriter{})

	if report.Accepted+report.Rejected != report.RowsRead {
		t.Errorf("Expected accepted+rejected == read, got %d+%d != %d",
			report.Accepted, report.Rejected, report.RowsRead)
	}
}

func TestPipelineWritesFactsLast(t *testing.T) {
	w := &memWriter{}
	runPipeline(t, scenarioRecords(), w)

	if len(w.tables) != 4 {
		t.Fatalf("Expected 4 tables written, got %d", len(w.tables))
	}
	if last := w.tables[len(w.tables)-1].Name; last != "FactSales" {
		t.Errorf("Expected FactSales written last, got %s", last)
	}
}

func TestPipelineWriteFailureFailsRun(t *testing.T) {
	for _, failOn := range []string{"DimCustomer", "FactSales"} {
		w := &memWriter{failOn: failOn}
		p := &Pipeline{Writer: w, Tables: DefaultTableNames()}

		_, err := p.Run(context.Background(), &sliceSource{records: scenarioRecords()})
		if err == nil {
			t.Errorf("Expected run to fail when writing %s fails", failOn)
			continue
		}
		if !strings.Contains(err.Error(), "write phase") {
			t.Errorf("Expected write phase error, got: %v", err)
		}
	}
}

func TestPipelineReadFailureFailsRun(t *testing.T) {
	p := &Pipeline{Writer: &memWriter{}, Tables: DefaultTableNames()}
	_, err := p.Run(context.Background(), &failingSource{})
	if err == nil {
		t.Fatal("Expected run to fail on read error")
	}
	if !strings.Contains(err.Error(), "read phase") {
		t.Errorf("Expected read phase error, got: %v", err)
	}
}

type failingSource struct{}

func (*failingSource) Next() (source.Record, error) { return nil, errors.New("disk gone") }
func (*failingSource) Close() error                 { return nil }

func TestPipelineIsDeterministic(t *testing.T) {
	w1 := &memWriter{}
	w2 := &memWriter{}
	runPipeline(t, scenarioRecords(), w1)
	runPipeline(t, scenarioRecords(), w2)

	for _, name := range []string{"DimDate", "DimCustomer", "DimProduct", "FactSales"} {
		t1, _ := w1.table(name)
		t2, _ := w2.table(name)
		if len(t1.Rows) != len(t2.Rows) {
			t.Errorf("Table %s row counts differ: %d vs %d", name, len(t1.Rows), len(t2.Rows))
			continue
		}
		for i := range t1.Rows {
			for j := range t1.Rows[i] {
				if t1.Rows[i][j] != t2.Rows[i][j] {
					t.Errorf("Table %s row %d col %d differs: %v vs %v",
						name, i, j, t1.Rows[i][j], t2.Rows[i][j])
				}
			}
		}
	}
}

func TestPipelineEmptyInput(t *testing.T) {
	w := &memWriter{}
	report := runPipeline(t, nil, w)

	if report.RowsRead != 0 {
		t.Errorf("Expected 0 rows read, got %d", report.RowsRead)
	}
	// All four tables are still written, just empty.
	if len(w.tables) != 4 {
		t.Errorf("Expected 4 tables written, got %d", len(w.tables))
	}
}

func TestPipelineRowsWrittenReport(t *testing.T) {
	report := runPipeline(t, scenarioRecords(), &memWriter{})

	want := map[string]int64{
		"DimDate":     2,
		"DimCustomer": 2,
		"DimProduct":  1,
		"FactSales":   3,
	}
	for table, rows := range want {
		if report.RowsWritten[table] != rows {
			t.Errorf("Expected %d rows written to %s, got %d",
				rows, table, report.RowsWritten[table])
		}
	}
}

func TestVerifyIntegrityDetectsMissingDimension(t *testing.T) {
	dims := NewDimensionBuilder(Catalogs{})
	facts := []FactSale{{CustomerKey: 99, ProductKey: 1, DateKey: 20240101}}

	if err := verifyIntegrity(dims, facts); err == nil {
		t.Error("Expected integrity check to fail for dangling keys")
	}
}
