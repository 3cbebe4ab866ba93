package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestOpenCSV(t *testing.T) {
	path := writeFile(t, "tx.csv",
		"InvoiceNo,Quantity,UnitPrice\nINV1,2,10.00\nINV2,1,5.00\n")

	src, err := Open(path, "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	records, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0]["InvoiceNo"] != "INV1" || records[0]["UnitPrice"] != "10.00" {
		t.Errorf("Unexpected first record: %v", records[0])
	}
	if records[1]["Quantity"] != "1" {
		t.Errorf("Unexpected second record: %v", records[1])
	}
}

func TestOpenCSVRaggedRows(t *testing.T) {
	// Short rows leave trailing columns absent rather than erroring.
	path := writeFile(t, "tx.csv", "A,B,C\n1,2\n")

	src, err := Open(path, "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	records, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if records[0]["A"] != "1" || records[0]["B"] != "2" {
		t.Errorf("Unexpected record: %v", records[0])
	}
	if _, ok := records[0]["C"]; ok {
		t.Errorf("Expected column C absent, got %v", records[0])
	}
}

func TestOpenCSVLatin1(t *testing.T) {
	// 0xF4 is ô in latin1.
	content := "Country\nC\xf4te d'Ivoire\n"
	path := writeFile(t, "tx.csv", content)

	src, err := Open(path, "latin1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	records, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if records[0]["Country"] != "Côte d'Ivoire" {
		t.Errorf("Expected decoded latin1 value, got %q", records[0]["Country"])
	}
}

func TestOpenJSON(t *testing.T) {
	path := writeFile(t, "catalog.json", `[
  {"CustomerID": 12001, "Segment": "Consumer", "Active": true},
  {"CustomerID": 12002, "Segment": null}
]`)

	src, err := Open(path, "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	records, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	// Numbers, booleans and nulls are stringified.
	if records[0]["CustomerID"] != "12001" {
		t.Errorf("Expected CustomerID '12001', got %q", records[0]["CustomerID"])
	}
	if records[0]["Active"] != "true" {
		t.Errorf("Expected Active 'true', got %q", records[0]["Active"])
	}
	if records[1]["Segment"] != "" {
		t.Errorf("Expected null to become empty string, got %q", records[1]["Segment"])
	}
}

func TestOpenJSONRequiresArray(t *testing.T) {
	path := writeFile(t, "catalog.json", `{"CustomerID": 1}`)

	if _, err := Open(path, ""); err == nil {
		t.Error("Expected error for non-array JSON")
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "data.parquet", "whatever")

	if _, err := Open(path, ""); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestOpenUnsupportedEncoding(t *testing.T) {
	path := writeFile(t, "tx.csv", "A\n1\n")

	if _, err := Open(path, "ebcdic"); err == nil {
		t.Error("Expected error for unsupported encoding")
	}
}
