//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "sales-api"
	ConsumerName = "sales-portal"

	StateSalesBaseline = "sales baseline"
	StateSaleExists    = "sale with id 101 exists"
	StateSaleMissing   = "no sale with id 404"
)

const (
	ExistingSaleID int64 = 101
	MissingSaleID  int64 = 404

	ExampleClientID   int64 = 7
	ExampleEmployeeID int64 = 3
)

const exampleSaleDate = "2024-05-10T12:00:00Z"

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the sales portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleSalePayload provides stable request data for pact interactions.
func ExampleSalePayload() map[string]any {
	return map[string]any{
		"client_id":      ExampleClientID,
		"employee_id":    ExampleEmployeeID,
		"date":           exampleSaleDate,
		"payment_method": "card",
		"items": []map[string]any{
			{"product_id": 10, "quantity": 2, "price": 50.0},
			{"product_id": 20, "quantity": 1, "price": 120.0, "discount": 10.0},
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
