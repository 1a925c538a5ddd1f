package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStoreMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.ObserveRead("bills", 3, nil)
	m.ObserveWrite("bills", 4, nil)
	m.ObserveWrite("bills", 5, errors.New("disk full"))

	if got := testutil.ToFloat64(m.operations.WithLabelValues("bills", "write")); got != 2 {
		t.Errorf("write operations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("bills", "write")); got != 1 {
		t.Errorf("write failures = %v, want 1", got)
	}
	// A failed write leaves the gauge at the last successful size.
	if got := testutil.ToFloat64(m.records.WithLabelValues("bills")); got != 4 {
		t.Errorf("records = %v, want 4", got)
	}
}

func TestNilStoreMetrics(t *testing.T) {
	var m *StoreMetrics
	m.ObserveRead("users", 1, nil)
	m.ObserveWrite("users", 1, errors.New("boom"))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)
	m.ObserveRead("rates", 2, nil)

	path := filepath.Join(t.TempDir(), "wattcount.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), `wattcount_store_records{collection="rates"} 2`) {
		t.Errorf("textfile missing records gauge:\n%s", data)
	}
}
