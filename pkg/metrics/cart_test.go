package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartSyncMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartSyncMetrics(reg)

	metrics.IncSuccess("get_cart")
	metrics.IncFailure("add_item")
	metrics.IncPersistWarning()
	metrics.IncPersistWarning()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchOperationCounter(mfs, "get_cart", "success"); err != nil {
		t.Fatalf("fetch get_cart success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected get_cart success=1, got %f", got)
	}

	if got, err := fetchOperationCounter(mfs, "add_item", "failure"); err != nil {
		t.Fatalf("fetch add_item failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected add_item failure=1, got %f", got)
	}

	warnings := findMetricFamily(mfs, "cart_sync_persist_warnings_total")
	if warnings == nil || len(warnings.GetMetric()) == 0 {
		t.Fatal("persist warnings counter not exported")
	}
	if got := warnings.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected persist warnings=2, got %f", got)
	}
}

func TestCartSyncMetricsNilSafe(t *testing.T) {
	var metrics *CartSyncMetrics
	metrics.IncSuccess("get_cart")
	metrics.IncFailure("get_cart")
	metrics.IncPersistWarning()

	empty := NewCartSyncMetrics(nil)
	empty.IncSuccess("get_cart")
}

func fetchOperationCounter(mfs []*dto.MetricFamily, operation, result string) (float64, error) {
	mf := findMetricFamily(mfs, "cart_sync_operations_total")
	if mf == nil {
		return 0, fmt.Errorf("operations metric not found")
	}
	for _, metric := range mf.GetMetric() {
		var opMatch, resultMatch bool
		for _, label := range metric.GetLabel() {
			if label.GetName() == "operation" && label.GetValue() == operation {
				opMatch = true
			}
			if label.GetName() == "result" && label.GetValue() == result {
				resultMatch = true
			}
		}
		if opMatch && resultMatch {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("no series for operation=%s result=%s", operation, result)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}
