package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// counterValue はレジストリから指定名のカウンタ値を取得する。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) (float64, bool) {
	t.Helper()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total, true
		}
	}
	return 0, false
}

// TestRecordSignUpSuccess_IncrementsCounter はサインアップ成功カウンタが増加することを検証する。
func TestRecordSignUpSuccess_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignUpSuccess()
	c.RecordSignUpSuccess()

	val, found := counterValue(t, reg, "triplog_signup_success_total")
	if !found {
		t.Fatal("triplog_signup_success_total metric not found")
	}
	if val != 2 {
		t.Errorf("signup_success_total = %v, want 2", val)
	}
}

// TestRecordSignUpFailure_CountsByReason はサインアップ失敗カウンタが理由別に増加することを検証する。
func TestRecordSignUpFailure_CountsByReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignUpFailure("duplicate_email")
	c.RecordSignUpFailure("duplicate_email")
	c.RecordSignUpFailure("password_too_short")

	val, found := counterValue(t, reg, "triplog_signup_fail_total")
	if !found {
		t.Fatal("triplog_signup_fail_total metric not found")
	}
	if val != 3 {
		t.Errorf("signup_fail_total = %v, want 3", val)
	}
}

// TestRecordSignInCounters はサインイン成功・失敗カウンタが増加することを検証する。
func TestRecordSignInCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignInSuccess()
	c.RecordSignInFailure()
	c.RecordSignInFailure()

	if val, _ := counterValue(t, reg, "triplog_signin_success_total"); val != 1 {
		t.Errorf("signin_success_total = %v, want 1", val)
	}
	if val, _ := counterValue(t, reg, "triplog_signin_fail_total"); val != 2 {
		t.Errorf("signin_fail_total = %v, want 2", val)
	}
}

// TestRecordEntryCounters は記録作成・削除カウンタが増加することを検証する。
func TestRecordEntryCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordEntryCreated()
	c.RecordEntryDeleted(3)

	if val, _ := counterValue(t, reg, "triplog_entries_created_total"); val != 1 {
		t.Errorf("entries_created_total = %v, want 1", val)
	}
	if val, _ := counterValue(t, reg, "triplog_entries_deleted_total"); val != 3 {
		t.Errorf("entries_deleted_total = %v, want 3", val)
	}
}

// TestRecordHTTPStatus_CountsByStatusCode はステータスコード別にカウントされることを検証する。
func TestRecordHTTPStatus_CountsByStatusCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	val, found := counterValue(t, reg, "triplog_http_status_total")
	if !found {
		t.Fatal("triplog_http_status_total metric not found")
	}
	if val != 3 {
		t.Errorf("http_status_total = %v, want 3", val)
	}
}

// TestRecordHistograms は画像サイズとレイテンシのヒストグラムが記録されることを検証する。
func TestRecordHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordImageSize(1024 * 100)
	c.RecordRequestLatency(42 * time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	names := map[string]bool{}
	for _, mf := range metrics {
		names[mf.GetName()] = true
	}

	if !names["triplog_image_size_bytes"] {
		t.Error("triplog_image_size_bytes metric not found")
	}
	if !names["triplog_request_latency_seconds"] {
		t.Error("triplog_request_latency_seconds metric not found")
	}
}
