// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordSignUpSuccess()
	RecordSignUpFailure(reason string)
	RecordSignInSuccess()
	RecordSignInFailure()
	RecordEntryCreated()
	RecordEntryDeleted(count int)
	RecordImageSize(bytes int)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signUpSuccess  prometheus.Counter
	signUpFail     *prometheus.CounterVec
	signInSuccess  prometheus.Counter
	signInFail     prometheus.Counter
	entriesCreated prometheus.Counter
	entriesDeleted prometheus.Counter
	imageSize      prometheus.Histogram
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signUpSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triplog_signup_success_total",
			Help: "サインアップ成功の合計数",
		}),
		signUpFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triplog_signup_fail_total",
			Help: "サインアップ失敗の合計数（理由別）",
		}, []string{"reason"}),
		signInSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triplog_signin_success_total",
			Help: "サインイン成功の合計数",
		}),
		signInFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triplog_signin_fail_total",
			Help: "サインイン失敗の合計数",
		}),
		entriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triplog_entries_created_total",
			Help: "作成された旅行記録の合計数",
		}),
		entriesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triplog_entries_deleted_total",
			Help: "削除された旅行記録の合計数",
		}),
		imageSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "triplog_image_size_bytes",
			Help:    "添付画像のデコード後サイズ（バイト）",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB〜16MiB
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triplog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "triplog_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signUpSuccess,
		c.signUpFail,
		c.signInSuccess,
		c.signInFail,
		c.entriesCreated,
		c.entriesDeleted,
		c.imageSize,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordSignUpSuccess はサインアップ成功を記録する。
func (c *Collector) RecordSignUpSuccess() {
	c.signUpSuccess.Inc()
}

// RecordSignUpFailure はサインアップ失敗を理由付きで記録する。
func (c *Collector) RecordSignUpFailure(reason string) {
	c.signUpFail.WithLabelValues(reason).Inc()
}

// RecordSignInSuccess はサインイン成功を記録する。
func (c *Collector) RecordSignInSuccess() {
	c.signInSuccess.Inc()
}

// RecordSignInFailure はサインイン失敗を記録する。
func (c *Collector) RecordSignInFailure() {
	c.signInFail.Inc()
}

// RecordEntryCreated は旅行記録の作成を記録する。
func (c *Collector) RecordEntryCreated() {
	c.entriesCreated.Inc()
}

// RecordEntryDeleted は旅行記録の削除を記録する。
func (c *Collector) RecordEntryDeleted(count int) {
	c.entriesDeleted.Add(float64(count))
}

// RecordImageSize は添付画像のデコード後サイズを記録する。
func (c *Collector) RecordImageSize(bytes int) {
	c.imageSize.Observe(float64(bytes))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// HTTPMiddleware はステータスコードとレイテンシを記録するHTTPミドルウェアを返す。
func (c *Collector) HTTPMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			c.RecordHTTPStatus(rec.statusCode)
			c.RecordRequestLatency(time.Since(start))
		})
	}
}

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
