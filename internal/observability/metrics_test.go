package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(rpcBytes.WithLabelValues("send", "size_prefixed"))
	RecordFrame("send", "size_prefixed", "ok", 128)
	RecordFrame("send", "size_prefixed", "error", 64)
	after := testutil.ToFloat64(rpcBytes.WithLabelValues("send", "size_prefixed"))
	if after-before != 128 {
		t.Fatalf("bytes delta got=%v want=128", after-before)
	}

	roots := testutil.ToFloat64(merkleRoots.WithLabelValues("ok"))
	RecordRoot("ok")
	if got := testutil.ToFloat64(merkleRoots.WithLabelValues("ok")); got != roots+1 {
		t.Fatalf("roots got=%v want=%v", got, roots+1)
	}
}

func TestRequestMetricsMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()), RequestMetricsMiddleware("test"))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	ok := adminRequests.WithLabelValues("test", "GET", "/healthz", "200")
	missing := adminRequests.WithLabelValues("test", "GET", "unmatched", "404")
	okBefore, missBefore := testutil.ToFloat64(ok), testutil.ToFloat64(missing)

	for _, path := range []string{"/healthz", "/nope/1", "/nope/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Fatalf("health requests got=%v want=1", got)
	}
	if got := testutil.ToFloat64(missing) - missBefore; got != 2 {
		t.Fatalf("unmatched requests got=%v want=2", got)
	}
}
