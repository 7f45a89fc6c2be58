package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestHandler_ServesRegisteredSeries(t *testing.T) {
	counter := promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbx_metrics_handler_test_total",
		Help: "Test counter",
	})
	counter.Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "rbx_metrics_handler_test_total 1") {
		t.Errorf("metrics output missing test counter:\n%s", body)
	}
}
