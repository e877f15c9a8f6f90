package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/annel0/voxel-terrain/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer отдаёт метрики реестра по /metrics
type MetricsServer struct {
	srv *http.Server
}

// NewMetricsServer создаёт HTTP-сервер метрик для реестра
func NewMetricsServer(addr string, gatherer prometheus.Gatherer) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &MetricsServer{srv: &http.Server{Addr: addr, Handler: mux}}
}

// Handler возвращает обработчик запросов сервера
func (m *MetricsServer) Handler() http.Handler {
	return m.srv.Handler
}

// Start запускает сервер в отдельной горутине
func (m *MetricsServer) Start() {
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", m.srv.Addr)
		if err := m.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
}

// Stop останавливает сервер
func (m *MetricsServer) Stop(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
