package storage

import "github.com/prometheus/client_golang/prometheus"

// Metrics - счётчики подсистемы сохранений. nil-значение допустимо и ничего не считает.
type Metrics struct {
	loadHits     prometheus.Counter
	loadMisses   prometheus.Counter
	saves        prometheus.Counter
	readErrors   prometheus.Counter
	bytesWritten prometheus.Counter
	openRegions  prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg, если он задан
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loadHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrain",
			Subsystem: "storage",
			Name:      "chunk_loads_total",
			Help:      "Чанков, найденных в сохранённых регионах.",
		}),
		loadMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrain",
			Subsystem: "storage",
			Name:      "chunk_load_misses_total",
			Help:      "Запросов загрузки чанков, которых нет в регионе.",
		}),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrain",
			Subsystem: "storage",
			Name:      "region_writes_total",
			Help:      "Полных перезаписей регионов.",
		}),
		readErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrain",
			Subsystem: "storage",
			Name:      "read_errors_total",
			Help:      "Ошибок чтения или разбора регионов.",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terrain",
			Subsystem: "storage",
			Name:      "bytes_written_total",
			Help:      "Байт, записанных в регионы.",
		}),
		openRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "terrain",
			Subsystem: "storage",
			Name:      "open_regions",
			Help:      "Количество открытых регионов.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.loadHits, m.loadMisses, m.saves, m.readErrors, m.bytesWritten, m.openRegions)
	}
	return m
}

func (m *Metrics) hit() {
	if m != nil {
		m.loadHits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.loadMisses.Inc()
	}
}

func (m *Metrics) wrote(n int) {
	if m != nil {
		m.saves.Inc()
		m.bytesWritten.Add(float64(n))
	}
}

func (m *Metrics) readError() {
	if m != nil {
		m.readErrors.Inc()
	}
}

func (m *Metrics) setOpen(n int) {
	if m != nil {
		m.openRegions.Set(float64(n))
	}
}
