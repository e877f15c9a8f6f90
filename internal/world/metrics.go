package world

import "github.com/prometheus/client_golang/prometheus"

// Metrics - метрики стриминга чанков. nil-значение допустимо.
type Metrics struct {
	admitted       prometheus.Counter
	evicted        prometheus.Counter
	recycled       prometheus.Counter
	loaded         prometheus.Counter
	generated      prometheus.Counter
	meshesBuilt    prometheus.Counter
	outlinesBuilt  prometheus.Counter
	edits          prometheus.Counter
	resident       prometheus.Gauge
	free           prometheus.Gauge
	updateDuration prometheus.Histogram
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "terrain",
		Subsystem: "chunks",
		Name:      name,
		Help:      help,
	})
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "terrain",
		Subsystem: "chunks",
		Name:      name,
		Help:      help,
	})
}

// NewMetrics создаёт метрики и регистрирует их в reg, если он задан
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		admitted:      counter("admitted_total", "Чанков, принятых в окно видимости."),
		evicted:       counter("evicted_total", "Чанков, вытесненных из окна видимости."),
		recycled:      counter("recycled_total", "Принятий, использовавших чанк из пула."),
		loaded:        counter("loaded_total", "Чанков, загруженных из сохранений."),
		generated:     counter("generated_total", "Чанков, сгенерированных заново."),
		meshesBuilt:   counter("meshes_built_total", "Построенных сеток."),
		outlinesBuilt: counter("outlines_built_total", "Перестроений контуров."),
		edits:         counter("edits_total", "Правок, изменивших хотя бы одну ячейку."),
		resident:      gauge("resident", "Резидентных чанков."),
		free:          gauge("free", "Чанков в пуле свободных."),
		updateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "terrain",
			Subsystem: "chunks",
			Name:      "update_duration_seconds",
			Help:      "Длительность одного прохода обновления вокруг наблюдателя.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.admitted, m.evicted, m.recycled, m.loaded, m.generated,
			m.meshesBuilt, m.outlinesBuilt, m.edits, m.resident, m.free, m.updateDuration)
	}
	return m
}

// tally - счётчики одного прохода обновления или правки
type tally struct {
	admitted, evicted, recycled int
	loaded, generated           int
	meshes, outlines            int
	edits                       int
}

func (m *Metrics) record(t tally) {
	if m == nil {
		return
	}
	m.admitted.Add(float64(t.admitted))
	m.evicted.Add(float64(t.evicted))
	m.recycled.Add(float64(t.recycled))
	m.loaded.Add(float64(t.loaded))
	m.generated.Add(float64(t.generated))
	m.meshesBuilt.Add(float64(t.meshes))
	m.outlinesBuilt.Add(float64(t.outlines))
	m.edits.Add(float64(t.edits))
}

func (m *Metrics) observe(s Stats, seconds float64) {
	if m == nil {
		return
	}
	m.resident.Set(float64(s.Resident))
	m.free.Set(float64(s.Free))
	m.updateDuration.Observe(seconds)
}
