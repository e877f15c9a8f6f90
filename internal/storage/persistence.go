package storage

import (
	"fmt"
	"sort"

	"github.com/annel0/voxel-terrain/internal/logging"
	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/annel0/voxel-terrain/internal/voxel"
	"github.com/dustin/go-humanize"
)

// Snapshot - поле чанка для массового сохранения
type Snapshot struct {
	Coord vec.Vec2
	Field *voxel.Field
}

// Options задаёт параметры менеджера сохранений
type Options struct {
	RegionResolution int // Сторона региона; по умолчанию 8
	Compression      Compression
	Logger           *logging.Logger
	Metrics          *Metrics
}

// region - открытый регион: кэш содержимого и резидентные чанки под ним
type region struct {
	id       vec.Vec2
	data     *RegionData
	resident map[vec.Vec2]struct{}
}

// Manager группирует чанки по регионам и владеет их дескрипторами.
// Рассчитан на одного писателя в одном процессе.
type Manager struct {
	backend          Backend
	codec            *Codec
	info             *WorldInfo
	regionResolution int
	regions          map[vec.Vec2]*region
	logger           *logging.Logger
	metrics          *Metrics
}

// NewManager создаёт менеджер поверх хранилища. info == nil означает мир без сохранений.
func NewManager(backend Backend, info *WorldInfo, opts Options) (*Manager, error) {
	if opts.RegionResolution == 0 {
		opts.RegionResolution = 8
	}
	if opts.RegionResolution < 2 || opts.RegionResolution%2 != 0 {
		return nil, fmt.Errorf("сторона региона должна быть чётной и >= 2, получено %d", opts.RegionResolution)
	}

	codec, err := NewCodec(opts.Compression)
	if err != nil {
		return nil, err
	}

	return &Manager{
		backend:          backend,
		codec:            codec,
		info:             info,
		regionResolution: opts.RegionResolution,
		regions:          make(map[vec.Vec2]*region),
		logger:           opts.Logger,
		metrics:          opts.Metrics,
	}, nil
}

// Info возвращает запись мира
func (m *Manager) Info() *WorldInfo {
	return m.info
}

// RegionResolution возвращает сторону региона
func (m *Manager) RegionResolution() int {
	return m.regionResolution
}

// RegionsOpen возвращает количество открытых регионов
func (m *Manager) RegionsOpen() int {
	return len(m.regions)
}

// open открывает регион и читает его содержимое при первом обращении.
// Ошибка чтения или разбора логируется, и регион считается пустым.
func (m *Manager) open(id vec.Vec2) (*region, error) {
	r, ok := m.regions[id]
	if !ok {
		if err := m.backend.Open(id); err != nil {
			return nil, fmt.Errorf("не удалось открыть регион %v: %w", id, err)
		}
		r = &region{id: id, resident: make(map[vec.Vec2]struct{})}
		m.regions[id] = r
		m.metrics.setOpen(len(m.regions))
		m.logger.Debug("📂 Регион %v открыт", id)
	}

	if r.data == nil {
		data, err := m.backend.Read(id)
		if err == nil {
			r.data, err = m.codec.Decode(data)
		}
		if err != nil {
			m.logger.Error("❌ Регион %v не прочитан, считаем пустым: %v", id, err)
			m.metrics.readError()
			r.data = &RegionData{}
		} else if len(data) > 0 {
			m.logger.Trace("Регион %v: %d чанков, %s", id, len(r.data.Chunks), humanize.Bytes(uint64(len(data))))
		}
	}
	return r, nil
}

// Load ищет чанк в его регионе и отмечает чанк резидентным.
// Отсутствие мира, файла или записи, а также ошибки чтения дают (nil, false).
func (m *Manager) Load(coord vec.Vec2) (*voxel.Field, bool) {
	if !m.info.Valid() {
		return nil, false
	}

	id := RegionID(coord, m.regionResolution)
	r, err := m.open(id)
	if err != nil {
		m.logger.Error("❌ %v", err)
		m.metrics.readError()
		return nil, false
	}
	r.resident[coord] = struct{}{}

	i := r.data.Find(coord)
	if i < 0 {
		m.metrics.miss()
		return nil, false
	}

	f, err := r.data.Chunks[i].Field()
	if err != nil {
		m.logger.Error("❌ Чанк %v в регионе %v повреждён: %v", coord, id, err)
		m.metrics.readError()
		return nil, false
	}
	m.metrics.hit()
	return f, true
}

// Save обновляет запись чанка и перезаписывает регион целиком. Без мира ничего не делает.
func (m *Manager) Save(coord vec.Vec2, field *voxel.Field) error {
	if !m.info.Valid() {
		return nil
	}

	r, err := m.open(RegionID(coord, m.regionResolution))
	if err != nil {
		return err
	}
	m.upsert(r, coord, field)
	return m.flush(r)
}

// Evict сохраняет чанк и снимает его с учёта в регионе
func (m *Manager) Evict(coord vec.Vec2, field *voxel.Field) error {
	err := m.Save(coord, field)
	if r, ok := m.regions[RegionID(coord, m.regionResolution)]; ok {
		delete(r.resident, coord)
	}
	return err
}

func (m *Manager) upsert(r *region, coord vec.Vec2, field *voxel.Field) {
	cd := ChunkDataFromField(field)
	cd.Coord = coord
	r.data.Upsert(cd)
}

// flush сериализует регион и записывает его
func (m *Manager) flush(r *region) error {
	data, err := m.codec.Encode(r.data)
	if err != nil {
		return fmt.Errorf("ошибка сериализации региона %v: %w", r.id, err)
	}
	if err := m.backend.Write(r.id, data); err != nil {
		return fmt.Errorf("ошибка записи региона %v: %w", r.id, err)
	}
	m.metrics.wrote(len(data))
	m.logger.Trace("💾 Регион %v записан: %d чанков, %s", r.id, len(r.data.Chunks), humanize.Bytes(uint64(len(data))))
	return nil
}

// CloseEmptyRegions закрывает регионы без резидентных чанков
func (m *Manager) CloseEmptyRegions() error {
	var lastErr error
	for _, id := range m.sortedRegionIDs() {
		if len(m.regions[id].resident) > 0 {
			continue
		}
		if err := m.closeRegion(id); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (m *Manager) closeRegion(id vec.Vec2) error {
	delete(m.regions, id)
	m.metrics.setOpen(len(m.regions))
	if err := m.backend.CloseRegion(id); err != nil {
		return fmt.Errorf("ошибка закрытия региона %v: %w", id, err)
	}
	m.logger.Debug("📁 Регион %v закрыт", id)
	return nil
}

// SaveAll сохраняет все переданные чанки, записывая каждый регион один раз, и закрывает все регионы
func (m *Manager) SaveAll(snapshots []Snapshot) error {
	if m.info.Valid() {
		var touched []*region
		seen := make(map[vec.Vec2]bool)
		for _, s := range snapshots {
			r, err := m.open(RegionID(s.Coord, m.regionResolution))
			if err != nil {
				return err
			}
			m.upsert(r, s.Coord, s.Field)
			if !seen[r.id] {
				seen[r.id] = true
				touched = append(touched, r)
			}
		}

		for _, r := range touched {
			if err := m.flush(r); err != nil {
				return err
			}
		}
		m.logger.Info("💾 Сохранено %d чанков в %d регионах", len(snapshots), len(touched))
	}

	var lastErr error
	for _, id := range m.sortedRegionIDs() {
		if err := m.closeRegion(id); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close закрывает регионы и хранилище
func (m *Manager) Close() error {
	for _, id := range m.sortedRegionIDs() {
		_ = m.closeRegion(id)
	}
	m.codec.Close()
	return m.backend.Close()
}

func (m *Manager) sortedRegionIDs() []vec.Vec2 {
	ids := make([]vec.Vec2, 0, len(m.regions))
	for id := range m.regions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}
