package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrNoWorld возвращается, когда у мира нет имени и сохранения невозможны
var ErrNoWorld = errors.New("мир не выбран")

const worldInfoFile = "world.yaml"

// WorldInfo - запись идентичности мира, хранится в <data>/<name>/world.yaml
type WorldInfo struct {
	ID         string    `yaml:"id"`
	Name       string    `yaml:"name"`
	Seed       int64     `yaml:"seed"`
	LastPlayed time.Time `yaml:"last_played"`

	dir string
}

// NewWorldInfo создаёт запись мира без файла на диске
func NewWorldInfo(name string, seed int64) *WorldInfo {
	return &WorldInfo{
		ID:         uuid.NewString(),
		Name:       name,
		Seed:       seed,
		LastPlayed: time.Now().UTC(),
	}
}

// OpenWorld читает world.yaml мира или создаёт его при первом запуске.
// Сид существующего мира имеет приоритет над переданным.
func OpenWorld(dataPath, name string, seed int64) (*WorldInfo, error) {
	if name == "" {
		return nil, ErrNoWorld
	}

	dir := filepath.Join(dataPath, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию мира %s: %w", dir, err)
	}

	path := filepath.Join(dir, worldInfoFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		info := NewWorldInfo(name, seed)
		info.dir = dir
		if err := info.Save(); err != nil {
			return nil, err
		}
		return info, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}

	var info WorldInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}
	if _, err := uuid.Parse(info.ID); err != nil {
		info.ID = uuid.NewString()
	}
	info.Name = name
	info.dir = dir
	return &info, nil
}

// Valid сообщает, что мир пригоден для сохранений
func (w *WorldInfo) Valid() bool {
	return w != nil && w.Name != ""
}

// Dir возвращает директорию мира; пусто для мира без файла
func (w *WorldInfo) Dir() string {
	return w.dir
}

// Save записывает world.yaml
func (w *WorldInfo) Save() error {
	if w.dir == "" {
		return nil
	}

	data, err := yaml.Marshal(w)
	if err != nil {
		return fmt.Errorf("ошибка сериализации мира: %w", err)
	}
	path := filepath.Join(w.dir, worldInfoFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", path, err)
	}
	return nil
}

// Touch обновляет время последней игры и сохраняет запись
func (w *WorldInfo) Touch() error {
	w.LastPlayed = time.Now().UTC()
	return w.Save()
}
