package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации мира и процесса.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Storage    StorageConfig    `yaml:"storage"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// WorldConfig параметры стриминга чанков
type WorldConfig struct {
	Name            string  `yaml:"name"`
	VoxelResolution float64 `yaml:"voxel_resolution"` // Размер чанка в мировых единицах
	FieldResolution int     `yaml:"field_resolution"` // Ячеек по стороне чанка
	ChunkResolution int     `yaml:"chunk_resolution"` // Сторона окна приёма в чанках
	ViewDistance    int     `yaml:"view_distance"`    // В чанках
	ColliderRadius  int     `yaml:"collider_radius"`  // В чанках
	MeshWorkers     int     `yaml:"mesh_workers"`
}

type StorageConfig struct {
	DataPath         string `yaml:"data_path"`
	Backend          string `yaml:"backend"` // file | badger
	RegionResolution int    `yaml:"region_resolution"`
	Compression      string `yaml:"compression"` // zstd | none
}

type GenerationConfig struct {
	Mode      string  `yaml:"mode"` // off | on | random | random-nonzero | perlin
	Seed      int64   `yaml:"seed"`
	States    int     `yaml:"states"`
	Alpha     float64 `yaml:"alpha"`
	Beta      float64 `yaml:"beta"`
	Octaves   int     `yaml:"octaves"`
	Scale     float64 `yaml:"scale"`
	Threshold float64 `yaml:"threshold"`
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
	MaxSizeMB    int    `yaml:"max_size_mb"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Name:            "default",
			VoxelResolution: 16,
			FieldResolution: 16,
			ChunkResolution: 16,
			ViewDistance:    6,
			ColliderRadius:  2,
			MeshWorkers:     1,
		},
		Storage: StorageConfig{
			Backend:          "file",
			RegionResolution: 8,
			Compression:      "zstd",
		},
		Generation: GenerationConfig{
			Mode:      "perlin",
			States:    4,
			Alpha:     2,
			Beta:      2,
			Octaves:   3,
			Scale:     0.05,
			Threshold: 0.5,
		},
		Logging: LoggingConfig{
			Dir:          "logs",
			ConsoleLevel: "INFO",
			FileLevel:    "DEBUG",
			MaxSizeMB:    50,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-terrain",
		},
	}
}

// GetDataPath возвращает корень сохранений с приоритетом: config -> env -> default
func (s *StorageConfig) GetDataPath() string {
	return getStringWithEnvFallback(s.DataPath, "TERRAIN_DATA_PATH", "data")
}

// GetAddr возвращает адрес HTTP метрик с приоритетом: config -> env -> default
func (m *MetricsConfig) GetAddr() string {
	return getStringWithEnvFallback(m.Addr, "TERRAIN_METRICS_ADDR", ":2112")
}

// WorldDir возвращает директорию сохранений мира
func (c *Config) WorldDir() string {
	return filepath.Join(c.Storage.GetDataPath(), c.World.Name)
}

// getStringWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getStringWithEnvFallback(configValue, envVar, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultValue
}

// applyDefaults заполняет нулевые значения из Default()
func (c *Config) applyDefaults() {
	d := Default()

	if c.World.VoxelResolution == 0 {
		c.World.VoxelResolution = d.World.VoxelResolution
	}
	if c.World.FieldResolution == 0 {
		c.World.FieldResolution = d.World.FieldResolution
	}
	if c.World.ChunkResolution == 0 {
		c.World.ChunkResolution = d.World.ChunkResolution
	}
	if c.World.ViewDistance == 0 {
		c.World.ViewDistance = d.World.ViewDistance
	}
	if c.World.ColliderRadius == 0 {
		c.World.ColliderRadius = d.World.ColliderRadius
	}
	if c.World.MeshWorkers == 0 {
		c.World.MeshWorkers = d.World.MeshWorkers
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Storage.RegionResolution == 0 {
		c.Storage.RegionResolution = d.Storage.RegionResolution
	}
	if c.Storage.Compression == "" {
		c.Storage.Compression = d.Storage.Compression
	}

	g := &c.Generation
	if g.Mode == "" {
		g.Mode = d.Generation.Mode
	}
	if g.States == 0 {
		g.States = d.Generation.States
	}
	if g.Alpha == 0 {
		g.Alpha = d.Generation.Alpha
	}
	if g.Beta == 0 {
		g.Beta = d.Generation.Beta
	}
	if g.Octaves == 0 {
		g.Octaves = d.Generation.Octaves
	}
	if g.Scale == 0 {
		g.Scale = d.Generation.Scale
	}
	if g.Threshold == 0 {
		g.Threshold = d.Generation.Threshold
	}

	if c.Logging.ConsoleLevel == "" {
		c.Logging.ConsoleLevel = d.Logging.ConsoleLevel
	}
	if c.Logging.FileLevel == "" {
		c.Logging.FileLevel = d.Logging.FileLevel
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = d.Logging.MaxSizeMB
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = d.Telemetry.ServiceName
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	w := c.World
	if w.VoxelResolution <= 0 {
		return fmt.Errorf("world.voxel_resolution должен быть > 0, получено %v", w.VoxelResolution)
	}
	if w.FieldResolution < 1 {
		return fmt.Errorf("world.field_resolution должен быть >= 1, получено %d", w.FieldResolution)
	}
	if w.ChunkResolution < 1 {
		return fmt.Errorf("world.chunk_resolution должен быть >= 1, получено %d", w.ChunkResolution)
	}
	if w.ViewDistance < 0 {
		return fmt.Errorf("world.view_distance не может быть отрицательным: %d", w.ViewDistance)
	}
	if w.ColliderRadius < 0 {
		return fmt.Errorf("world.collider_radius не может быть отрицательным: %d", w.ColliderRadius)
	}
	if w.MeshWorkers < 1 {
		return fmt.Errorf("world.mesh_workers должен быть >= 1, получено %d", w.MeshWorkers)
	}

	s := c.Storage
	if s.RegionResolution < 2 || s.RegionResolution%2 != 0 {
		return fmt.Errorf("storage.region_resolution должен быть чётным и >= 2, получено %d", s.RegionResolution)
	}
	switch s.Backend {
	case "file", "badger":
	default:
		return fmt.Errorf("неизвестный storage.backend: %q", s.Backend)
	}
	switch s.Compression {
	case "zstd", "none":
	default:
		return fmt.Errorf("неизвестный storage.compression: %q", s.Compression)
	}

	switch strings.ToLower(c.Generation.Mode) {
	case "off", "on", "random", "random-nonzero", "perlin":
	default:
		return fmt.Errorf("неизвестный generation.mode: %q", c.Generation.Mode)
	}
	if c.Generation.States < 1 {
		return fmt.Errorf("generation.states должен быть >= 1, получено %d", c.Generation.States)
	}

	return nil
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV TERRAIN_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TERRAIN_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
