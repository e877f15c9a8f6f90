package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-terrain/internal/config"
	"github.com/annel0/voxel-terrain/internal/logging"
	"github.com/annel0/voxel-terrain/internal/observability"
	"github.com/annel0/voxel-terrain/internal/stencil"
	"github.com/annel0/voxel-terrain/internal/storage"
	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/annel0/voxel-terrain/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Path to YAML config (falls back to TERRAIN_CONFIG)")
		steps        = flag.Int("steps", 0, "Number of update ticks, 0 - until signal")
		tick         = flag.Duration("tick", 50*time.Millisecond, "Update tick interval")
		speed        = flag.Float64("speed", 4, "Viewer speed in world units per tick")
		editInterval = flag.Int("edit-every", 20, "Apply an edit every N ticks, 0 - never")
		shape        = flag.String("shape", "circle", "Edit shape: circle | square")
		radius       = flag.Int("radius", 3, "Edit radius in cells")
		fill         = flag.Int("fill", 1, "Edit fill state")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logging.Configure(logging.Options{
		Dir:          cfg.Logging.Dir,
		ConsoleLevel: logging.ParseLevel(cfg.Logging.ConsoleLevel),
		FileLevel:    logging.ParseLevel(cfg.Logging.FileLevel),
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
	})
	if err := logging.InitDefaultLogger("terrain"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🗺️ Запуск движка ландшафта, мир %q", cfg.World.Name)
	logging.Debug("Окно приёма %d, дальность %d, поле %dx%d",
		cfg.World.ChunkResolution, cfg.World.ViewDistance, cfg.World.FieldResolution, cfg.World.FieldResolution)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logging.Warn("⚠️ Трассировка недоступна: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}
	defer shutdownTelemetry(context.Background())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsServer := observability.NewMetricsServer(cfg.Metrics.GetAddr(), reg)
	metricsServer.Start()

	info, err := storage.OpenWorld(cfg.Storage.GetDataPath(), cfg.World.Name, cfg.Generation.Seed)
	if err != nil {
		if !errors.Is(err, storage.ErrNoWorld) {
			log.Fatalf("❌ Ошибка открытия мира: %v", err)
		}
		logging.Warn("⚠️ Мир не задан, работаем без сохранений")
		info = nil
	}

	session, err := world.NewSession(cfg, info, world.SessionDeps{
		Registerer:    reg,
		Logger:        logging.GetWorldLogger(),
		StorageLogger: logging.GetStorageLogger(),
		MeshLogger:    logging.GetMeshLogger(),
	})
	if err != nil {
		log.Fatalf("❌ Ошибка создания сессии мира: %v", err)
	}
	if err := session.Startup(); err != nil {
		log.Fatalf("❌ Ошибка запуска мира: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*tick)
	defer ticker.Stop()

	viewer := vec.Vec2Float{}
	step := vec.Vec2Float{X: *speed, Y: *speed / 2}
	edit := stencil.Parse(*shape, *fill, *radius)

loop:
	for i := 1; *steps == 0 || i <= *steps; i++ {
		select {
		case sig := <-sigCh:
			logging.Info("🛑 Получен сигнал %v, завершение...", sig)
			break loop
		case <-ticker.C:
		}

		viewer = viewer.Add(step)
		if err := session.Update(ctx, viewer); err != nil {
			// Ошибка записи региона означает потерю данных
			log.Fatalf("❌ Ошибка обновления мира: %v", err)
		}

		if *editInterval > 0 && i%*editInterval == 0 {
			if _, err := session.Edit(viewer, edit); err != nil {
				logging.Error("❌ Ошибка правки: %v", err)
			}
		}

		if i%100 == 0 {
			st := session.Store().Stats()
			logging.Info("📊 Тик %d: чанков %d, свободно %d, регионов %d, мешей %d",
				i, st.Resident, st.Free, st.RegionsOpen, st.MeshesBuilt)
		}
	}

	if err := session.Shutdown(); err != nil {
		log.Fatalf("❌ Ошибка сохранения мира: %v", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := metricsServer.Stop(stopCtx); err != nil {
		logging.Warn("⚠️ Ошибка остановки сервера метрик: %v", err)
	}

	logging.Info("👋 Движок ландшафта остановлен")
}
