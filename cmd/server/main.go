package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxelworld/internal/config"
	"github.com/annel0/voxelworld/internal/engine"
	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/metrics"
	"github.com/annel0/voxelworld/internal/observability"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world"
	"github.com/annel0/voxelworld/internal/world/block"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $VOXEL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем систему логирования
	logOpts := cfg.LoggingOptions()
	if err := logging.InitDefaultLogger("server", logOpts); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	logging.GetLoggerManager().Configure(logOpts)
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🧱 Запуск voxelworld (chunk=%dx%d, seed=%d, render distance=%d)",
		cfg.World.Dimensions.Size, cfg.World.Dimensions.Height, cfg.Terrain.Noise.Seed, cfg.Engine.RenderDistance)

	if err := run(cfg); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Сервер успешно остановлен")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === РЕЕСТР БЛОКОВ ===
	registry := block.Default()
	if cfg.Blocks.Path != "" {
		r, err := block.LoadRegistry(cfg.Blocks.Path)
		if err != nil {
			return fmt.Errorf("реестр блоков: %w", err)
		}
		registry = r
		logging.Info("📦 Таблица блоков загружена из %s (%d типов)", cfg.Blocks.Path, len(r.Types()))
	}

	// === МЕТРИКИ ===
	promReg := prometheus.NewRegistry()
	collector := metrics.NewCollector(promReg)

	if cfg.Metrics.Enabled {
		pm, err := metrics.NewProcessMetrics(promReg)
		if err != nil {
			logging.Warn("Метрики процесса недоступны: %v", err)
		} else {
			pm.Start(5 * time.Second)
			defer pm.Stop()
		}

		srv := metrics.StartHTTP(fmt.Sprintf(":%d", cfg.Metrics.GetMetricsPort()), promReg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Error("Ошибка остановки Prometheus сервера: %v", err)
			}
		}()
	}

	// === МИР ===
	opts := cfg.WorldOptions()
	opts.Registry = registry
	opts.Observer = collector

	w, err := world.New(opts)
	if err != nil {
		return fmt.Errorf("создание мира: %w", err)
	}

	// === ТРАССИРОВКА ===
	shutdownTelemetry := observability.Noop()
	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err = observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, w.ID().String())
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Error("Ошибка остановки OpenTelemetry: %v", err)
		}
	}()

	// === ДВИЖОК ===
	center := vec.Vec3Float{Y: float64(cfg.Terrain.BaseHeight)}
	camera := engine.NewOrbitCamera(center, cfg.Engine.OrbitRadius, cfg.Engine.OrbitSpeed)
	renderer := engine.NewCountingRenderer()

	eng, err := engine.New(w, renderer, camera, engine.Options{
		RenderDistance: cfg.Engine.RenderDistance,
		Observer:       collector,
	})
	if err != nil {
		return fmt.Errorf("создание движка: %w", err)
	}

	logging.Info("✅ Мир %s запущен, кадр каждые %s", w.ID(), cfg.Engine.FrameInterval)
	if err := eng.Run(ctx, cfg.Engine.FrameInterval); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("движок: %w", err)
	}

	logging.Info("📡 Получен сигнал завершения: загружено чанков %d, мешей в рендерере %d, загрузок %d",
		w.ChunkCount(), renderer.ResidentCount(), renderer.Uploads())
	if unknown := registry.UnknownTypes(); len(unknown) > 0 {
		logging.Warn("Встречены незарегистрированные типы блоков: %v", unknown)
	}
	return nil
}
