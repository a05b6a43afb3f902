package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/world"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	World     WorldConfig         `yaml:"world"`
	Terrain   world.TerrainConfig `yaml:"terrain"`
	Engine    EngineConfig        `yaml:"engine"`
	Logging   LoggingConfig       `yaml:"logging"`
	Metrics   MetricsConfig       `yaml:"metrics"`
	Telemetry TelemetryConfig     `yaml:"telemetry"`
	Blocks    BlocksConfig        `yaml:"blocks"`
}

type WorldConfig struct {
	Dimensions         world.Dimensions `yaml:"chunk"`
	MaxLoadedChunks    int              `yaml:"max_loaded_chunks"`
	MaxChunksPerUpdate int              `yaml:"max_chunks_per_update"`
	MeshWorkers        int              `yaml:"mesh_workers"`
}

type EngineConfig struct {
	RenderDistance int           `yaml:"render_distance"`
	FrameInterval  time.Duration `yaml:"frame_interval"`
	OrbitRadius    float64       `yaml:"orbit_radius"`
	OrbitSpeed     float64       `yaml:"orbit_speed"` // радиан в секунду
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type BlocksConfig struct {
	// Path к YAML таблице блоков; пусто - стандартная таблица
	Path string `yaml:"path"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Dimensions: world.DefaultDimensions,
		},
		Terrain: world.DefaultTerrainConfig(),
		Engine: EngineConfig{
			RenderDistance: 3,
			FrameInterval:  time.Second / 20,
			OrbitRadius:    48,
			OrbitSpeed:     0.05,
		},
		Logging: LoggingConfig{
			ConsoleLevel: "info",
			FileLevel:    "off",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxelworld",
		},
	}
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(m.Port, "VOXEL_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV VOXEL_CONFIG; если и он пуст - только дефолты.
// VOXEL_SEED переопределяет seed рельефа.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envSeed := os.Getenv("VOXEL_SEED"); envSeed != "" {
		seed, err := strconv.ParseInt(envSeed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("VOXEL_SEED: %w", err)
		}
		cfg.Terrain.Noise.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет конфигурацию целиком
func (c *Config) Validate() error {
	var errs []error

	if err := c.World.Dimensions.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Terrain.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.World.MaxLoadedChunks < 0 || c.World.MaxChunksPerUpdate < 0 || c.World.MeshWorkers < 0 {
		errs = append(errs, errors.New("world: limits must not be negative"))
	}
	if c.Engine.RenderDistance < 0 {
		errs = append(errs, fmt.Errorf("engine: render distance %d", c.Engine.RenderDistance))
	}
	if c.Engine.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("engine: frame interval %s", c.Engine.FrameInterval))
	}
	if _, err := logging.ParseLevel(c.Logging.ConsoleLevel); err != nil {
		errs = append(errs, fmt.Errorf("logging.console_level: %w", err))
	}
	if _, err := logging.ParseLevel(c.Logging.FileLevel); err != nil {
		errs = append(errs, fmt.Errorf("logging.file_level: %w", err))
	}

	return errors.Join(errs...)
}

// WorldOptions собирает параметры мира (реестр и наблюдатель задаёт вызывающий)
func (c *Config) WorldOptions() world.Options {
	return world.Options{
		Dimensions:         c.World.Dimensions,
		Terrain:            c.Terrain,
		MaxLoadedChunks:    c.World.MaxLoadedChunks,
		MaxChunksPerUpdate: c.World.MaxChunksPerUpdate,
		MeshWorkers:        c.World.MeshWorkers,
	}
}

// LoggingOptions переводит уровни логирования в параметры логгеров
func (c *Config) LoggingOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Dir = c.Logging.Dir
	// Уровни уже проверены в Validate
	opts.ConsoleLevel, _ = logging.ParseLevel(c.Logging.ConsoleLevel)
	opts.FileLevel, _ = logging.ParseLevel(c.Logging.FileLevel)
	return opts
}
