package util

import (
	"errors"
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
)

// Ограничения фрактального шума
const (
	MaxOctaves = 10

	// period - период таблицы перестановок go-perlin по каждой оси
	period = 256
	// perlinAmplitude - максимум модуля базового 2D шума Перлина (sqrt(2)/2)
	perlinAmplitude = math.Sqrt2 / 2
)

// ErrInvalidNoiseConfig возвращается при некорректных параметрах шума
var ErrInvalidNoiseConfig = errors.New("invalid noise config")

// NoiseConfig задаёт параметры фрактального шума
type NoiseConfig struct {
	Seed       int64   `yaml:"seed"`
	Frequency  float64 `yaml:"frequency"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"` // множитель частоты между октавами
	Gain       float64 `yaml:"gain"`       // множитель амплитуды между октавами
}

// DefaultNoiseConfig возвращает стандартные параметры рельефа
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Seed:       12345,
		Frequency:  0.01,
		Octaves:    4,
		Lacunarity: 2.0,
		Gain:       0.5,
	}
}

// Validate проверяет параметры
func (c NoiseConfig) Validate() error {
	if c.Octaves < 1 || c.Octaves > MaxOctaves {
		return fmt.Errorf("%w: octaves %d not in [1,%d]", ErrInvalidNoiseConfig, c.Octaves, MaxOctaves)
	}
	if !(c.Frequency > 0) {
		return fmt.Errorf("%w: frequency must be positive, got %g", ErrInvalidNoiseConfig, c.Frequency)
	}
	if !(c.Lacunarity > 0) {
		return fmt.Errorf("%w: lacunarity must be positive, got %g", ErrInvalidNoiseConfig, c.Lacunarity)
	}
	if !(c.Gain > 0 && c.Gain <= 1) {
		return fmt.Errorf("%w: gain %g not in (0,1]", ErrInvalidNoiseConfig, c.Gain)
	}
	return nil
}

// FractalNoise - фрактальный градиентный шум (сумма октав шума Перлина).
// После создания только читается, поэтому безопасен для параллельного использования.
type FractalNoise struct {
	cfg      NoiseConfig
	octaves  []*perlin.Perlin
	bounding float64
}

// NewFractalNoise создаёт генератор шума. Количество октав ограничивается [1, MaxOctaves].
func NewFractalNoise(cfg NoiseConfig) *FractalNoise {
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	if cfg.Octaves > MaxOctaves {
		cfg.Octaves = MaxOctaves
	}

	fn := &FractalNoise{
		cfg:     cfg,
		octaves: make([]*perlin.Perlin, cfg.Octaves),
	}

	// Каждая октава со своим сидом, иначе октавы повторяют друг друга
	amp, sum := 1.0, 0.0
	for i := range fn.octaves {
		// alpha и beta не влияют на одну октаву
		fn.octaves[i] = perlin.NewPerlin(2, 2, 1, cfg.Seed+int64(i))
		sum += amp
		amp *= cfg.Gain
	}
	fn.bounding = 1 / sum

	return fn
}

// Config возвращает параметры генератора (неизменны на всё время жизни)
func (fn *FractalNoise) Config() NoiseConfig {
	return fn.cfg
}

// Noise2D возвращает значение шума в точке (x, z), приведённое к [-1, 1].
// Детерминирован по (конфигурация, x, z) и непрерывен по x, z.
func (fn *FractalNoise) Noise2D(x, z float64) float64 {
	x *= fn.cfg.Frequency
	z *= fn.cfg.Frequency

	sum, amp := 0.0, 1.0
	for _, octave := range fn.octaves {
		sum += octave.Noise2D(wrap(x), wrap(z)) * amp
		x *= fn.cfg.Lacunarity
		z *= fn.cfg.Lacunarity
		amp *= fn.cfg.Gain
	}

	n := sum * fn.bounding / perlinAmplitude
	return clamp(n, -1, 1)
}

// wrap приводит координату к [0, period). Шум периодичен с этим периодом,
// а go-perlin корректен только для неотрицательных координат решётки.
func wrap(v float64) float64 {
	v = math.Mod(v, period)
	if v < 0 {
		v += period
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
