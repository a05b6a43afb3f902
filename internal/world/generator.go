package world

import (
	"fmt"
	"math"

	"github.com/annel0/voxelworld/internal/util"
	"github.com/annel0/voxelworld/internal/world/block"
)

// Глубина слоя земли под травой
const DirtDepth = 4

// TerrainConfig задаёт параметры рельефа
type TerrainConfig struct {
	Noise      util.NoiseConfig `yaml:"noise"`
	BaseHeight int              `yaml:"base_height"` // высота при нулевом шуме минус Amplitude
	Amplitude  float64          `yaml:"amplitude"`
}

// DefaultTerrainConfig возвращает стандартный рельеф: высоты около 64..128
func DefaultTerrainConfig() TerrainConfig {
	return TerrainConfig{
		Noise:      util.DefaultNoiseConfig(),
		BaseHeight: 64,
		Amplitude:  32,
	}
}

// Validate проверяет параметры рельефа
func (c TerrainConfig) Validate() error {
	if err := c.Noise.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if c.BaseHeight < 0 {
		return fmt.Errorf("%w: base height %d", ErrInvalidOptions, c.BaseHeight)
	}
	if c.Amplitude < 0 || math.IsNaN(c.Amplitude) {
		return fmt.Errorf("%w: amplitude %g", ErrInvalidOptions, c.Amplitude)
	}
	return nil
}

// TerrainGenerator заполняет чанки рельефом по карте высот.
// Детерминирован: одинаковые параметры и координаты дают одинаковые блоки.
type TerrainGenerator struct {
	cfg   TerrainConfig
	dims  Dimensions
	noise *util.FractalNoise
}

// NewTerrainGenerator создаёт генератор рельефа для чанков размера dims
func NewTerrainGenerator(cfg TerrainConfig, dims Dimensions) (*TerrainGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := dims.Validate(); err != nil {
		return nil, err
	}

	return &TerrainGenerator{
		cfg:   cfg,
		dims:  dims,
		noise: util.NewFractalNoise(cfg.Noise),
	}, nil
}

// Config возвращает параметры генератора
func (g *TerrainGenerator) Config() TerrainConfig {
	return g.cfg
}

// HeightAt возвращает высоту поверхности (y травы) в мировой колонке (wx, wz)
func (g *TerrainGenerator) HeightAt(wx, wz int) int {
	n := g.noise.Noise2D(float64(wx), float64(wz))
	h := int(math.Floor((n+1)*g.cfg.Amplitude + float64(g.cfg.BaseHeight)))

	if h < 0 {
		return 0
	}
	if h > g.dims.Height-1 {
		return g.dims.Height - 1
	}
	return h
}

// ColumnBlock возвращает блок на высоте y в колонке с поверхностью h
func ColumnBlock(y, h int) block.BlockType {
	switch {
	case y > h:
		return block.Air
	case y == h:
		return block.Grass
	case y >= h-DirtDepth:
		return block.Dirt
	default:
		return block.Stone
	}
}

// Generate заполняет чанк рельефом и помечает его dirty
func (g *TerrainGenerator) Generate(c *Chunk) {
	origin := c.Coord().Offset(c.Dimensions())

	c.writeColumns(func(x, z int, column []block.BlockType) {
		h := g.HeightAt(origin.X+x, origin.Z+z)
		for y := range column {
			column[y] = ColumnBlock(y, h)
		}
	})
}
