package world

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelworld/internal/world/block"
)

func TestColumnBlock(t *testing.T) {
	const h = 70

	assert.Equal(t, block.Air, ColumnBlock(71, h))
	assert.Equal(t, block.Grass, ColumnBlock(70, h))
	for y := h - DirtDepth; y < h; y++ {
		assert.Equal(t, block.Dirt, ColumnBlock(y, h), "y=%d", y)
	}
	assert.Equal(t, block.Stone, ColumnBlock(h-DirtDepth-1, h))
	assert.Equal(t, block.Stone, ColumnBlock(0, h))
}

func TestTerrainConfigValidate(t *testing.T) {
	require.NoError(t, DefaultTerrainConfig().Validate())

	cfg := DefaultTerrainConfig()
	cfg.Noise.Octaves = 11
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidOptions))

	cfg = DefaultTerrainConfig()
	cfg.Amplitude = -1
	assert.Error(t, cfg.Validate())

	_, err := NewTerrainGenerator(DefaultTerrainConfig(), Dimensions{Size: 0, Height: 10})
	assert.True(t, errors.Is(err, ErrInvalidOptions))
}

func TestHeightRange(t *testing.T) {
	gen, err := NewTerrainGenerator(DefaultTerrainConfig(), DefaultDimensions)
	require.NoError(t, err)

	for x := -200; x <= 200; x += 7 {
		for z := -200; z <= 200; z += 11 {
			h := gen.HeightAt(x, z)
			if h < 64 || h > 128 {
				t.Fatalf("высота %d вне [64,128] в (%d,%d)", h, x, z)
			}
		}
	}
}

func TestHeightClampedToChunk(t *testing.T) {
	gen, err := NewTerrainGenerator(DefaultTerrainConfig(), smallDims)
	require.NoError(t, err)

	// Базовая высота 64 выше чанка высотой 8
	assert.Equal(t, smallDims.Height-1, gen.HeightAt(3, 5))

	chunk := NewChunk(ChunkCoord{X: -1, Z: 2}, smallDims)
	gen.Generate(chunk)
	assert.Equal(t, block.Grass, chunk.GetBlock(0, 7, 0))
	assert.Equal(t, block.Dirt, chunk.GetBlock(0, 3, 0))
	assert.Equal(t, block.Stone, chunk.GetBlock(0, 2, 0))
}

func TestGenerateColumns(t *testing.T) {
	gen, err := NewTerrainGenerator(DefaultTerrainConfig(), DefaultDimensions)
	require.NoError(t, err)

	coord := ChunkCoord{X: -3, Z: 7}
	chunk := NewChunk(coord, DefaultDimensions)
	chunk.GenerateMesh(block.Default(), nil)
	gen.Generate(chunk)
	assert.True(t, chunk.IsDirty(), "генерация помечает чанк dirty")

	origin := coord.Offset(DefaultDimensions)
	for z := 0; z < DefaultDimensions.Size; z++ {
		for x := 0; x < DefaultDimensions.Size; x++ {
			h := gen.HeightAt(origin.X+x, origin.Z+z)
			assert.Equal(t, block.Grass, chunk.GetBlock(x, h, z))
			assert.Equal(t, block.Air, chunk.GetBlock(x, h+1, z))
			assert.Equal(t, block.Dirt, chunk.GetBlock(x, h-1, z))
			assert.Equal(t, block.Stone, chunk.GetBlock(x, 0, z))
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	genA, err := NewTerrainGenerator(DefaultTerrainConfig(), DefaultDimensions)
	require.NoError(t, err)
	genB, err := NewTerrainGenerator(DefaultTerrainConfig(), DefaultDimensions)
	require.NoError(t, err)

	for _, coord := range []ChunkCoord{{0, 0}, {-1, -1}, {12, -40}} {
		a := NewChunk(coord, DefaultDimensions)
		b := NewChunk(coord, DefaultDimensions)
		genA.Generate(a)
		genB.Generate(b)
		assert.Equal(t, a.blocks, b.blocks, "чанк %s", coord)
	}
}

func TestGenerateSeamless(t *testing.T) {
	gen, err := NewTerrainGenerator(DefaultTerrainConfig(), DefaultDimensions)
	require.NoError(t, err)

	// Высоты считаются от мировых координат, поэтому соседние чанки стыкуются
	left := NewChunk(ChunkCoord{X: -1, Z: 0}, DefaultDimensions)
	gen.Generate(left)

	last := DefaultDimensions.Size - 1
	for z := 0; z < DefaultDimensions.Size; z++ {
		h := gen.HeightAt(-1, z)
		assert.Equal(t, block.Grass, left.GetBlock(last, h, z))
	}
}

func BenchmarkGenerate(b *testing.B) {
	gen, err := NewTerrainGenerator(DefaultTerrainConfig(), DefaultDimensions)
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gen.Generate(NewChunk(ChunkCoord{X: i, Z: -i}, DefaultDimensions))
	}
}
