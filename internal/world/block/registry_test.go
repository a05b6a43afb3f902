package block

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryProperties(t *testing.T) {
	r := Default()

	assert.True(t, r.IsTransparent(Air))
	assert.False(t, r.IsSolid(Air))

	assert.False(t, r.IsTransparent(Stone))
	assert.True(t, r.IsSolid(Stone))

	assert.True(t, r.IsTransparent(Water))
	assert.True(t, r.IsLiquid(Water))
	assert.False(t, r.IsSolid(Water))

	// Листва полупрозрачна, но твёрдая
	assert.True(t, r.IsTransparent(Leaves))
	assert.True(t, r.IsSolid(Leaves))

	assert.Equal(t, "Grass", r.Name(Grass))
	assert.Equal(t, []BlockType{Air, Grass, Dirt, Stone, Sand, Water, Wood, Leaves}, r.Types())
}

func TestDefaultTextureOrigins(t *testing.T) {
	r := Default()

	assert.Equal(t, UV{0, 0}, r.TextureOrigin(Grass, Front))
	assert.Equal(t, UV{0, 0.25}, r.TextureOrigin(Grass, Top))
	assert.Equal(t, UV{0.25, 0}, r.TextureOrigin(Grass, Bottom))

	assert.Equal(t, UV{0.5, 0}, r.TextureOrigin(Stone, Left))
	assert.Equal(t, UV{0.75, 0}, r.TextureOrigin(Sand, Right))

	assert.Equal(t, UV{0.25, 0.25}, r.TextureOrigin(Wood, Back))
	assert.Equal(t, UV{0.5, 0.25}, r.TextureOrigin(Wood, Top))
	assert.Equal(t, UV{0.5, 0.25}, r.TextureOrigin(Wood, Bottom))

	assert.Equal(t, UV{}, r.TextureOrigin(Stone, FaceCount), "несуществующая грань")
}

func TestUnknownTypeFallsBackToAir(t *testing.T) {
	r := Default()
	unknown := BlockType(200)

	assert.False(t, r.Registered(unknown))
	assert.True(t, r.IsTransparent(unknown))
	assert.False(t, r.IsSolid(unknown))
	assert.Equal(t, "Air", r.Name(unknown))
	assert.Equal(t, r.Properties(Air), r.Properties(unknown))

	// Повторные обращения не дублируют запись
	r.IsSolid(unknown)
	r.IsSolid(Count)
	assert.Equal(t, []BlockType{Count, unknown}, r.UnknownTypes())
}

func TestUnknownTypeReportingConcurrent(t *testing.T) {
	r := Default()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.IsTransparent(BlockType(100))
				r.IsTransparent(Stone)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, []BlockType{100}, r.UnknownTypes())
}

func TestNewRegistryValidation(t *testing.T) {
	_, err := NewRegistry(map[BlockType]Properties{Stone: {Name: "Stone", Solid: true}})
	assert.True(t, errors.Is(err, ErrMissingAir))

	_, err = NewRegistry(map[BlockType]Properties{
		Air:   {Name: "Air", Transparent: true},
		Stone: {Name: "Stone", Textures: UniformTextures(UV{1, 0})},
	})
	assert.True(t, errors.Is(err, ErrInvalidTexture))

	nan := float32(math.NaN())
	_, err = NewRegistry(map[BlockType]Properties{
		Air:   {Name: "Air", Transparent: true},
		Stone: {Name: "Stone", Textures: UniformTextures(UV{nan, 0})},
	})
	assert.True(t, errors.Is(err, ErrInvalidTexture), "NaN в UV должен отклоняться")
}

func TestParseRegistryRejectsNaN(t *testing.T) {
	_, err := ParseRegistry([]byte(`
blocks:
  - id: 0
    name: Air
    transparent: true
  - id: 3
    name: Stone
    textures:
      all: [.nan, 0]
`))
	assert.True(t, errors.Is(err, ErrInvalidTexture))
}

func TestNewRegistryCopiesDefinitions(t *testing.T) {
	defs := DefaultDefinitions()
	r, err := NewRegistry(defs)
	require.NoError(t, err)

	defs[Stone] = Properties{Name: "Changed", Transparent: true}
	assert.Equal(t, "Stone", r.Name(Stone))
	assert.False(t, r.IsTransparent(Stone))
}

const testBlocksYAML = `
blocks:
  - id: 0
    name: Air
    transparent: true
  - id: 1
    name: Grass
    solid: true
    textures:
      all: [0.25, 0]
      side: [0, 0]
      top: [0, 0.25]
  - id: 5
    name: Water
    transparent: true
    liquid: true
    textures:
      all: [0, 0.25]
`

func TestParseRegistry(t *testing.T) {
	r, err := ParseRegistry([]byte(testBlocksYAML))
	require.NoError(t, err)

	assert.Equal(t, []BlockType{Air, Grass, Water}, r.Types())

	// all -> side -> конкретная грань
	assert.Equal(t, UV{0, 0}, r.TextureOrigin(Grass, Left))
	assert.Equal(t, UV{0, 0.25}, r.TextureOrigin(Grass, Top))
	assert.Equal(t, UV{0.25, 0}, r.TextureOrigin(Grass, Bottom))

	assert.True(t, r.IsLiquid(Water))
	assert.False(t, r.Registered(Stone))
}

func TestParseRegistryErrors(t *testing.T) {
	cases := map[string]string{
		"bad id":       "blocks:\n  - id: 300\n    name: X\n",
		"duplicate":    "blocks:\n  - id: 0\n  - id: 0\n",
		"bad key":      "blocks:\n  - id: 0\n    textures:\n      diagonal: [0, 0]\n",
		"bad uv arity": "blocks:\n  - id: 0\n    textures:\n      top: [0]\n",
		"no air":       "blocks:\n  - id: 3\n    name: Stone\n",
		"not yaml":     "blocks: [",
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testBlocksYAML), 0o644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "Grass", r.Name(Grass))

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFaceOffsets(t *testing.T) {
	for _, f := range Faces {
		dx, dy, dz := f.Offset()
		assert.Equal(t, 1, abs(dx)+abs(dy)+abs(dz), f.String())
	}
	dx, dy, dz := Front.Offset()
	assert.Equal(t, [3]int{0, 0, 1}, [3]int{dx, dy, dz})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestSampleBlockTableMatchesDefaults(t *testing.T) {
	r, err := LoadRegistry(filepath.Join("..", "..", "..", "assets", "blocks.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Types(), r.Types())
	for _, bt := range def.Types() {
		assert.Equal(t, def.Properties(bt), r.Properties(bt), bt.String())
	}
}
