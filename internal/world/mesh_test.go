package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelworld/internal/world/block"
)

// fixedResolver отвечает одним типом блока и запоминает запросы
type fixedResolver struct {
	mu    sync.Mutex
	t     block.BlockType
	calls [][3]int
}

func (r *fixedResolver) NeighborBlock(wx, wy, wz int) block.BlockType {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, [3]int{wx, wy, wz})
	return r.t
}

func TestMeshEmptyChunk(t *testing.T) {
	chunk := NewChunk(ChunkCoord{}, smallDims)
	m := chunk.GenerateMesh(block.Default(), nil)

	assert.True(t, m.Empty())
	assert.Empty(t, m.Indices)
}

func TestMeshSingleBlock(t *testing.T) {
	chunk := NewChunk(ChunkCoord{}, smallDims)
	chunk.SetBlock(1, 2, 3, block.Stone)

	m := chunk.GenerateMesh(block.Default(), nil)
	assert.Equal(t, 6, m.FaceCount())
	assert.Len(t, m.Vertices, 24)
	assert.Len(t, m.Indices, 36)

	// Первая грань - Front (+Z)
	front := m.Vertices[:4]
	assert.Equal(t, [3]float32{1, 2, 4}, front[0].Position)
	assert.Equal(t, [3]float32{2, 2, 4}, front[1].Position)
	assert.Equal(t, [3]float32{2, 3, 4}, front[2].Position)
	assert.Equal(t, [3]float32{1, 3, 4}, front[3].Position)

	// Камень: тайл (0.5, 0)
	assert.Equal(t, [2]float32{0.5, 0.25}, front[0].TexCoord)
	assert.Equal(t, [2]float32{0.75, 0.25}, front[1].TexCoord)
	assert.Equal(t, [2]float32{0.75, 0}, front[2].TexCoord)
	assert.Equal(t, [2]float32{0.5, 0}, front[3].TexCoord)

	for _, v := range m.Vertices {
		assert.Equal(t, [4]float32{1, 1, 1, 1}, v.Color)
	}

	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices[:6])
	assert.Equal(t, []uint32{4, 5, 6, 4, 6, 7}, m.Indices[6:12])
}

func TestMeshFaceOrderAndNormals(t *testing.T) {
	chunk := NewChunk(ChunkCoord{}, smallDims)
	chunk.SetBlock(0, 0, 0, block.Grass)

	m := chunk.GenerateMesh(block.Default(), nil)
	require.Equal(t, 6, m.FaceCount())

	want := [6][3]float32{{0, 0, 1}, {0, 0, -1}, {-1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0}}
	for f := 0; f < 6; f++ {
		for i := 0; i < 4; i++ {
			assert.Equal(t, want[f], m.Vertices[f*4+i].Normal, "грань %d", f)
		}
	}

	// Трава: сверху трава, снизу земля
	assert.Equal(t, [2]float32{0, 0.25}, m.Vertices[4*int(block.Top)+3].TexCoord)
	assert.Equal(t, [2]float32{0.25, 0}, m.Vertices[4*int(block.Bottom)+3].TexCoord)
}

func TestMeshWindingMatchesNormal(t *testing.T) {
	chunk := NewChunk(ChunkCoord{}, smallDims)
	chunk.SetBlock(2, 2, 2, block.Dirt)
	m := chunk.GenerateMesh(block.Default(), nil)

	for f := 0; f < m.FaceCount(); f++ {
		v0 := m.Vertices[f*4].Position
		v1 := m.Vertices[f*4+1].Position
		v2 := m.Vertices[f*4+2].Position
		e1 := [3]float32{v1[0] - v0[0], v1[1] - v0[1], v1[2] - v0[2]}
		e2 := [3]float32{v2[0] - v0[0], v2[1] - v0[1], v2[2] - v0[2]}
		cross := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		n := m.Vertices[f*4].Normal
		dot := cross[0]*n[0] + cross[1]*n[1] + cross[2]*n[2]
		assert.Greater(t, dot, float32(0), "грань %d повёрнута внутрь", f)
	}
}

func TestMeshSolidChunkShell(t *testing.T) {
	chunk := NewChunk(ChunkCoord{}, smallDims)
	chunk.Fill(block.Stone)

	m := chunk.GenerateMesh(block.Default(), nil)

	// Только внешняя оболочка: верх и низ Size*Size, четыре бока Size*Height
	s, h := smallDims.Size, smallDims.Height
	assert.Equal(t, 2*s*s+4*s*h, m.FaceCount())
}

func TestMeshAdjacentBlocks(t *testing.T) {
	reg := block.Default()

	cases := []struct {
		name  string
		a, b  block.BlockType
		faces int
	}{
		{"opaque pair", block.Stone, block.Stone, 10},
		{"water pair is double sided", block.Water, block.Water, 12},
		{"stone next to leaves", block.Stone, block.Leaves, 11},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunk := NewChunk(ChunkCoord{}, smallDims)
			chunk.SetBlock(1, 1, 1, tc.a)
			chunk.SetBlock(2, 1, 1, tc.b)
			assert.Equal(t, tc.faces, chunk.GenerateMesh(reg, nil).FaceCount())
		})
	}
}

func TestMeshResolverAtBoundary(t *testing.T) {
	res := &fixedResolver{t: block.Stone}
	chunk := NewChunk(ChunkCoord{X: 1, Z: -1}, smallDims)
	chunk.SetBlock(3, 0, 0, block.Dirt)

	m := chunk.GenerateMesh(block.Default(), res)

	// +X и -Z закрыты соседями-камнями
	assert.Equal(t, 4, m.FaceCount())
	// Мировые координаты: origin (4, 0, -4)
	assert.ElementsMatch(t, [][3]int{{8, 0, -4}, {7, 0, -5}}, res.calls)
}

func TestMeshVerticalNeighborsAreAir(t *testing.T) {
	res := &fixedResolver{t: block.Stone}
	chunk := NewChunk(ChunkCoord{}, smallDims)
	chunk.SetBlock(1, 0, 1, block.Stone)
	chunk.SetBlock(1, smallDims.Height-1, 1, block.Stone)

	m := chunk.GenerateMesh(block.Default(), res)
	assert.Equal(t, 12, m.FaceCount())
	assert.Empty(t, res.calls, "внутренние блоки не запрашивают соседей")
}

func TestMeshSkipsUnknownTypes(t *testing.T) {
	reg := block.Default()
	chunk := NewChunk(ChunkCoord{}, smallDims)
	chunk.SetBlock(1, 1, 1, block.BlockType(99))
	chunk.SetBlock(2, 1, 1, block.Stone)

	m := chunk.GenerateMesh(reg, nil)
	assert.Equal(t, 6, m.FaceCount(), "неизвестный тип ведёт себя как воздух")
	assert.Equal(t, []block.BlockType{99}, reg.UnknownTypes())
}

func TestMeshDeterministic(t *testing.T) {
	gen, err := NewTerrainGenerator(DefaultTerrainConfig(), DefaultDimensions)
	require.NoError(t, err)

	chunk := NewChunk(ChunkCoord{X: 2, Z: -3}, DefaultDimensions)
	gen.Generate(chunk)

	reg := block.Default()
	a := chunk.GenerateMesh(reg, nil)
	b := chunk.GenerateMesh(reg, nil)
	assert.Equal(t, a, b)
}

func BenchmarkGenerateMesh(b *testing.B) {
	gen, err := NewTerrainGenerator(DefaultTerrainConfig(), DefaultDimensions)
	require.NoError(b, err)

	chunk := NewChunk(ChunkCoord{}, DefaultDimensions)
	gen.Generate(chunk)
	reg := block.Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chunk.GenerateMesh(reg, nil)
	}
}
