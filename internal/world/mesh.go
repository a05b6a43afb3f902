package world

import (
	"github.com/annel0/voxelworld/internal/world/block"
)

// Vertex - вершина меша чанка в локальных координатах чанка
type Vertex struct {
	Position [3]float32
	TexCoord [2]float32
	Normal   [3]float32
	Color    [4]float32
}

// Mesh - треугольный меш: 4 вершины и 6 индексов на видимую грань
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// FaceCount возвращает количество граней в меше
func (m Mesh) FaceCount() int {
	return len(m.Vertices) / 4
}

// Empty сообщает, что в меше нет граней
func (m Mesh) Empty() bool {
	return len(m.Vertices) == 0
}

// NeighborResolver отвечает на запросы блоков за пределами чанка (мировые координаты).
// Чанк не владеет источником и не создаёт через него новые чанки.
type NeighborResolver interface {
	NeighborBlock(wx, wy, wz int) block.BlockType
}

// faceNormals - внешние нормали граней
var faceNormals = [block.FaceCount][3]float32{
	block.Front:  {0, 0, 1},
	block.Back:   {0, 0, -1},
	block.Left:   {-1, 0, 0},
	block.Right:  {1, 0, 0},
	block.Top:    {0, 1, 0},
	block.Bottom: {0, -1, 0},
}

// faceCorners - углы граней относительно угла блока, обход против часовой
// стрелки при взгляде снаружи
var faceCorners = [block.FaceCount][4][3]float32{
	block.Front:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	block.Back:   {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	block.Left:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	block.Right:  {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	block.Top:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	block.Bottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
}

// texCorners - углы тайла, совпадают по порядку с faceCorners
var texCorners = [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

// quadIndices - два треугольника грани
var quadIndices = [6]uint32{0, 1, 2, 0, 2, 3}

var white = [4]float32{1, 1, 1, 1}

// GenerateMesh перестраивает меш чанка с нуля.
//
// Грань блока видна, если соседняя ячейка - воздух или прозрачный блок.
// Соседи выше и ниже чанка считаются воздухом, соседи за пределами по X/Z
// запрашиваются у res в мировых координатах (nil - воздух).
// Новый меш полностью заменяет старый; dirty снимается, только если блоки
// не менялись во время построения. Если параллельно уже сохранён меш более
// новой версии, возвращается он.
func (c *Chunk) GenerateMesh(reg *block.Registry, res NeighborResolver) Mesh {
	m, _ := c.rebuildMesh(reg, res)
	return m
}

// rebuildMesh строит меш и сообщает, был ли он сохранён.
// Устаревший меш не сохраняется; вместо него возвращается текущий.
func (c *Chunk) rebuildMesh(reg *block.Registry, res NeighborResolver) (Mesh, bool) {
	blocks, version := c.snapshot()
	m := buildMesh(c.coord, c.dims, blocks, reg, res)
	if !c.storeMesh(m, version) {
		return c.Mesh(), false
	}
	return m, true
}

func buildMesh(coord ChunkCoord, dims Dimensions, blocks []block.BlockType, reg *block.Registry, res NeighborResolver) Mesh {
	size, height := dims.Size, dims.Height
	origin := coord.Offset(dims)

	neighbor := func(x, y, z int) block.BlockType {
		if y < 0 || y >= height {
			return block.Air
		}
		if x >= 0 && x < size && z >= 0 && z < size {
			return blocks[y*size*size+z*size+x]
		}
		if res == nil {
			return block.Air
		}
		return res.NeighborBlock(origin.X+x, y, origin.Z+z)
	}

	var m Mesh
	for y := 0; y < height; y++ {
		for z := 0; z < size; z++ {
			for x := 0; x < size; x++ {
				t := blocks[y*size*size+z*size+x]
				if reg.IsAir(t) {
					continue
				}

				for _, face := range block.Faces {
					dx, dy, dz := face.Offset()
					n := neighbor(x+dx, y+dy, z+dz)
					if n != block.Air && !reg.IsTransparent(n) {
						continue
					}
					appendFace(&m, x, y, z, face, reg.TextureOrigin(t, face))
				}
			}
		}
	}
	return m
}

// appendFace добавляет 4 вершины и 6 индексов грани
func appendFace(m *Mesh, x, y, z int, face block.Face, origin block.UV) {
	base := uint32(len(m.Vertices))
	fx, fy, fz := float32(x), float32(y), float32(z)

	for i, corner := range faceCorners[face] {
		m.Vertices = append(m.Vertices, Vertex{
			Position: [3]float32{fx + corner[0], fy + corner[1], fz + corner[2]},
			TexCoord: [2]float32{
				texCorners[i][0]*block.TileSize + origin.U,
				texCorners[i][1]*block.TileSize + origin.V,
			},
			Normal: faceNormals[face],
			Color:  white,
		})
	}
	for _, idx := range quadIndices {
		m.Indices = append(m.Indices, base+idx)
	}
}
