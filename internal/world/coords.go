package world

import (
	"fmt"

	"github.com/annel0/voxelworld/internal/vec"
)

// Dimensions - размеры чанка в блоках. Size по X и Z, Height по Y.
type Dimensions struct {
	Size   int `yaml:"size"`
	Height int `yaml:"height"`
}

// DefaultDimensions - стандартный чанк 16x256x16
var DefaultDimensions = Dimensions{Size: 16, Height: 256}

// Volume возвращает количество ячеек в чанке
func (d Dimensions) Volume() int {
	return d.Size * d.Size * d.Height
}

// Validate проверяет размеры
func (d Dimensions) Validate() error {
	if d.Size < 1 || d.Height < 1 {
		return fmt.Errorf("%w: chunk dimensions %dx%d", ErrInvalidOptions, d.Size, d.Height)
	}
	return nil
}

// ChunkCoord - координата чанка на горизонтальной плоскости.
// Сравнимая структура, используется как ключ карты.
type ChunkCoord struct {
	X int
	Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Neighbors возвращает соседей по осям: -X, +X, -Z, +Z
func (c ChunkCoord) Neighbors() [4]ChunkCoord {
	return [4]ChunkCoord{
		{c.X - 1, c.Z},
		{c.X + 1, c.Z},
		{c.X, c.Z - 1},
		{c.X, c.Z + 1},
	}
}

// Offset возвращает мировые координаты угла чанка (блок 0,0,0)
func (c ChunkCoord) Offset(d Dimensions) vec.Vec3 {
	return vec.Vec3{X: c.X * d.Size, Y: 0, Z: c.Z * d.Size}
}

// Less задаёт порядок: сначала Z, затем X
func (c ChunkCoord) Less(o ChunkCoord) bool {
	if c.Z != o.Z {
		return c.Z < o.Z
	}
	return c.X < o.X
}

// WorldToChunkCoord возвращает чанк, содержащий мировую колонку (wx, wz).
// Деление с округлением вниз: wx = -1 лежит в чанке -1.
func WorldToChunkCoord(wx, wz, size int) ChunkCoord {
	return ChunkCoord{X: vec.FloorDiv(wx, size), Z: vec.FloorDiv(wz, size)}
}

// WorldToLocal переводит мировые координаты в локальные координаты чанка.
// Для любого w: 0 <= l < size и c*size + l == w.
func WorldToLocal(wx, wy, wz, size int) (lx, ly, lz int) {
	return vec.FloorMod(wx, size), wy, vec.FloorMod(wz, size)
}
