package world

import (
	"sync"

	"github.com/annel0/voxelworld/internal/world/block"
)

// Chunk - вертикальная колонна блоков Size x Height x Size.
// Координата неизменна; блоки, флаг dirty и версия защищены mu,
// меш защищён отдельной блокировкой, чтобы чтение соседей при параллельном
// построении мешей не ждало замены меша.
type Chunk struct {
	coord ChunkCoord
	dims  Dimensions

	mu      sync.RWMutex
	blocks  []block.BlockType // индекс y*Size*Size + z*Size + x
	dirty   bool
	version uint64 // растёт при каждом изменении блоков

	meshMu      sync.RWMutex
	mesh        Mesh
	meshVersion uint64
}

// NewChunk создаёт чанк, заполненный воздухом. Новый чанк помечен dirty.
func NewChunk(coord ChunkCoord, dims Dimensions) *Chunk {
	return &Chunk{
		coord:  coord,
		dims:   dims,
		blocks: make([]block.BlockType, dims.Volume()),
		dirty:  true,
	}
}

// Coord возвращает координату чанка
func (c *Chunk) Coord() ChunkCoord {
	return c.coord
}

// Dimensions возвращает размеры чанка
func (c *Chunk) Dimensions() Dimensions {
	return c.dims
}

// InBounds проверяет, что локальные координаты внутри чанка
func (c *Chunk) InBounds(x, y, z int) bool {
	return x >= 0 && x < c.dims.Size &&
		y >= 0 && y < c.dims.Height &&
		z >= 0 && z < c.dims.Size
}

func (c *Chunk) index(x, y, z int) int {
	return y*c.dims.Size*c.dims.Size + z*c.dims.Size + x
}

// GetBlock возвращает блок по локальным координатам. Вне чанка - воздух.
func (c *Chunk) GetBlock(x, y, z int) block.BlockType {
	if !c.InBounds(x, y, z) {
		return block.Air
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[c.index(x, y, z)]
}

// SetBlock устанавливает блок по локальным координатам. Вне чанка ничего не делает.
func (c *Chunk) SetBlock(x, y, z int, t block.BlockType) {
	if !c.InBounds(x, y, z) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.blocks[c.index(x, y, z)] = t
	c.dirty = true
	c.version++
}

// Fill заполняет весь чанк одним типом блока
func (c *Chunk) Fill(t block.BlockType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.blocks {
		c.blocks[i] = t
	}
	c.dirty = true
	c.version++
}

// CountNonAir возвращает количество непустых ячеек
func (c *Chunk) CountNonAir() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, t := range c.blocks {
		if t != block.Air {
			n++
		}
	}
	return n
}

// IsDirty сообщает, устарел ли меш
func (c *Chunk) IsDirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// MarkDirty помечает меш устаревшим (например, изменился соседний чанк)
func (c *Chunk) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dirty = true
	c.version++
}

// Version возвращает счётчик изменений
func (c *Chunk) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// snapshot копирует блоки вместе с текущей версией
func (c *Chunk) snapshot() ([]block.BlockType, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]block.BlockType, len(c.blocks))
	copy(blocks, c.blocks)
	return blocks, c.version
}

// writeColumns заполняет чанк под одной блокировкой записи.
// fn вызывается для каждой колонки (x, z) и пишет в column[y].
func (c *Chunk) writeColumns(fn func(x, z int, column []block.BlockType)) {
	column := make([]block.BlockType, c.dims.Height)

	c.mu.Lock()
	defer c.mu.Unlock()

	for z := 0; z < c.dims.Size; z++ {
		for x := 0; x < c.dims.Size; x++ {
			for y := range column {
				column[y] = c.blocks[c.index(x, y, z)]
			}
			fn(x, z, column)
			for y, t := range column {
				c.blocks[c.index(x, y, z)] = t
			}
		}
	}
	c.dirty = true
	c.version++
}

// Mesh возвращает последний построенный меш
func (c *Chunk) Mesh() Mesh {
	c.meshMu.RLock()
	defer c.meshMu.RUnlock()
	return c.mesh
}

// MeshValid сообщает, соответствует ли меш текущим блокам
func (c *Chunk) MeshValid() bool {
	return !c.IsDirty()
}

// storeMesh сохраняет меш, построенный по снимку версии version.
// Флаг dirty снимается только если после снимка блоки не менялись.
// Возвращает false, если уже сохранён меш более новой версии.
func (c *Chunk) storeMesh(m Mesh, version uint64) bool {
	c.meshMu.Lock()
	stored := version >= c.meshVersion
	if stored {
		c.mesh = m
		c.meshVersion = version
	}
	c.meshMu.Unlock()

	if !stored {
		return false
	}

	c.mu.Lock()
	if c.version == version {
		c.dirty = false
	}
	c.mu.Unlock()
	return true
}
