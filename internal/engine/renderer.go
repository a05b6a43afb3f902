package engine

import (
	"context"
	"sync"

	"github.com/annel0/voxelworld/internal/world"
)

// CountingRenderer - рендерер без GPU: хранит последний меш каждого чанка и считает загрузки
type CountingRenderer struct {
	// Fail, если задан, вызывается перед загрузкой; ошибка отклоняет меш
	Fail func(update world.MeshUpdate) error

	mu       sync.Mutex
	uploads  int
	perChunk map[world.ChunkCoord]int
	resident map[world.ChunkCoord]world.Mesh
}

// NewCountingRenderer создаёт пустой рендерер
func NewCountingRenderer() *CountingRenderer {
	return &CountingRenderer{
		perChunk: make(map[world.ChunkCoord]int),
		resident: make(map[world.ChunkCoord]world.Mesh),
	}
}

// UploadMesh запоминает меш чанка
func (r *CountingRenderer) UploadMesh(ctx context.Context, u world.MeshUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Fail != nil {
		if err := r.Fail(u); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.uploads++
	r.perChunk[u.Coord]++
	r.resident[u.Coord] = u.Mesh
	return nil
}

// Uploads возвращает общее число успешных загрузок
func (r *CountingRenderer) Uploads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploads
}

// UploadsFor возвращает число загрузок меша чанка
func (r *CountingRenderer) UploadsFor(coord world.ChunkCoord) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.perChunk[coord]
}

// Resident возвращает последний загруженный меш чанка
func (r *CountingRenderer) Resident(coord world.ChunkCoord) (world.Mesh, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.resident[coord]
	return m, ok
}

// ResidentCount возвращает число чанков с загруженным мешем
func (r *CountingRenderer) ResidentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.resident)
}
