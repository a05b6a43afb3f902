package world

import "time"

// Observer получает события мира для метрик.
// Вызывается из горутин генерации и построения мешей, реализация должна быть потокобезопасной.
type Observer interface {
	ChunkGenerated(coord ChunkCoord, took time.Duration)
	MeshBuilt(coord ChunkCoord, vertices, indices int, took time.Duration)
	ChunksLoaded(n int)
}

// NopObserver ничего не делает
type NopObserver struct{}

func (NopObserver) ChunkGenerated(ChunkCoord, time.Duration) {}
func (NopObserver) MeshBuilt(ChunkCoord, int, int, time.Duration) {}
func (NopObserver) ChunksLoaded(int) {}
