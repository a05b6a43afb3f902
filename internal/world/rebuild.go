package world

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxelworld/internal/logging"
)

// meshJob - задача построения меша одного чанка
type meshJob struct {
	idx   int
	chunk *Chunk
}

// RebuildDirty перестраивает меши всех dirty чанков пулом воркеров.
// Каждый чанк строится независимо, соседей читает через NeighborBlock.
// Результат упорядочен по координате. При отмене контекста возвращает
// уже построенные меши и ошибку контекста.
func (w *World) RebuildDirty(ctx context.Context) ([]MeshUpdate, error) {
	dirty := w.DirtyChunks()
	if len(dirty) == 0 {
		return nil, nil
	}

	ctx, span := w.tracer.Start(ctx, "world.RebuildDirty", trace.WithAttributes(
		attribute.String("world.id", w.id.String()),
		attribute.Int("chunks.dirty", len(dirty)),
	))
	defer span.End()

	workerCount := w.meshWorkers
	if workerCount > len(dirty) {
		workerCount = len(dirty)
	}

	jobs := make(chan meshJob, len(dirty))
	results := make([]*MeshUpdate, len(dirty))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go w.meshWorker(ctx, jobs, results, &wg)
	}

	for i, c := range dirty {
		jobs <- meshJob{idx: i, chunk: c}
	}
	close(jobs)
	wg.Wait()

	// results уже упорядочены как dirty
	updates := make([]MeshUpdate, 0, len(dirty))
	for _, r := range results {
		if r != nil {
			updates = append(updates, *r)
		}
	}

	span.SetAttributes(attribute.Int("chunks.rebuilt", len(updates)))
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return updates, err
	}
	return updates, nil
}

// meshWorker обрабатывает задачи построения мешей
func (w *World) meshWorker(ctx context.Context, jobs <-chan meshJob, results []*MeshUpdate, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		// После отмены дочитываем канал, не строя меши
		if ctx.Err() != nil {
			continue
		}

		start := time.Now()
		c := job.chunk
		m, stored := c.rebuildMesh(w.registry, w)
		took := time.Since(start)
		if !stored {
			// Параллельная перестройка уже отдала более новый меш
			continue
		}

		w.observer.MeshBuilt(c.coord, len(m.Vertices), len(m.Indices), took)
		logging.LogMeshBuilt(w.logger, c.coord.X, c.coord.Z, len(m.Vertices), len(m.Indices))

		results[job.idx] = &MeshUpdate{
			Coord:  c.coord,
			Offset: c.coord.Offset(w.dims),
			Mesh:   m,
		}
	}
}
