package world

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
)

const tracerName = "github.com/annel0/voxelworld/internal/world"

// Ошибки мира
var (
	ErrWorldFull      = errors.New("world: loaded chunk limit reached")
	ErrInvalidRadius  = errors.New("world: negative load radius")
	ErrInvalidOptions = errors.New("world: invalid options")
)

// Options задаёт параметры мира. Нулевые значения заменяются стандартными.
type Options struct {
	Dimensions Dimensions
	Terrain    TerrainConfig
	Registry   *block.Registry

	// MaxLoadedChunks ограничивает число загруженных чанков (0 - без ограничения)
	MaxLoadedChunks int
	// MaxChunksPerUpdate ограничивает число новых чанков за один UpdateChunks (0 - без ограничения)
	MaxChunksPerUpdate int
	// MeshWorkers - количество горутин построения мешей (0 - по числу CPU)
	MeshWorkers int

	Observer Observer
}

// UpdateStats - итог одного вызова UpdateChunks
type UpdateStats struct {
	Center   ChunkCoord
	Ensured  int // чанков в радиусе, которые уже были загружены
	Created  int // созданных в этом вызове
	Deferred int // отложенных из-за MaxChunksPerUpdate
	Loaded   int // всего загружено после вызова
}

// MeshUpdate - новый меш чанка для передачи рендереру
type MeshUpdate struct {
	Coord  ChunkCoord
	Offset vec.Vec3 // мировая позиция угла чанка
	Mesh   Mesh
}

// World - разреженное хранилище чанков, индексированное координатой чанка.
// Единственный владелец чанков; все методы безопасны для параллельного вызова.
type World struct {
	id        uuid.UUID
	dims      Dimensions
	registry  *block.Registry
	generator *TerrainGenerator

	maxLoaded    int
	maxPerUpdate int
	meshWorkers  int

	observer Observer
	logger   *logging.Logger
	tracer   trace.Tracer

	mu     sync.RWMutex
	chunks map[ChunkCoord]*Chunk
}

// New создаёт пустой мир
func New(opts Options) (*World, error) {
	if opts.Dimensions == (Dimensions{}) {
		opts.Dimensions = DefaultDimensions
	}
	if opts.Terrain == (TerrainConfig{}) {
		opts.Terrain = DefaultTerrainConfig()
	}
	if opts.Registry == nil {
		opts.Registry = block.Default()
	}
	if opts.MeshWorkers <= 0 {
		opts.MeshWorkers = runtime.NumCPU()
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	if opts.MaxLoadedChunks < 0 || opts.MaxChunksPerUpdate < 0 {
		return nil, fmt.Errorf("%w: negative chunk limits", ErrInvalidOptions)
	}

	gen, err := NewTerrainGenerator(opts.Terrain, opts.Dimensions)
	if err != nil {
		return nil, err
	}

	w := &World{
		id:           uuid.New(),
		dims:         opts.Dimensions,
		registry:     opts.Registry,
		generator:    gen,
		maxLoaded:    opts.MaxLoadedChunks,
		maxPerUpdate: opts.MaxChunksPerUpdate,
		meshWorkers:  opts.MeshWorkers,
		observer:     opts.Observer,
		logger:       logging.GetWorldLogger(),
		tracer:       otel.Tracer(tracerName),
		chunks:       make(map[ChunkCoord]*Chunk),
	}

	w.logger.Info("Мир %s создан: чанк %dx%dx%d, seed=%d, воркеров мешей=%d",
		w.id, w.dims.Size, w.dims.Height, w.dims.Size, opts.Terrain.Noise.Seed, w.meshWorkers)
	return w, nil
}

// ID возвращает идентификатор мира (для логов и метрик)
func (w *World) ID() uuid.UUID { return w.id }

// Dimensions возвращает размеры чанков мира
func (w *World) Dimensions() Dimensions { return w.dims }

// Registry возвращает реестр блоков мира
func (w *World) Registry() *block.Registry { return w.registry }

// Generator возвращает генератор рельефа
func (w *World) Generator() *TerrainGenerator { return w.generator }

// ChunkCoordOf возвращает чанк, содержащий мировую колонку (wx, wz)
func (w *World) ChunkCoordOf(wx, wz int) ChunkCoord {
	return WorldToChunkCoord(wx, wz, w.dims.Size)
}

// LocalOf переводит мировые координаты в локальные координаты чанка
func (w *World) LocalOf(wx, wy, wz int) (lx, ly, lz int) {
	return WorldToLocal(wx, wy, wz, w.dims.Size)
}

// LoadedChunk возвращает чанк, если он загружен. Не создаёт чанков.
func (w *World) LoadedChunk(cx, cz int) (*Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	c, ok := w.chunks[ChunkCoord{cx, cz}]
	return c, ok
}

// GetChunk возвращает чанк, создавая и генерируя его при необходимости.
// Повторные вызовы возвращают тот же чанк. ErrWorldFull - если достигнут MaxLoadedChunks.
func (w *World) GetChunk(cx, cz int) (*Chunk, error) {
	c, _, err := w.ensureChunk(ChunkCoord{cx, cz})
	return c, err
}

// ensureChunk возвращает чанк и признак того, что он создан этим вызовом
func (w *World) ensureChunk(coord ChunkCoord) (*Chunk, bool, error) {
	w.mu.RLock()
	c, exists := w.chunks[coord]
	full := w.maxLoaded > 0 && len(w.chunks) >= w.maxLoaded
	w.mu.RUnlock()

	if exists {
		return c, false, nil
	}
	if full {
		return nil, false, fmt.Errorf("chunk %s: %w", coord, ErrWorldFull)
	}

	// Генерируем вне блокировки мира
	start := time.Now()
	fresh := NewChunk(coord, w.dims)
	w.generator.Generate(fresh)
	took := time.Since(start)

	w.mu.Lock()
	// Проверяем ещё раз под блокировкой записи
	if c, exists := w.chunks[coord]; exists {
		w.mu.Unlock()
		return c, false, nil
	}
	if w.maxLoaded > 0 && len(w.chunks) >= w.maxLoaded {
		w.mu.Unlock()
		return nil, false, fmt.Errorf("chunk %s: %w", coord, ErrWorldFull)
	}
	w.chunks[coord] = fresh

	// Граничные грани соседей строились без этого чанка
	for _, n := range coord.Neighbors() {
		if nc, ok := w.chunks[n]; ok {
			nc.MarkDirty()
		}
	}
	w.mu.Unlock()

	w.observer.ChunkGenerated(coord, took)
	logging.LogChunkGenerated(w.logger, coord.X, coord.Z, took)
	return fresh, true, nil
}

// GetBlock возвращает блок по мировым координатам, загружая чанк при необходимости.
// Вне диапазона высот и при переполнении мира возвращает воздух.
func (w *World) GetBlock(wx, wy, wz int) block.BlockType {
	if wy < 0 || wy >= w.dims.Height {
		return block.Air
	}

	c, err := w.GetChunk(vec.FloorDiv(wx, w.dims.Size), vec.FloorDiv(wz, w.dims.Size))
	if err != nil {
		w.logger.Warn("GetBlock(%d,%d,%d): %v", wx, wy, wz, err)
		return block.Air
	}

	lx, ly, lz := w.LocalOf(wx, wy, wz)
	return c.GetBlock(lx, ly, lz)
}

// SetBlock устанавливает блок по мировым координатам, загружая чанк при необходимости.
// Блок на границе чанка помечает dirty уже загруженных соседей; соседи не создаются.
// Вне диапазона высот ничего не делает.
func (w *World) SetBlock(wx, wy, wz int, t block.BlockType) error {
	if wy < 0 || wy >= w.dims.Height {
		return nil
	}

	coord := w.ChunkCoordOf(wx, wz)
	c, err := w.GetChunk(coord.X, coord.Z)
	if err != nil {
		return err
	}

	lx, ly, lz := w.LocalOf(wx, wy, wz)
	c.SetBlock(lx, ly, lz, t)

	// Чанк размера 1 касается соседей с обеих сторон, поэтому проверки независимы
	last := w.dims.Size - 1
	if lx == 0 {
		w.markDirty(coord.X-1, coord.Z)
	}
	if lx == last {
		w.markDirty(coord.X+1, coord.Z)
	}
	if lz == 0 {
		w.markDirty(coord.X, coord.Z-1)
	}
	if lz == last {
		w.markDirty(coord.X, coord.Z+1)
	}
	return nil
}

func (w *World) markDirty(cx, cz int) {
	if c, ok := w.LoadedChunk(cx, cz); ok {
		c.MarkDirty()
	}
}

// NeighborBlock реализует NeighborResolver: блок из загруженного чанка или воздух.
// Никогда не создаёт чанков.
func (w *World) NeighborBlock(wx, wy, wz int) block.BlockType {
	if wy < 0 || wy >= w.dims.Height {
		return block.Air
	}

	coord := w.ChunkCoordOf(wx, wz)
	c, ok := w.LoadedChunk(coord.X, coord.Z)
	if !ok {
		return block.Air
	}

	lx, ly, lz := w.LocalOf(wx, wy, wz)
	return c.GetBlock(lx, ly, lz)
}

// UpdateChunks загружает все чанки в квадрате радиуса radius вокруг чанка наблюдателя.
// Чанки создаются кольцами от центра. Чанки не выгружаются.
func (w *World) UpdateChunks(ctx context.Context, observer vec.Vec3Float, radius int) (UpdateStats, error) {
	if radius < 0 {
		return UpdateStats{}, fmt.Errorf("%w: %d", ErrInvalidRadius, radius)
	}

	pos := observer.Floor()
	center := w.ChunkCoordOf(pos.X, pos.Z)
	stats := UpdateStats{Center: center}

	ctx, span := w.tracer.Start(ctx, "world.UpdateChunks", trace.WithAttributes(
		attribute.String("world.id", w.id.String()),
		attribute.Int("chunk.x", center.X),
		attribute.Int("chunk.z", center.Z),
		attribute.Int("radius", radius),
	))
	defer span.End()

	err := w.forEachInRadius(center, radius, func(coord ChunkCoord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := w.LoadedChunk(coord.X, coord.Z); ok {
			stats.Ensured++
			return nil
		}
		if w.maxPerUpdate > 0 && stats.Created >= w.maxPerUpdate {
			stats.Deferred++
			return nil
		}

		_, created, err := w.ensureChunk(coord)
		if err != nil {
			return err
		}
		if created {
			stats.Created++
		} else {
			stats.Ensured++
		}
		return nil
	})

	stats.Loaded = w.ChunkCount()
	w.observer.ChunksLoaded(stats.Loaded)

	span.SetAttributes(
		attribute.Int("chunks.created", stats.Created),
		attribute.Int("chunks.deferred", stats.Deferred),
		attribute.Int("chunks.loaded", stats.Loaded),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}

	if stats.Created > 0 || stats.Deferred > 0 {
		w.logger.Debug("UpdateChunks %s r=%d: создано %d, отложено %d, загружено %d",
			center, radius, stats.Created, stats.Deferred, stats.Loaded)
	}
	return stats, nil
}

// forEachInRadius обходит квадрат радиуса r кольцами от центра.
// Внутри кольца порядок: по Z, затем по X.
func (w *World) forEachInRadius(center ChunkCoord, r int, fn func(ChunkCoord) error) error {
	if err := fn(center); err != nil {
		return err
	}
	for ring := 1; ring <= r; ring++ {
		for dz := -ring; dz <= ring; dz++ {
			for dx := -ring; dx <= ring; dx++ {
				// Только клетки на границе кольца
				if dz != -ring && dz != ring && dx != -ring && dx != ring {
					continue
				}
				if err := fn(ChunkCoord{center.X + dx, center.Z + dz}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// DirtyChunks возвращает все чанки с устаревшим мешем, упорядоченные по координате
func (w *World) DirtyChunks() []*Chunk {
	w.mu.RLock()
	dirty := make([]*Chunk, 0)
	for _, c := range w.chunks {
		if c.IsDirty() {
			dirty = append(dirty, c)
		}
	}
	w.mu.RUnlock()

	sortChunks(dirty)
	return dirty
}

// Chunks возвращает все загруженные чанки, упорядоченные по координате
func (w *World) Chunks() []*Chunk {
	w.mu.RLock()
	all := make([]*Chunk, 0, len(w.chunks))
	for _, c := range w.chunks {
		all = append(all, c)
	}
	w.mu.RUnlock()

	sortChunks(all)
	return all
}

// ChunkCount возвращает количество загруженных чанков
func (w *World) ChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// UnloadChunk выгружает чанк. Соседи помечаются dirty: их граничные грани снова видны.
func (w *World) UnloadChunk(cx, cz int) bool {
	coord := ChunkCoord{cx, cz}

	w.mu.Lock()
	if _, ok := w.chunks[coord]; !ok {
		w.mu.Unlock()
		return false
	}
	delete(w.chunks, coord)
	for _, n := range coord.Neighbors() {
		if nc, ok := w.chunks[n]; ok {
			nc.MarkDirty()
		}
	}
	loaded := len(w.chunks)
	w.mu.Unlock()

	w.observer.ChunksLoaded(loaded)
	w.logger.Debug("Чанк %s выгружен, загружено %d", coord, loaded)
	return true
}

func sortChunks(chunks []*Chunk) {
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].coord.Less(chunks[j].coord)
	})
}
