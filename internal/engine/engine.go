package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world"
)

const tracerName = "github.com/annel0/voxelworld/internal/engine"

// DefaultRenderDistance - радиус загрузки чанков вокруг камеры
const DefaultRenderDistance = 3

// Renderer принимает новые меши чанков (GPU-бэкенд или его заглушка)
type Renderer interface {
	UploadMesh(ctx context.Context, update world.MeshUpdate) error
}

// Camera сообщает позицию наблюдателя
type Camera interface {
	Position() vec.Vec3Float
}

// FrameObserver получает итог каждого кадра (метрики)
type FrameObserver interface {
	FrameCompleted(stats FrameStats)
}

// Options задаёт параметры движка
type Options struct {
	RenderDistance int
	Observer       FrameObserver
}

// FrameStats - итог одного кадра
type FrameStats struct {
	Frame    uint64
	TraceID  string
	Update   world.UpdateStats
	Rebuilt  int
	Uploaded int
	Failed   int
	Took     time.Duration
}

// Engine выполняет кадр: позиция камеры -> UpdateChunks -> RebuildDirty -> загрузка мешей
type Engine struct {
	id             uuid.UUID
	world          *world.World
	renderer       Renderer
	camera         Camera
	renderDistance int
	observer       FrameObserver

	frame  uint64
	logger *logging.Logger
	tracer trace.Tracer
}

// New создаёт движок. Рендерер и камера - внешние компоненты.
func New(w *world.World, r Renderer, c Camera, opts Options) (*Engine, error) {
	if w == nil || r == nil || c == nil {
		return nil, errors.New("engine: world, renderer and camera are required")
	}
	if opts.RenderDistance < 0 {
		return nil, fmt.Errorf("engine: %w: %d", world.ErrInvalidRadius, opts.RenderDistance)
	}
	if opts.RenderDistance == 0 {
		opts.RenderDistance = DefaultRenderDistance
	}

	return &Engine{
		id:             uuid.New(),
		world:          w,
		renderer:       r,
		camera:         c,
		renderDistance: opts.RenderDistance,
		observer:       opts.Observer,
		logger:         logging.GetEngineLogger(),
		tracer:         otel.Tracer(tracerName),
	}, nil
}

// ID возвращает идентификатор сессии движка
func (e *Engine) ID() uuid.UUID { return e.id }

// RenderDistance возвращает радиус загрузки в чанках
func (e *Engine) RenderDistance() int { return e.renderDistance }

// Frame выполняет один кадр.
// Ошибки загрузки мешей собираются через errors.Join; такие чанки снова
// помечаются dirty и перестраиваются в следующем кадре.
// ErrWorldFull не прерывает кадр: уже загруженные чанки перестраиваются.
// Кадры выполняются последовательно, Frame не вызывается параллельно.
func (e *Engine) Frame(ctx context.Context) (FrameStats, error) {
	start := time.Now()
	e.frame++
	stats := FrameStats{Frame: e.frame}

	ctx, span := e.tracer.Start(ctx, "engine.Frame", trace.WithAttributes(
		attribute.String("engine.id", e.id.String()),
		attribute.Int64("frame", int64(e.frame)),
	))
	defer span.End()
	stats.TraceID = traceID(span)

	var errs []error

	upd, err := e.world.UpdateChunks(ctx, e.camera.Position(), e.renderDistance)
	stats.Update = upd
	if err != nil {
		if !errors.Is(err, world.ErrWorldFull) {
			return e.finish(span, stats, start, err)
		}
		errs = append(errs, err)
	}

	updates, err := e.world.RebuildDirty(ctx)
	stats.Rebuilt = len(updates)
	if err != nil {
		return e.finish(span, stats, start, errors.Join(append(errs, err)...))
	}

	for _, u := range updates {
		if err := e.renderer.UploadMesh(ctx, u); err != nil {
			stats.Failed++
			errs = append(errs, fmt.Errorf("upload chunk %s: %w", u.Coord, err))
			if c, ok := e.world.LoadedChunk(u.Coord.X, u.Coord.Z); ok {
				c.MarkDirty()
			}
			continue
		}
		stats.Uploaded++
	}

	return e.finish(span, stats, start, errors.Join(errs...))
}

func (e *Engine) finish(span trace.Span, stats FrameStats, start time.Time, err error) (FrameStats, error) {
	stats.Took = time.Since(start)

	span.SetAttributes(
		attribute.Int("chunks.created", stats.Update.Created),
		attribute.Int("chunks.rebuilt", stats.Rebuilt),
		attribute.Int("chunks.uploaded", stats.Uploaded),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if e.observer != nil {
		e.observer.FrameCompleted(stats)
	}
	return stats, err
}

// Run выполняет кадры с периодом interval, пока не отменён контекст
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("engine: invalid frame interval %s", interval)
	}

	e.logger.Info("Движок %s запущен: кадр каждые %s, радиус %d", e.id, interval, e.renderDistance)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Движок %s остановлен после %d кадров", e.id, e.frame)
			return nil
		case <-ticker.C:
			stats, err := e.Frame(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				e.logger.Error("Кадр %d (trace=%s): %v", stats.Frame, stats.TraceID, err)
			}
			e.logger.Debug("Кадр %d: центр %s, создано %d, перестроено %d, загружено %d, ошибок %d за %s",
				stats.Frame, stats.Update.Center, stats.Update.Created, stats.Rebuilt, stats.Uploaded, stats.Failed, stats.Took)
		}
	}
}

// traceID возвращает trace-ID спана или случайный идентификатор, если трассировка выключена
func traceID(span trace.Span) string {
	if sc := span.SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	return uuid.NewString()
}
