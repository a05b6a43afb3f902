package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxelworld/internal/engine"
	"github.com/annel0/voxelworld/internal/world"
)

const namespace = "voxel"

// Collector переводит события мира и движка в Prometheus-метрики.
// Реализует world.Observer и engine.FrameObserver.
type Collector struct {
	chunksGenerated prometheus.Counter
	generationTime  prometheus.Histogram
	chunksLoaded    prometheus.Gauge
	chunksDeferred  prometheus.Counter

	meshesBuilt   prometheus.Counter
	meshBuildTime prometheus.Histogram
	meshVertices  prometheus.Histogram

	frames         prometheus.Counter
	frameTime      prometheus.Histogram
	uploadFailures prometheus.Counter
}

var (
	_ world.Observer       = (*Collector)(nil)
	_ engine.FrameObserver = (*Collector)(nil)
)

// NewCollector создаёт метрики и регистрирует их в reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_generated_total",
			Help:      "Сгенерированных чанков.",
		}),
		generationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_generation_seconds",
			Help:      "Время генерации рельефа одного чанка.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		chunksLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_loaded",
			Help:      "Загруженных чанков.",
		}),
		chunksDeferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_deferred_total",
			Help:      "Чанков, отложенных из-за лимита на кадр.",
		}),
		meshesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "meshes_built_total",
			Help:      "Построенных мешей чанков.",
		}),
		meshBuildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mesh_build_seconds",
			Help:      "Время построения меша одного чанка.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		meshVertices: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mesh_vertices",
			Help:      "Количество вершин в меше чанка.",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 12),
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Выполненных кадров.",
		}),
		frameTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_seconds",
			Help:      "Длительность кадра (загрузка чанков, меши, отправка рендереру).",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		uploadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mesh_upload_failures_total",
			Help:      "Мешей, отклонённых рендерером.",
		}),
	}

	reg.MustRegister(
		c.chunksGenerated, c.generationTime, c.chunksLoaded, c.chunksDeferred,
		c.meshesBuilt, c.meshBuildTime, c.meshVertices,
		c.frames, c.frameTime, c.uploadFailures,
	)
	return c
}

// ChunkGenerated вызывается миром после генерации чанка
func (c *Collector) ChunkGenerated(_ world.ChunkCoord, took time.Duration) {
	c.chunksGenerated.Inc()
	c.generationTime.Observe(took.Seconds())
}

// MeshBuilt вызывается воркером построения мешей
func (c *Collector) MeshBuilt(_ world.ChunkCoord, vertices, _ int, took time.Duration) {
	c.meshesBuilt.Inc()
	c.meshBuildTime.Observe(took.Seconds())
	c.meshVertices.Observe(float64(vertices))
}

// ChunksLoaded обновляет число загруженных чанков
func (c *Collector) ChunksLoaded(n int) {
	c.chunksLoaded.Set(float64(n))
}

// FrameCompleted вызывается движком после каждого кадра
func (c *Collector) FrameCompleted(stats engine.FrameStats) {
	c.frames.Inc()
	c.frameTime.Observe(stats.Took.Seconds())
	if stats.Update.Deferred > 0 {
		c.chunksDeferred.Add(float64(stats.Update.Deferred))
	}
	if stats.Failed > 0 {
		c.uploadFailures.Add(float64(stats.Failed))
	}
}
