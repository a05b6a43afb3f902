package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelworld/internal/engine"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world"
)

func TestCollectorObservesWorld(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	w, err := world.New(world.Options{
		Dimensions: world.Dimensions{Size: 4, Height: 8},
		Observer:   c,
	})
	require.NoError(t, err)

	_, err = w.UpdateChunks(context.Background(), vec.Vec3Float{}, 1)
	require.NoError(t, err)
	_, err = w.RebuildDirty(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9.0, testutil.ToFloat64(c.chunksGenerated))
	assert.Equal(t, 9.0, testutil.ToFloat64(c.chunksLoaded))
	assert.Equal(t, 9.0, testutil.ToFloat64(c.meshesBuilt))

	require.True(t, w.UnloadChunk(0, 0))
	assert.Equal(t, 8.0, testutil.ToFloat64(c.chunksLoaded))

	n, err := testutil.GatherAndCount(reg, "voxel_mesh_build_seconds", "voxel_chunk_generation_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollectorObservesFrames(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.FrameCompleted(engine.FrameStats{Took: 5 * time.Millisecond, Failed: 2, Update: world.UpdateStats{Deferred: 3}})
	c.FrameCompleted(engine.FrameStats{Took: time.Millisecond})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.frames))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.uploadFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.chunksDeferred))
}

func TestEngineFramesCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	w, err := world.New(world.Options{Dimensions: world.Dimensions{Size: 4, Height: 8}, Observer: c})
	require.NoError(t, err)

	r := engine.NewCountingRenderer()
	r.Fail = func(u world.MeshUpdate) error {
		if u.Coord == (world.ChunkCoord{}) {
			return errors.New("gpu")
		}
		return nil
	}

	e, err := engine.New(w, r, engine.StaticCamera{}, engine.Options{RenderDistance: 1, Observer: c})
	require.NoError(t, err)

	_, err = e.Frame(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.uploadFailures))
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ChunksLoaded(42)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "voxel_chunks_loaded 42")
}

func TestProcessMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	pm, err := NewProcessMetrics(reg)
	require.NoError(t, err)

	require.NoError(t, pm.Sample())
	assert.Greater(t, testutil.ToFloat64(pm.rssBytes), 0.0)
	assert.Greater(t, testutil.ToFloat64(pm.goroutines), 0.0)

	pm.Start(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	pm.Stop()
}

func TestProcessMetricsStopIdempotent(t *testing.T) {
	pm, err := NewProcessMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	// Stop без Start не блокируется
	stopped := make(chan struct{})
	go func() {
		pm.Stop()
		pm.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop без Start заблокировался")
	}

	// Start после Stop не запускает цикл
	pm.Start(time.Millisecond)
	pm.Stop()
}

func TestProcessMetricsDoubleStop(t *testing.T) {
	pm, err := NewProcessMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	pm.Start(time.Millisecond)
	pm.Start(time.Millisecond)
	assert.NotPanics(t, func() {
		pm.Stop()
		pm.Stop()
	})
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", formatUptime(5*time.Second))
	assert.Equal(t, "2м 3с", formatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1ч 0м 0с", formatUptime(time.Hour))
	assert.Equal(t, "1д 2ч 0м 0с", formatUptime(26*time.Hour))
}
