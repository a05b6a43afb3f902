package metrics

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/annel0/voxelworld/internal/logging"
)

// ProcessMetrics периодически снимает показатели процесса (CPU, RSS, горутины)
type ProcessMetrics struct {
	StartTime time.Time

	proc *process.Process

	mu      sync.Mutex
	started bool
	stopped bool
	quit    chan struct{}
	done    chan struct{}

	cpuPercent prometheus.Gauge
	rssBytes   prometheus.Gauge
	goroutines prometheus.Gauge
	uptime     prometheus.GaugeFunc
}

// NewProcessMetrics создаёт метрики текущего процесса и регистрирует их в reg
func NewProcessMetrics(reg prometheus.Registerer) (*ProcessMetrics, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("process metrics: %w", err)
	}

	pm := &ProcessMetrics{
		StartTime: time.Now(),
		proc:      proc,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "Загрузка CPU процессом, проценты.",
		}),
		rssBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Резидентная память процесса.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Количество горутин.",
		}),
	}
	pm.uptime = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Время работы процесса.",
	}, func() float64 {
		return time.Since(pm.StartTime).Seconds()
	})

	reg.MustRegister(pm.cpuPercent, pm.rssBytes, pm.goroutines, pm.uptime)
	return pm, nil
}

// Sample обновляет показатели один раз
func (pm *ProcessMetrics) Sample() error {
	pm.goroutines.Set(float64(runtime.NumGoroutine()))

	cpuPercent, err := pm.proc.CPUPercent()
	if err != nil {
		return fmt.Errorf("cpu percent: %w", err)
	}
	pm.cpuPercent.Set(cpuPercent)

	mem, err := pm.proc.MemoryInfo()
	if err != nil {
		return fmt.Errorf("memory info: %w", err)
	}
	pm.rssBytes.Set(float64(mem.RSS))
	return nil
}

// Start запускает периодическое обновление. Повторный вызов и вызов после Stop игнорируются.
func (pm *ProcessMetrics) Start(interval time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.started || pm.stopped {
		return
	}
	pm.started = true
	go pm.loop(interval)
}

// Stop останавливает обновление и ждёт завершения цикла. Безопасен для повторного вызова.
func (pm *ProcessMetrics) Stop() {
	pm.mu.Lock()
	if pm.stopped {
		pm.mu.Unlock()
		return
	}
	pm.stopped = true
	close(pm.quit)
	started := pm.started
	pm.mu.Unlock()

	if started {
		<-pm.done
	}
}

func (pm *ProcessMetrics) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(pm.done)

	for {
		select {
		case <-ticker.C:
			if err := pm.Sample(); err != nil {
				logging.GetMetricsLogger().Warn("Не удалось снять метрики процесса: %v", err)
			}
		case <-pm.quit:
			return
		}
	}
}

// GetUptime возвращает время работы в читаемом виде
func (pm *ProcessMetrics) GetUptime() string {
	return formatUptime(time.Since(pm.StartTime))
}

func formatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}
