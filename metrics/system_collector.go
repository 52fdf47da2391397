package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"trademantra/logger"
)

// SystemCollector periodically publishes runtime and host metrics.
type SystemCollector struct {
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewSystemCollector creates a collector. Intervals under a second are
// raised to the 15s default.
func NewSystemCollector(interval time.Duration) *SystemCollector {
	if interval < time.Second {
		interval = 15 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SystemCollector{interval: interval, ctx: ctx, cancel: cancel}
}

// Start launches the collection loop.
func (sc *SystemCollector) Start() {
	go sc.collectLoop()
}

// Stop halts collection.
func (sc *SystemCollector) Stop() {
	sc.cancel()
}

func (sc *SystemCollector) collectLoop() {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	sc.collect()
	for {
		select {
		case <-sc.ctx.Done():
			return
		case <-ticker.C:
			sc.collect()
		}
	}
}

func (sc *SystemCollector) collect() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	goroutineCount.Set(float64(runtime.NumGoroutine()))
	memoryAllocBytes.Set(float64(m.Alloc))

	if memStat, err := mem.VirtualMemory(); err == nil {
		memoryPercent.Set(memStat.UsedPercent)
	} else {
		logger.Debug("memory stat collection failed: %v", err)
	}

	// non-blocking sample: percent since the previous call
	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		cpuPercent.Set(percentages[0])
	} else if err != nil {
		logger.Debug("cpu stat collection failed: %v", err)
	}
}
