package capture

import (
	"log/slog"
)

// ProbeRange is the number of device indices probed by Scan (0 through
// ProbeRange-1).
const ProbeRange = 10

// Scan probes device indices 0..ProbeRange-1 in order and returns the
// indices that opened successfully, ascending. Each probe handle is
// closed before the next index is tried, so a scan never leaves a
// device open. A system with no cameras yields an empty result, not an
// error.
//
// The result is a snapshot: it goes stale when devices are attached or
// removed and is only refreshed by scanning again. Probing the index
// held by a running session simply fails that one probe.
func Scan(backend Backend, logger *slog.Logger) []int {
	return ScanRange(backend, ProbeRange, logger)
}

// ScanRange probes indices 0..limit-1. See Scan.
func ScanRange(backend Backend, limit int, logger *slog.Logger) []int {
	if logger == nil {
		logger = slog.Default()
	}

	available := make([]int, 0, limit)
	for i := 0; i < limit; i++ {
		dev, err := backend.Open(Device(i), Hints{})
		if err != nil {
			continue
		}
		if err := dev.Close(); err != nil {
			logger.Warn("failed to close probe handle", "index", i, "error", err)
		}
		available = append(available, i)
	}

	logger.Debug("device scan complete", "available", available)
	return available
}
