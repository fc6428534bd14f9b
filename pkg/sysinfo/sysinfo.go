// Package sysinfo reports resource usage of the running process.
package sysinfo

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"

	"github.com/denysvitali/share-viewer/internal/models"
)

// Collect returns resource statistics using gopsutil. Individual failures are
// logged and reported as zero values.
func Collect(logger *logrus.Logger) models.SystemResources {
	res := models.SystemResources{
		CPUCount:     runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Warnf("Failed to get process info: %v", err)
		return res
	}

	if cpuPercent, err := proc.CPUPercent(); err != nil {
		logger.Warnf("Failed to get CPU percent: %v", err)
	} else {
		res.CPUPercent = cpuPercent
	}

	if memInfo, err := proc.MemoryInfo(); err != nil {
		logger.Warnf("Failed to get memory info: %v", err)
	} else {
		res.MemoryRSS = memInfo.RSS
		res.MemoryVMS = memInfo.VMS
	}

	if memPercent, err := proc.MemoryPercent(); err != nil {
		logger.Warnf("Failed to get memory percent: %v", err)
	} else {
		res.MemoryPercent = memPercent
	}

	return res
}
