package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// SysHealth represents real-time system metrics.
type SysHealth struct {
	AllocMB      uint64
	SysMB        uint64
	NumGC        uint32
	Goroutines   int
	DataDiskSize string
}

// GetSysHealth collects real-time health data.
func GetSysHealth(dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DataDiskSize: calculateDirSize(dataPath),
	}
}

// FormatReport renders usage and health as plain lines, shared by the CLI
// and the bot's admin command.
func FormatReport(usage []DailyUsage, health SysHealth) string {
	var sb strings.Builder
	sb.WriteString("Recent generations\n")
	if len(usage) == 0 {
		sb.WriteString("  no data yet\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "  %s: %d tokens, %d runs, %d failed\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures)
	}
	sb.WriteString("System health\n")
	fmt.Fprintf(&sb, "  RAM: %dMB alloc / %dMB sys, %d GCs\n", health.AllocMB, health.SysMB, health.NumGC)
	fmt.Fprintf(&sb, "  Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "  Data on disk: %s\n", health.DataDiskSize)
	return sb.String()
}

func calculateDirSize(path string) string {
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})

	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
