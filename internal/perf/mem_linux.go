//go:build linux

package perf

import "golang.org/x/sys/unix"

func totalMemoryGB() float64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return defaultMemoryGB
	}
	return float64(uint64(info.Totalram)*uint64(info.Unit)) / (1 << 30)
}
