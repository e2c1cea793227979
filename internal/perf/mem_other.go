//go:build !linux

package perf

func totalMemoryGB() float64 { return defaultMemoryGB }
