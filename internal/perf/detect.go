package perf

import (
	"math"
	"regexp"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// GPUInfo is what a renderer string reveals about the graphics device.
type GPUInfo struct {
	Vendor   string `json:"vendor"`
	Model    string `json:"model"`
	Tier     int    `json:"tier"`
	Discrete bool   `json:"discrete"`
}

// Hardware is the one-shot startup detection result.
type Hardware struct {
	Cores     int     `json:"cores"`
	MemoryGB  float64 `json:"memory_gb"`
	CPUBrand  string  `json:"cpu_brand"`
	CPUVendor string  `json:"cpu_vendor"`
	Renderer  string  `json:"renderer"`
	Mobile    bool    `json:"mobile"`
	GPU       GPUInfo `json:"gpu"`
	CPUTier   int     `json:"cpu_tier"`
	Tier      int     `json:"tier"`
}

var (
	reNvidia      = regexp.MustCompile(`nvidia|geforce|rtx|gtx|quadro`)
	reNvidiaTop   = regexp.MustCompile(`rtx\s*[3-9]0|rtx\s*50|rtx|gtx\s*1[6-9]|gtx\s*20`)
	reNvidiaMid   = regexp.MustCompile(`gtx\s*1[0-5]|gtx\s*9[5-8]|gtx\s*7[5-9]|gt\s*1030`)
	reAMDDiscrete = regexp.MustCompile(`radeon\s*(rx|pro|vega)|amd.*rx|navi`)
	reAMDTop      = regexp.MustCompile(`rx\s*[6-9][0-9]{3}|rx\s*[7-9][0-9]{2}0|navi\s*(3|2|1[4-9])`)
	reAMDMid      = regexp.MustCompile(`rx\s*5[6-9]0|rx\s*590|vega`)
	reAMD         = regexp.MustCompile(`radeon|amd`)
	reAMDiGPUMid  = regexp.MustCompile(`780m|760m|radeon\s*graphics.*ryzen\s*[7-9]`)
	reIntelArc    = regexp.MustCompile(`arc(\(tm\))?\s*(a[3-9]|b[5-9])`)
	reIntelXe     = regexp.MustCompile(`iris(\(r\))?\s*xe|iris\s*plus\s*g[7-9]|uhd\s*7[7-9]`)
	reApple       = regexp.MustCompile(`apple|\bm[1-4]\b`)
	reWrapper     = regexp.MustCompile(`angle \(|\)`)
	reBackend     = regexp.MustCompile(`,.*direct3d.*|,.*opengl.*`)
)

// ParseRenderer estimates the GPU tier from a GL renderer string. Tier is -1
// when the string is empty.
func ParseRenderer(renderer string) GPUInfo {
	r := strings.ToLower(strings.TrimSpace(renderer))
	if r == "" {
		return GPUInfo{Vendor: "unknown", Tier: -1}
	}
	info := GPUInfo{Vendor: "unknown", Tier: 1}
	switch {
	case reNvidia.MatchString(r):
		info.Vendor, info.Discrete = "nvidia", true
		switch {
		case reNvidiaTop.MatchString(r):
			info.Tier = 3
		case reNvidiaMid.MatchString(r):
			info.Tier = 2
		}
	case reAMDDiscrete.MatchString(r):
		info.Vendor, info.Discrete = "amd-discrete", true
		switch {
		case reAMDTop.MatchString(r):
			info.Tier = 3
		case reAMDMid.MatchString(r):
			info.Tier = 2
		}
	case reAMD.MatchString(r) && !strings.Contains(r, "rx"):
		info.Vendor = "amd-integrated"
		if reAMDiGPUMid.MatchString(r) {
			info.Tier = 2
		}
	case strings.Contains(r, "intel"):
		info.Vendor = "intel"
		info.Discrete = reIntelArc.MatchString(r)
		switch {
		case info.Discrete:
			info.Tier = 2
		case reIntelXe.MatchString(r):
			info.Tier = 1
		default:
			info.Tier = 0
		}
	case reApple.MatchString(r):
		info.Vendor, info.Discrete, info.Tier = "apple", true, 3
	}
	info.Model = strings.TrimSpace(reBackend.ReplaceAllString(reWrapper.ReplaceAllString(r, ""), ""))
	return info
}

// CPUTier rates the host from logical cores and memory in GiB.
func CPUTier(cores int, memGB float64) int {
	switch {
	case cores <= 2:
		return 0
	case cores <= 4 && memGB <= 4:
		return 0
	case cores <= 4:
		return 1
	case cores <= 6:
		return 2
	case cores >= 8 && memGB >= 8:
		return 3
	}
	return 2
}

// CombineTiers weights the GPU at 60%. An unknown GPU (tier < 0) leaves the
// CPU tier. Mobile devices are capped at tier 1.
func CombineTiers(gpu, cpu int, mobile bool) int {
	tier := cpu
	if gpu >= 0 {
		tier = int(math.Round(float64(gpu)*.6 + float64(cpu)*.4))
	}
	if mobile {
		tier = min(tier, 1)
	}
	tier, _ = ClampTier(tier)
	return tier
}

// Detect reads CPU and memory signals from the host and combines them with
// the renderer string of the GL context, which may be empty.
func Detect(renderer string) Hardware {
	cores := cpuid.CPU.LogicalCores
	if cores <= 0 {
		cores = runtime.NumCPU()
	}
	mem := totalMemoryGB()
	hw := Hardware{
		Cores:     cores,
		MemoryGB:  mem,
		CPUBrand:  cpuid.CPU.BrandName,
		CPUVendor: cpuid.CPU.VendorString,
		Renderer:  renderer,
		Mobile:    runtime.GOOS == "android" || runtime.GOOS == "ios",
		GPU:       ParseRenderer(renderer),
		CPUTier:   CPUTier(cores, mem),
	}
	hw.Tier = CombineTiers(hw.GPU.Tier, hw.CPUTier, hw.Mobile)
	return hw
}

// defaultMemoryGB is assumed when the platform does not report memory.
const defaultMemoryGB = 4
