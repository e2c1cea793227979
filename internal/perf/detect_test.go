package perf

import "testing"

func TestParseRenderer(t *testing.T) {
	tests := []struct {
		renderer string
		vendor   string
		tier     int
		discrete bool
	}{
		{"NVIDIA GeForce RTX 4070/PCIe/SSE2", "nvidia", 3, true},
		{"NVIDIA GeForce GTX 1660 SUPER/PCIe/SSE2", "nvidia", 3, true},
		{"NVIDIA GeForce GTX 1050 Ti/PCIe/SSE2", "nvidia", 2, true},
		{"NVIDIA Quadro K600", "nvidia", 1, true},
		{"AMD Radeon RX 6800 XT (navi21, LLVM 15.0.7, DRM 3.49)", "amd-discrete", 3, true},
		{"Radeon RX 580 Series", "amd-discrete", 2, true},
		{"AMD Radeon 780M (radeonsi, gfx1103)", "amd-integrated", 2, false},
		{"AMD Radeon Graphics", "amd-integrated", 1, false},
		{"Intel(R) Arc(TM) A770 Graphics", "intel", 2, true},
		{"Mesa Intel(R) Iris(R) Xe Graphics (TGL GT2)", "intel", 1, false},
		{"Mesa Intel(R) UHD Graphics 620 (KBL GT2)", "intel", 0, false},
		{"Apple M2 Pro", "apple", 3, true},
		{"llvmpipe (LLVM 15.0.7, 256 bits)", "unknown", 1, false},
	}
	for _, tt := range tests {
		got := ParseRenderer(tt.renderer)
		if got.Vendor != tt.vendor || got.Tier != tt.tier || got.Discrete != tt.discrete {
			t.Errorf("ParseRenderer(%q) = %+v, want vendor=%s tier=%d discrete=%v",
				tt.renderer, got, tt.vendor, tt.tier, tt.discrete)
		}
	}
}

func TestParseRendererEmpty(t *testing.T) {
	if got := ParseRenderer("  "); got.Tier != -1 {
		t.Errorf("empty renderer tier = %d, want -1", got.Tier)
	}
}

func TestParseRendererModel(t *testing.T) {
	got := ParseRenderer("ANGLE (NVIDIA GeForce RTX 3060, Direct3D11 vs_5_0 ps_5_0)")
	if got.Model != "nvidia geforce rtx 3060" {
		t.Errorf("model = %q", got.Model)
	}
}

func TestCPUTier(t *testing.T) {
	tests := []struct {
		cores int
		mem   float64
		want  int
	}{
		{2, 16, 0},
		{4, 4, 0},
		{4, 8, 1},
		{6, 4, 2},
		{8, 8, 3},
		{8, 4, 2},
		{16, 32, 3},
	}
	for _, tt := range tests {
		if got := CPUTier(tt.cores, tt.mem); got != tt.want {
			t.Errorf("CPUTier(%d, %g) = %d, want %d", tt.cores, tt.mem, got, tt.want)
		}
	}
}

func TestCombineTiers(t *testing.T) {
	tests := []struct {
		gpu, cpu int
		mobile   bool
		want     int
	}{
		{3, 3, false, 3},
		{3, 0, false, 2},
		{0, 3, false, 1},
		{-1, 2, false, 2},
		{3, 3, true, 1},
		{2, 1, false, 2},
	}
	for _, tt := range tests {
		if got := CombineTiers(tt.gpu, tt.cpu, tt.mobile); got != tt.want {
			t.Errorf("CombineTiers(%d, %d, %v) = %d, want %d", tt.gpu, tt.cpu, tt.mobile, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	hw := Detect("")
	if hw.Cores <= 0 {
		t.Errorf("cores = %d", hw.Cores)
	}
	if hw.MemoryGB <= 0 {
		t.Errorf("memory = %g", hw.MemoryGB)
	}
	if hw.Tier != hw.CPUTier {
		t.Errorf("without a renderer the tier should follow the cpu: %+v", hw)
	}
}
