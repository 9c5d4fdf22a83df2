package cluster

import "testing"

func TestNewAggregatesHosts(t *testing.T) {
	info := New([]HostInfo{
		{Hostname: "node1", Memory: MemoryFromTotal(64 << 30), CPU: &CPUInfo{NumCores: 32}},
		{Hostname: "node2", Memory: MemoryFromTotal(64 << 30), CPU: &CPUInfo{NumCores: 32}},
		{Hostname: "node3", Memory: MemoryFromTotal(32 << 30)},
	})

	if info.TotalMemoryBytes != 160<<30 {
		t.Errorf("Expected %d total memory bytes, got %d", int64(160)<<30, info.TotalMemoryBytes)
	}
	// node3 has no CPU detail and contributes no cores.
	if info.TotalCores != 64 {
		t.Errorf("Expected 64 total cores, got %d", info.TotalCores)
	}
	if len(info.Hosts) != 3 {
		t.Errorf("Expected 3 hosts retained, got %d", len(info.Hosts))
	}
}

func TestConstructionPathsAgree(t *testing.T) {
	fromHosts := New([]HostInfo{
		{Hostname: "node1", Memory: MemoryFromTotal(256 << 30), CPU: &CPUInfo{NumCores: 64}},
		{Hostname: "node2", Memory: MemoryFromTotal(256 << 30), CPU: &CPUInfo{NumCores: 64}},
	})
	fromSummary := FromSummaryArrays([]float64{256, 256}, []int{64, 64})

	if fromHosts.TotalMemoryBytes != fromSummary.TotalMemoryBytes {
		t.Errorf("Memory aggregates disagree: %d vs %d", fromHosts.TotalMemoryBytes, fromSummary.TotalMemoryBytes)
	}
	if fromHosts.TotalCores != fromSummary.TotalCores {
		t.Errorf("Core aggregates disagree: %d vs %d", fromHosts.TotalCores, fromSummary.TotalCores)
	}
}

func TestHostInfoFromMap(t *testing.T) {
	t.Run("psutil byte map", func(t *testing.T) {
		host := HostInfoFromMap("node1", map[string]any{
			"memory_info": map[string]any{"total": float64(64 << 30), "available": float64(32 << 30)},
			"cpu_info":    map[string]any{"num_cores": float64(32), "model": "EPYC 7543"},
		})
		if host.Hostname != "node1" {
			t.Errorf("Expected hostname 'node1', got %q", host.Hostname)
		}
		if host.Memory.Total != 64<<30 {
			t.Errorf("Expected byte counts passed through, got %d", host.Memory.Total)
		}
		if host.CPU == nil || host.CPU.NumCores != 32 || host.CPU.Model != "EPYC 7543" {
			t.Errorf("Unexpected CPU info: %+v", host.CPU)
		}
	})

	t.Run("proc meminfo", func(t *testing.T) {
		host := HostInfoFromMap("node2", map[string]any{
			"memory_info": map[string]any{"MemTotal": float64(16384), "MemFree": float64(4096)},
		})
		if host.Memory.Total != 16384*1024 {
			t.Errorf("Expected kB converted to bytes, got %d", host.Memory.Total)
		}
		if host.CPU != nil {
			t.Errorf("Expected no CPU info, got %+v", host.CPU)
		}
	})

	t.Run("unrecognized memory shape", func(t *testing.T) {
		host := HostInfoFromMap("node3", map[string]any{
			"memory_info": map[string]any{"capacity": "64GB"},
		})
		if host.Memory != (MemoryInfo{}) {
			t.Errorf("Expected empty memory info, got %+v", host.Memory)
		}
	})

	t.Run("missing sections", func(t *testing.T) {
		host := HostInfoFromMap("node4", map[string]any{})
		if host.Memory != (MemoryInfo{}) || host.CPU != nil {
			t.Errorf("Expected empty host info, got %+v", host)
		}
	})
}

func TestMemoryFromMeminfo(t *testing.T) {
	mem := MemoryFromMeminfo(map[string]int64{
		"MemTotal":     16384,
		"MemAvailable": 8192,
		"MemFree":      4096,
	})
	if mem.Total != 16384*1024 {
		t.Errorf("Expected kB converted to bytes, got %d", mem.Total)
	}
	if mem.Available != 8192*1024 {
		t.Errorf("Expected kB converted to bytes, got %d", mem.Available)
	}
}

func TestMemoryFromByteMap(t *testing.T) {
	mem := MemoryFromByteMap(map[string]int64{"total": 1 << 40, "cached": 123})
	if mem.Total != 1<<40 {
		t.Errorf("Expected total passed through, got %d", mem.Total)
	}
	if mem.Cached != 123 {
		t.Errorf("Expected cached passed through, got %d", mem.Cached)
	}
}
