// Package cluster aggregates host resource facts (memory, CPU) for the
// hosts participating in a benchmark run. The dataset sizing rules
// consume the aggregated totals.
package cluster

const bytesPerGB = 1 << 30

// MemoryInfo holds detailed memory information for one host, in bytes.
// Only Total is required; the remaining fields are retained when the
// source provides them.
type MemoryInfo struct {
	Total     int64
	Available int64
	Used      int64
	Free      int64
	Active    int64
	Inactive  int64
	Buffers   int64
	Cached    int64
	Shared    int64
}

// MemoryFromByteMap builds MemoryInfo from a psutil-style map of byte
// counts (keys "total", "available", ...).
func MemoryFromByteMap(data map[string]int64) MemoryInfo {
	return MemoryInfo{
		Total:     data["total"],
		Available: data["available"],
		Used:      data["used"],
		Free:      data["free"],
		Active:    data["active"],
		Inactive:  data["inactive"],
		Buffers:   data["buffers"],
		Cached:    data["cached"],
		Shared:    data["shared"],
	}
}

// MemoryFromMeminfo builds MemoryInfo from a /proc/meminfo-style map of
// kilobyte counts (keys "MemTotal", "MemFree", ...).
func MemoryFromMeminfo(data map[string]int64) MemoryInfo {
	return MemoryInfo{
		Total:     data["MemTotal"] * 1024,
		Available: data["MemAvailable"] * 1024,
		Used:      data["MemUsed"] * 1024,
		Free:      data["MemFree"] * 1024,
		Active:    data["Active"] * 1024,
		Inactive:  data["Inactive"] * 1024,
		Buffers:   data["Buffers"] * 1024,
		Cached:    data["Cached"] * 1024,
		Shared:    data["Shmem"] * 1024,
	}
}

// MemoryFromTotal builds MemoryInfo carrying only a total byte count.
func MemoryFromTotal(totalBytes int64) MemoryInfo {
	return MemoryInfo{Total: totalBytes}
}

// CPUInfo holds CPU information for one host.
type CPUInfo struct {
	NumCores        int
	NumLogicalCores int
	Model           string
	Architecture    string
}

// HostInfo describes a single host in the benchmark environment.
type HostInfo struct {
	Hostname string
	Memory   MemoryInfo
	CPU      *CPUInfo
}

// HostInfoFromMap builds a HostInfo from a decoded per-host document.
// The memory decoder is selected by the shape of the memory_info
// section: a numeric "total" selects the byte-map decoder, a "MemTotal"
// entry the meminfo decoder, and anything else yields empty memory
// information. The cpu_info section is optional.
func HostInfoFromMap(hostname string, data map[string]any) HostInfo {
	host := HostInfo{Hostname: hostname}

	if memory, ok := data["memory_info"].(map[string]any); ok {
		counts := int64Values(memory)
		if _, ok := asInt64(memory["total"]); ok {
			host.Memory = MemoryFromByteMap(counts)
		} else if _, ok := memory["MemTotal"]; ok {
			host.Memory = MemoryFromMeminfo(counts)
		}
	}

	if cpu, ok := data["cpu_info"].(map[string]any); ok && len(cpu) > 0 {
		host.CPU = &CPUInfo{}
		if n, ok := asInt64(cpu["num_cores"]); ok {
			host.CPU.NumCores = int(n)
		}
		if n, ok := asInt64(cpu["num_logical_cores"]); ok {
			host.CPU.NumLogicalCores = int(n)
		}
		if s, ok := cpu["model"].(string); ok {
			host.CPU.Model = s
		}
		if s, ok := cpu["architecture"].(string); ok {
			host.CPU.Architecture = s
		}
	}

	return host
}

// int64Values keeps the numeric entries of a decoded map, coerced to
// int64.
func int64Values(data map[string]any) map[string]int64 {
	out := make(map[string]int64, len(data))
	for k, v := range data {
		if n, ok := asInt64(v); ok {
			out[k] = n
		}
	}
	return out
}

// asInt64 coerces the numeric types JSON and YAML decoders produce.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// Info is the aggregated view across all hosts. When Hosts is present
// the totals equal the sum of the per-host values; the summary-based
// constructor produces the same aggregate semantics without per-host
// detail.
type Info struct {
	Hosts            []HostInfo
	TotalMemoryBytes int64
	TotalCores       int
}

// New aggregates per-host information into an Info.
func New(hosts []HostInfo) *Info {
	info := &Info{Hosts: hosts}
	for _, h := range hosts {
		info.TotalMemoryBytes += h.Memory.Total
		if h.CPU != nil {
			info.TotalCores += h.CPU.NumCores
		}
	}
	return info
}

// FromSummaryArrays builds an Info from the pre-aggregated per-host
// arrays reported in a results summary: memory in GB per host and core
// count per host. Per-host detail is not retained.
func FromSummaryArrays(hostMemoryGB []float64, hostCPUCount []int) *Info {
	info := &Info{}
	var totalGB float64
	for _, gb := range hostMemoryGB {
		totalGB += gb
	}
	info.TotalMemoryBytes = int64(totalGB * bytesPerGB)
	for _, c := range hostCPUCount {
		info.TotalCores += c
	}
	return info
}
