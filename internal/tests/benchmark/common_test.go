package benchmark

import (
	"crypto/rand"
	"fmt"
	"runtime"
	"testing"

	"github.com/qwerin/framekv-go/internal/store/memory"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000}

// ValueSizes defines the payload sizes for wire benchmarks.
var ValueSizes = []int{16, 256, 4096, 65536}

// randomValue returns size bytes of random data.
func randomValue(size int) []byte {
	buf := make([]byte, size)
	rand.Read(buf)
	return buf
}

// benchKey returns the i-th benchmark key.
func benchKey(i int) string {
	return fmt.Sprintf("bench-key-%d", i)
}

// prefillStore loads count keys with 64-byte values.
func prefillStore(store *memory.Store, count int) {
	value := randomValue(64)
	for i := 0; i < count; i++ {
		store.Set(benchKey(i), value)
	}
}

// reportMemory reports current heap usage as a benchmark metric.
func reportMemory(b *testing.B, name string) {
	var stats runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&stats)
	b.ReportMetric(float64(stats.HeapAlloc)/(1024*1024), name+"_MB")
}
