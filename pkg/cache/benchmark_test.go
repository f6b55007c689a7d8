package cache

import (
	"fmt"
	"testing"

	"github.com/l3aro/pyflow/pkg/simulate"
)

var benchSource = []byte(`
def helper(x):
    if x:
        print(x)

def main():
    for i in range(10):
        helper(i)
`)

func BenchmarkCacheGet(b *testing.B) {
	c := New(Options{MaxSize: 10000})
	snap := snapshotOf(b, benchSource)
	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("key%d", i), "bench.py", snap)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key999")
	}
}

func BenchmarkKey(b *testing.B) {
	opts := simulate.Options{Entry: "main", LabelWidth: 40}
	for i := 0; i < b.N; i++ {
		Key(benchSource, opts)
	}
}
