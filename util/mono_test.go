package util

import (
	"testing"
	"time"
)

func TestMonoNanosAdvances(t *testing.T) {
	start := MonoNanos()
	if start <= 0 {
		t.Fatal("monotonic clock not available")
	}

	sleepingFor := 10 * time.Millisecond
	time.Sleep(sleepingFor)

	diff := MonoNanos() - start
	if diff < sleepingFor.Nanoseconds() {
		t.Fatalf("did not advance enough diff=%d", diff)
	}
}

func TestMonoNanosNonDecreasing(t *testing.T) {
	prev := MonoNanos()
	for i := 0; i < 10_000; i++ {
		now := MonoNanos()
		if now < prev {
			t.Fatalf("clock went backwards prev=%d now=%d", prev, now)
		}
		prev = now
	}
}

func BenchmarkMonoNanos(b *testing.B) {
	var s int64 = 0
	for i := 0; i < b.N; i++ {
		s += MonoNanos()
	}
	b.ReportAllocs()
	_ = s
}
