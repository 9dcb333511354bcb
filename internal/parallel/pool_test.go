package parallel

import (
	"sync/atomic"
	"testing"
)

func TestExecuteAllRunsEverything(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Close()

	var count atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { count.Add(1) }
	}
	p.ExecuteAll(work)

	if got := count.Load(); got != 100 {
		t.Errorf("ran %d items, want 100", got)
	}
}

func TestExecuteAllEmpty(t *testing.T) {
	p := NewWorkerPool(2)
	defer p.Close()
	p.ExecuteAll(nil)
	p.ExecuteAll([]func(){})
}

func TestExecuteAllAfterClose(t *testing.T) {
	p := NewWorkerPool(2)
	p.Close()

	// Closed pool falls back to synchronous execution.
	var count atomic.Int64
	p.ExecuteAll([]func(){
		func() { count.Add(1) },
		func() { count.Add(1) },
	})
	if got := count.Load(); got != 2 {
		t.Errorf("ran %d items after close, want 2", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	p := NewWorkerPool(1)
	p.Close()
	p.Close()
}

func TestWorkersDefault(t *testing.T) {
	p := NewWorkerPool(0)
	defer p.Close()
	if p.Workers() <= 0 {
		t.Errorf("Workers() = %d, want > 0", p.Workers())
	}

	p2 := NewWorkerPool(3)
	defer p2.Close()
	if p2.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", p2.Workers())
	}
}

func TestBands(t *testing.T) {
	tests := []struct {
		name   string
		height int
		n      int
		want   [][2]int
	}{
		{"even split", 8, 2, [][2]int{{0, 4}, {4, 8}}},
		{"uneven split", 10, 3, [][2]int{{0, 4}, {4, 8}, {8, 10}}},
		{"single band", 5, 1, [][2]int{{0, 5}}},
		{"more bands than lines", 2, 8, [][2]int{{0, 1}, {1, 2}}},
		{"zero workers", 4, 0, [][2]int{{0, 4}}},
		{"zero height", 0, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bands(tt.height, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("Bands(%d, %d) = %v, want %v", tt.height, tt.n, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Bands(%d, %d)[%d] = %v, want %v", tt.height, tt.n, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Bands must tile the scanline range exactly: disjoint and complete.
func TestBandsCoverage(t *testing.T) {
	for height := 1; height <= 64; height++ {
		for n := 1; n <= 9; n++ {
			bands := Bands(height, n)
			next := 0
			for _, b := range bands {
				if b[0] != next {
					t.Fatalf("height=%d n=%d: band starts at %d, want %d", height, n, b[0], next)
				}
				if b[1] <= b[0] {
					t.Fatalf("height=%d n=%d: empty band %v", height, n, b)
				}
				next = b[1]
			}
			if next != height {
				t.Fatalf("height=%d n=%d: bands end at %d, want %d", height, n, next, height)
			}
		}
	}
}
