package rate

import (
	"testing"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

func TestSystemCPUUsage(t *testing.T) {
	tests := []struct {
		name  string
		first model.CPUStat
		next  model.CPUStat
		want  float64
	}{
		{
			name:  "all busy",
			first: model.CPUStat{User: 100, Idle: 900},
			next:  model.CPUStat{User: 150, Idle: 900},
			want:  100,
		},
		{
			name:  "all idle",
			first: model.CPUStat{User: 100, Idle: 900},
			next:  model.CPUStat{User: 100, Idle: 950},
			want:  0,
		},
		{
			name:  "mixed categories",
			first: model.CPUStat{User: 100, System: 50, Idle: 800, IOWait: 10},
			next:  model.CPUStat{User: 130, System: 60, Idle: 850, IOWait: 20},
			want:  50, // (100-50)/100
		},
		{
			name:  "guest fields ignored",
			first: model.CPUStat{User: 100, Idle: 100, Guest: 0},
			next:  model.CPUStat{User: 150, Idle: 150, Guest: 5000},
			want:  50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s SystemCPU
			if got := s.Usage(tt.first); got != 0 {
				t.Fatalf("first sample = %f, want 0", got)
			}
			if got := s.Usage(tt.next); !approx(got, tt.want) {
				t.Errorf("usage = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSystemCPUHoldsLastValue(t *testing.T) {
	var s SystemCPU
	s.Usage(model.CPUStat{User: 100, Idle: 100})
	if got := s.Usage(model.CPUStat{User: 125, Idle: 175}); !approx(got, 25) {
		t.Fatalf("usage = %f, want 25", got)
	}

	// No progress: keep 25.
	if got := s.Usage(model.CPUStat{User: 125, Idle: 175}); !approx(got, 25) {
		t.Errorf("zero delta = %f, want held 25", got)
	}
	// Counters reset: keep 25, but adopt the new base.
	if got := s.Usage(model.CPUStat{User: 10, Idle: 10}); !approx(got, 25) {
		t.Errorf("reset = %f, want held 25", got)
	}
	if got := s.Usage(model.CPUStat{User: 20, Idle: 40}); !approx(got, 25) {
		t.Errorf("after reset = %f, want 25", got)
	}
	if got := s.Usage(model.CPUStat{User: 100, Idle: 60}); !approx(got, 80) {
		t.Errorf("after reset = %f, want 80", got)
	}
	if s.usage != 80 {
		t.Errorf("held usage = %f, want 80", s.usage)
	}
}

func TestCoreSetGrows(t *testing.T) {
	var cs CoreSet
	out := cs.Usage([]model.CPUStat{{User: 0, Idle: 0}})
	if len(out) != 1 || out[0] != 0 {
		t.Fatalf("first = %v", out)
	}
	out = cs.Usage([]model.CPUStat{
		{User: 50, Idle: 50},
		{User: 10, Idle: 0},
	})
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if !approx(out[0], 50) {
		t.Errorf("core0 = %f, want 50", out[0])
	}
	if out[1] != 0 {
		t.Errorf("new core1 = %f, want 0", out[1])
	}
}
