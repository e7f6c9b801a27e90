package ui

import (
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/sysmoni/internal/config"
	"github.com/Dicklesworthstone/sysmoni/internal/hostinfo"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
	"github.com/Dicklesworthstone/sysmoni/internal/procfs"
	"github.com/Dicklesworthstone/sysmoni/internal/rate"
	"github.com/Dicklesworthstone/sysmoni/internal/sampler"
)

func testModel(s model.Sample) *Model {
	return &Model{
		cfg:       config.Default(),
		host:      hostinfo.Info{Hostname: "box", Username: "ada", OS: "linux", Kernel: "6.1", CPUModel: "Test CPU"},
		latest:    s,
		ctxCancel: func() {},
		filter:    textinput.New(),
		sortBy:    "cpu",
	}
}

func sampleFixture() model.Sample {
	return model.Sample{
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		CPU:       model.CPU{Total: 42, History: []float64{0, 50, 100}},
		Memory:    model.Memory{TotalBytes: 1 << 30, UsedBytes: 1 << 29, Percent: 50},
		Sensors:   model.Sensors{TempC: 48.5, TempAvailable: true},
		Processes: model.Processes{
			Total:  3,
			States: map[string]int{"R": 1, "S": 2},
			Top: []model.Process{
				{PID: 10, Name: "postgres", State: "S", CPU: 12, Memory: 3},
				{PID: 11, Name: "nginx", State: "R", CPU: 30, Memory: 1},
				{PID: 12, Name: "bash", State: "S", CPU: 0, Memory: 0.5},
			},
		},
		Network: []model.Interface{
			{
				Name: "eth0", IPv4: "10.0.0.2", RxBytes: 2048, TxBytes: 4096, RxRate: 1024, TxRate: 512,
				Counters: model.InterfaceCounters{
					Name: "eth0",
					RX:   model.RX{Bytes: 2048, Packets: 31337, Errs: 1, Multicast: 4242},
					TX:   model.TX{Bytes: 4096, Packets: 27182, Colls: 9, Carrier: 3},
				},
			},
		},
	}
}

func TestGaugeBar(t *testing.T) {
	cases := []struct {
		pct    float64
		filled int
	}{
		{-5, 0},
		{0, 0},
		{50, 5},
		{100, 10},
		{250, 10},
	}
	for _, c := range cases {
		got := gaugeBar(c.pct, 10)
		if n := strings.Count(got, gaugeFill); n != c.filled {
			t.Errorf("gaugeBar(%v) filled = %d, want %d (%q)", c.pct, n, c.filled, got)
		}
		if n := strings.Count(got, gaugeFill) + strings.Count(got, gaugeEmpty); n != 10 {
			t.Errorf("gaugeBar(%v) width = %d, want 10", c.pct, n)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline([]float64{0, 50, 100, 200}, 10, 100); got != "▁▄██" {
		t.Errorf("sparkline = %q", got)
	}
	if got := sparkline([]float64{0, 0, 100}, 2, 100); got != "▁█" {
		t.Errorf("sparkline keeps tail: %q", got)
	}
	if got := sparkline(nil, 10, 100); got != "" {
		t.Errorf("empty sparkline = %q", got)
	}
}

func TestNextSort(t *testing.T) {
	want := map[string]string{"cpu": "mem", "mem": "pid", "pid": "name", "name": "cpu", "bogus": "cpu"}
	for in, out := range want {
		if got := nextSort(in); got != out {
			t.Errorf("nextSort(%q) = %q, want %q", in, got, out)
		}
	}
}

func TestVisibleProcesses(t *testing.T) {
	m := testModel(sampleFixture())
	rows := m.visibleProcesses()
	if len(rows) != 3 || rows[0].PID != 11 || rows[1].PID != 10 {
		t.Fatalf("cpu order wrong: %+v", rows)
	}

	m.filter.SetValue("POST")
	rows = m.visibleProcesses()
	if len(rows) != 1 || rows[0].Name != "postgres" {
		t.Fatalf("filter = %+v", rows)
	}
}

func TestUpdateKeys(t *testing.T) {
	m := testModel(sampleFixture())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if m.sortBy != "mem" {
		t.Fatalf("sortBy = %q, want mem", m.sortBy)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.netTab != 1 {
		t.Fatalf("netTab = %d, want 1", m.netTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if !m.paused || len(m.frozen) != 3 {
		t.Fatalf("pause did not freeze history")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filter.Focused() {
		t.Fatalf("filter not focused")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if m.filter.Value() != "q" {
		t.Fatalf("focused filter should take input, got %q", m.filter.Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filter.Focused() {
		t.Fatalf("esc should blur the filter")
	}
}

func TestTickDrainsStream(t *testing.T) {
	m := testModel(model.Zero())
	ch := make(chan model.Sample, 1)
	want := sampleFixture()
	ch <- want
	m.stream = ch

	_, cmd := m.Update(tickMsg{})
	if cmd == nil {
		t.Fatalf("tick should reschedule")
	}
	if !m.latest.Timestamp.Equal(want.Timestamp) {
		t.Fatalf("latest not replaced")
	}

	// Empty channel leaves the last sample in place.
	m.Update(tickMsg{})
	if m.latest.CPU.Total != 42 {
		t.Fatalf("latest lost on empty tick")
	}
}

func TestView(t *testing.T) {
	m := testModel(sampleFixture())
	out := m.View()
	for _, want := range []string{"ada@box", "postgres", "nginx", "eth0", "10.0.0.2", "1.00 KB/s", "48.5°C", "R:1 S:2"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.netTab = 1
	if out := m.View(); !strings.Contains(out, "512.00 B/s") {
		t.Errorf("tx tab missing tx rate")
	}
}

func TestViewShowsInterfaceCounters(t *testing.T) {
	m := testModel(sampleFixture())
	out := m.View()
	for _, want := range []string{"packets", "mcast", "31337", "4242"} {
		if !strings.Contains(out, want) {
			t.Errorf("rx tab missing %q", want)
		}
	}

	m.netTab = 1
	out = m.View()
	for _, want := range []string{"colls", "carr", "27182"} {
		if !strings.Contains(out, want) {
			t.Errorf("tx tab missing %q", want)
		}
	}
	if strings.Contains(out, "31337") {
		t.Errorf("tx tab shows rx packets")
	}
}

func TestGraphScaleCycles(t *testing.T) {
	m := testModel(sampleFixture())
	if !strings.Contains(m.View(), "scale 0-100.0%") {
		t.Fatalf("default scale not shown")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if graphScales[m.scale] != 75 || !strings.Contains(m.View(), "scale 0-75.0%") {
		t.Fatalf("scale = %v after one press", graphScales[m.scale])
	}
	for range graphScales[1:] {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	}
	if m.scale != 0 {
		t.Errorf("scale index = %d, want wrap to 0", m.scale)
	}
	// 10 of 25 fills the sparkline to its fourth step.
	if got := sparkline([]float64{10}, 5, 25); got != "▃" {
		t.Errorf("scaled sparkline = %q", got)
	}
}

func TestFilterReachesSamplerBeyondTop(t *testing.T) {
	proc := fstest.MapFS{
		"stat":   {Data: []byte("cpu  1 0 0 1 0 0 0 0\n")},
		"1/stat": {Data: []byte("1 (init) S 1 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 1 0 100 4096 10\n")},
		"2/stat": {Data: []byte("2 (bash) S 1 1 1 0 -1 0 0 0 0 0 0 0 0 0 20 0 1 0 100 4096 10\n")},
	}
	cfg := config.Default()
	cfg.Top = 1
	smp := sampler.New(
		procfs.New(procfs.WithProcFS(proc), procfs.WithStatfs(func(string) (model.Disk, error) {
			return model.Disk{}, nil
		})),
		cfg,
		sampler.WithCPUScale(rate.CPUScale{TicksPerSecond: 100, Cores: 1}),
	)
	m := testModel(model.Zero())
	m.smp = smp

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if top := smp.Sample(now).Processes.Top; len(top) != 1 || top[0].Name != "init" {
		t.Fatalf("unfiltered top = %+v, want init", top)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bash")})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	m.latest = smp.Sample(now.Add(time.Second))
	rows := m.visibleProcesses()
	if len(rows) != 1 || rows[0].Name != "bash" {
		t.Fatalf("visible = %+v, want bash", rows)
	}

	// Clearing the filter and sorting by name brings init back.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.sortBy = "pid"
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if m.sortBy != "name" {
		t.Fatalf("sortBy = %q, want name", m.sortBy)
	}
	m.latest = smp.Sample(now.Add(2 * time.Second))
	if rows := m.visibleProcesses(); len(rows) != 1 || rows[0].Name != "bash" {
		t.Fatalf("name-sorted top = %+v, want bash", rows)
	}
}
