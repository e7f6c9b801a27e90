package sampler

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dicklesworthstone/sysmoni/internal/config"
	"github.com/Dicklesworthstone/sysmoni/internal/history"
	"github.com/Dicklesworthstone/sysmoni/internal/hostinfo"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
	"github.com/Dicklesworthstone/sysmoni/internal/procfs"
	"github.com/Dicklesworthstone/sysmoni/internal/rate"
)

// addrRefresh is how often interface addresses are looked up again. They
// change rarely and the lookup is far more expensive than a counter read.
const addrRefresh = 10 * time.Second

// Sampler turns successive procfs snapshots into Samples. All rate state
// lives here; one goroutine at a time may call Sample.
type Sampler struct {
	Interval time.Duration

	reader *procfs.Reader
	cfg    config.Config
	logger *slog.Logger
	scale  rate.CPUScale

	cpu     rate.SystemCPU
	cores   rate.CoreSet
	procCPU *rate.Throttled[int]
	net     *rate.Network

	cpuHistory  *history.Ring
	tempHistory *history.Ring

	// Row selection, changed by the UI while the stream runs.
	viewMu sync.RWMutex
	filter string
	sortBy string

	// Interface addresses, refreshed off the sampling path.
	addrs     map[string]string
	addrsMu   sync.RWMutex
	addrsFunc func(context.Context) map[string]string
}

// Option customizes a Sampler.
type Option func(*Sampler)

// WithCPUScale fixes the ticks-per-second and core count instead of asking
// the host.
func WithCPUScale(s rate.CPUScale) Option { return func(sm *Sampler) { sm.scale = s } }

// WithLogger sets the sampler's logger.
func WithLogger(l *slog.Logger) Option { return func(sm *Sampler) { sm.logger = l } }

// WithAddrLookup replaces the interface address lookup.
func WithAddrLookup(fn func(context.Context) map[string]string) Option {
	return func(sm *Sampler) { sm.addrsFunc = fn }
}

func New(reader *procfs.Reader, cfg config.Config, opts ...Option) *Sampler {
	s := &Sampler{
		Interval:  cfg.Interval,
		reader:    reader,
		cfg:       cfg,
		filter:    cfg.Filter,
		sortBy:    cfg.Sort,
		addrsFunc: hostinfo.IPv4Addresses,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.scale == (rate.CPUScale{}) {
		s.scale = rate.HostCPUScale()
	}
	s.procCPU = rate.NewThrottled[int](s.scale, cfg.ProcInterval)
	s.net = rate.NewNetwork()
	s.cpuHistory = history.New(cfg.HistorySize)
	s.tempHistory = history.New(cfg.HistorySize)
	return s
}

// SetView replaces the process name filter and sort column used from the
// next sample on. Both apply before the row list is cut to the top N. An
// empty sortBy keeps the current column.
func (s *Sampler) SetView(filter, sortBy string) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	s.filter = filter
	if sortBy != "" {
		s.sortBy = sortBy
	}
}

func (s *Sampler) view() (filter, sortBy string) {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return s.filter, s.sortBy
}

// Stream returns a channel that will receive snapshots until ctx is done.
// The first sample only seeds the counters and is not sent.
func (s *Sampler) Stream(ctx context.Context) <-chan model.Sample {
	ch := make(chan model.Sample)
	s.logger.Debug("stream starting", "interval", s.Interval, "history", s.cpuHistory.Cap())
	s.RefreshAddrs(ctx)
	go s.addrLoop(ctx)
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		defer close(ch)
		s.Sample(time.Now())
		for {
			select {
			case t := <-ticker.C:
				select {
				case ch <- s.Sample(t):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Sample performs one poll at now.
func (s *Sampler) Sample(now time.Time) model.Sample {
	mem := s.reader.Memory()
	sensors := s.reader.Sensors()

	total := s.cpu.Usage(s.reader.SystemCPU())
	perCore := s.cores.Usage(s.reader.PerCPU())
	s.cpuHistory.Push(total)
	if sensors.TempAvailable {
		s.tempHistory.Push(sensors.TempC)
	}

	return model.Sample{
		Timestamp: now,
		Interval:  s.Interval,
		CPU: model.CPU{
			Total:   total,
			PerCore: perCore,
			Cores:   s.scale.Cores,
			History: s.cpuHistory.Padded(),
		},
		Memory:      mem,
		Disk:        s.reader.Disk(s.cfg.DiskPath),
		Load:        s.reader.LoadAvg(),
		Sensors:     sensors,
		TempHistory: s.tempHistory.Padded(),
		Processes:   s.processes(now, mem.TotalBytes),
		Network:     s.network(now),
	}
}

func (s *Sampler) processes(now time.Time, memTotal uint64) model.Processes {
	procs := s.reader.Processes()

	if s.cfg.EvictStale {
		live := make(map[int]struct{}, len(procs))
		for _, p := range procs {
			live[p.PID] = struct{}{}
		}
		if n := s.procCPU.RetainKeys(live); n > 0 {
			s.logger.Debug("evicted exited processes", "count", n, "tracked", s.procCPU.Len())
		}
	}

	filter, sortBy := s.view()
	filter = strings.ToLower(filter)
	rows := make([]model.Process, 0, len(procs))
	for _, p := range procs {
		cpuPct := s.procCPU.Rate(p.PID, p.Ticks(), now)
		if filter != "" && !strings.Contains(strings.ToLower(p.Name), filter) {
			continue
		}
		var memPct float64
		if memTotal > 0 {
			memPct = float64(p.RSSBytes) * 100 / float64(memTotal)
		}
		rows = append(rows, model.Process{
			PID:      p.PID,
			Name:     p.Name,
			State:    string(p.State),
			CPU:      cpuPct,
			Memory:   memPct,
			VSize:    p.VSize,
			RSSBytes: p.RSSBytes,
		})
	}

	SortProcesses(rows, sortBy)
	if s.cfg.Top > 0 && len(rows) > s.cfg.Top {
		rows = rows[:s.cfg.Top]
	}
	return model.Processes{
		Total:  len(procs),
		States: procfs.StateCounts(procs),
		Top:    rows,
	}
}

// SortProcesses orders rows by cpu or mem (descending), pid or name
// (ascending). Ties fall back to PID.
func SortProcesses(rows []model.Process, by string) {
	less := func(i, j int) bool { return rows[i].PID < rows[j].PID }
	switch strings.ToLower(by) {
	case "cpu":
		less = func(i, j int) bool {
			if rows[i].CPU != rows[j].CPU {
				return rows[i].CPU > rows[j].CPU
			}
			return rows[i].PID < rows[j].PID
		}
	case "mem":
		less = func(i, j int) bool {
			if rows[i].Memory != rows[j].Memory {
				return rows[i].Memory > rows[j].Memory
			}
			return rows[i].PID < rows[j].PID
		}
	case "name":
		less = func(i, j int) bool {
			if rows[i].Name != rows[j].Name {
				return rows[i].Name < rows[j].Name
			}
			return rows[i].PID < rows[j].PID
		}
	}
	sort.SliceStable(rows, less)
}

func (s *Sampler) network(now time.Time) []model.Interface {
	counters := s.reader.Interfaces()
	rates := s.net.Observe(counters, now)

	s.addrsMu.RLock()
	addrs := s.addrs
	s.addrsMu.RUnlock()

	out := make([]model.Interface, 0, len(counters))
	for name, c := range counters {
		r := rates[name]
		out = append(out, model.Interface{
			Name:     name,
			IPv4:     addrs[name],
			RxBytes:  c.RX.Bytes,
			TxBytes:  c.TX.Bytes,
			RxRate:   r.RX,
			TxRate:   r.TX,
			Counters: c,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RefreshAddrs looks up interface addresses now.
func (s *Sampler) RefreshAddrs(ctx context.Context) {
	if s.addrsFunc == nil {
		return
	}
	addrs := s.addrsFunc(ctx)
	s.addrsMu.Lock()
	s.addrs = addrs
	s.addrsMu.Unlock()
}

func (s *Sampler) addrLoop(ctx context.Context) {
	ticker := time.NewTicker(addrRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RefreshAddrs(ctx)
		}
	}
}
