package model

import "time"

// CPUStat is one reading of the aggregate (or per-core) tick counters.
// Fields missing on older kernels stay zero.
type CPUStat struct {
	User      uint64 `json:"user"`
	Nice      uint64 `json:"nice"`
	System    uint64 `json:"system"`
	Idle      uint64 `json:"idle"`
	IOWait    uint64 `json:"iowait"`
	IRQ       uint64 `json:"irq"`
	SoftIRQ   uint64 `json:"softirq"`
	Steal     uint64 `json:"steal"`
	Guest     uint64 `json:"guest"`
	GuestNice uint64 `json:"guest_nice"`
}

// Total sums the eight primary categories. Guest time is already
// accounted inside user/nice, so it is left out.
func (c CPUStat) Total() uint64 {
	return c.User + c.Nice + c.System + c.Idle + c.IOWait + c.IRQ + c.SoftIRQ + c.Steal
}

// ProcessCounters is a single /proc/<pid>/stat record.
type ProcessCounters struct {
	PID      int    `json:"pid"`
	Name     string `json:"name"`
	State    byte   `json:"state"`
	UTime    uint64 `json:"utime"`
	STime    uint64 `json:"stime"`
	VSize    uint64 `json:"vsize"`     // bytes
	RSSPages uint64 `json:"rss_pages"` // resident pages
	RSSBytes uint64 `json:"rss_bytes"`
}

// Ticks is the accumulated user+kernel time of the process.
func (p ProcessCounters) Ticks() uint64 { return p.UTime + p.STime }

// RX holds the receive half of a /proc/net/dev line.
type RX struct {
	Bytes      uint64 `json:"bytes"`
	Packets    uint64 `json:"packets"`
	Errs       uint64 `json:"errs"`
	Drop       uint64 `json:"drop"`
	FIFO       uint64 `json:"fifo"`
	Frame      uint64 `json:"frame"`
	Compressed uint64 `json:"compressed"`
	Multicast  uint64 `json:"multicast"`
}

// TX holds the transmit half of a /proc/net/dev line.
type TX struct {
	Bytes      uint64 `json:"bytes"`
	Packets    uint64 `json:"packets"`
	Errs       uint64 `json:"errs"`
	Drop       uint64 `json:"drop"`
	FIFO       uint64 `json:"fifo"`
	Colls      uint64 `json:"colls"`
	Carrier    uint64 `json:"carrier"`
	Compressed uint64 `json:"compressed"`
}

// InterfaceCounters are the cumulative counters of one network interface.
type InterfaceCounters struct {
	Name string `json:"name"`
	RX   RX     `json:"rx"`
	TX   TX     `json:"tx"`
}

// Memory captures RAM and swap usage in bytes.
type Memory struct {
	TotalBytes  uint64  `json:"total_bytes"`
	UsedBytes   uint64  `json:"used_bytes"`
	SwapTotal   uint64  `json:"swap_total"`
	SwapUsed    uint64  `json:"swap_used"`
	Percent     float64 `json:"percent"`
	SwapPercent float64 `json:"swap_percent"`
}

// Disk is filesystem occupancy for one mount point.
type Disk struct {
	Path       string  `json:"path"`
	TotalBytes uint64  `json:"total_bytes"`
	UsedBytes  uint64  `json:"used_bytes"`
	Percent    float64 `json:"percent"`
}

// Sensors holds best-effort thermal and fan readings.
type Sensors struct {
	TempC         float64 `json:"temp_c"`
	TempAvailable bool    `json:"temp_available"`
	FanRPM        float64 `json:"fan_rpm"`
	FanAvailable  bool    `json:"fan_available"`
}

// Load is the kernel load average.
type Load struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

// CPU aggregates derived CPU usage.
type CPU struct {
	Total   float64   `json:"total"`    // percent 0-100
	PerCore []float64 `json:"per_core"` // per-core percent
	Cores   int       `json:"cores"`
	History []float64 `json:"history,omitempty"`
}

// Process is one row of the process table.
type Process struct {
	PID      int     `json:"pid"`
	Name     string  `json:"name"`
	State    string  `json:"state"`
	CPU      float64 `json:"cpu"`    // percent, see rate.CPUScale
	Memory   float64 `json:"memory"` // percent of MemTotal
	VSize    uint64  `json:"vsize"`
	RSSBytes uint64  `json:"rss_bytes"`
}

// Interface is one row of the network table.
type Interface struct {
	Name     string            `json:"name"`
	IPv4     string            `json:"ipv4,omitempty"`
	RxBytes  uint64            `json:"rx_bytes"`
	TxBytes  uint64            `json:"tx_bytes"`
	RxRate   float64           `json:"rx_rate"` // bytes/s
	TxRate   float64           `json:"tx_rate"` // bytes/s
	Counters InterfaceCounters `json:"counters"`
}

// Processes summarizes the enumeration pass.
type Processes struct {
	Total  int            `json:"total"`
	States map[string]int `json:"states"`
	Top    []Process      `json:"top"`
}

// Sample is the full snapshot exchanged between sampler, UI, and JSON exporter.
type Sample struct {
	Timestamp   time.Time     `json:"timestamp"`
	Interval    time.Duration `json:"interval"`
	CPU         CPU           `json:"cpu"`
	Memory      Memory        `json:"memory"`
	Disk        Disk          `json:"disk"`
	Load        Load          `json:"load"`
	Sensors     Sensors       `json:"sensors"`
	TempHistory []float64     `json:"temp_history,omitempty"`
	Processes   Processes     `json:"processes"`
	Network     []Interface   `json:"network"`
}

// Zero returns an empty sample for initialization.
func Zero() Sample { return Sample{Timestamp: time.Now()} }
