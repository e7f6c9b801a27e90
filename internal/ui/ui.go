package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/sysmoni/internal/config"
	"github.com/Dicklesworthstone/sysmoni/internal/format"
	"github.com/Dicklesworthstone/sysmoni/internal/hostinfo"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
	"github.com/Dicklesworthstone/sysmoni/internal/sampler"
)

// fanScaleRPM is the fan speed drawn as a full gauge.
const fanScaleRPM = 5000

var sortOrder = []string{"cpu", "mem", "pid", "name"}

// graphScales are the CPU graph ceilings cycled with "y", in percent.
var graphScales = []float64{100, 75, 50, 25, 10}

// Model renders live samples from the sampler.
type Model struct {
	cfg       config.Config
	smp       *sampler.Sampler
	host      hostinfo.Info
	latest    model.Sample
	stream    <-chan model.Sample
	ctxCancel context.CancelFunc
	width     int
	height    int

	filter textinput.Model
	sortBy string
	paused bool
	netTab int // 0 = RX, 1 = TX
	frozen []float64
	scale  int // index into graphScales
}

func New(cfg config.Config, smp *sampler.Sampler, host hostinfo.Info) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	ti := textinput.New()
	ti.Prompt = "filter: "
	ti.Placeholder = "process name"
	ti.CharLimit = 64
	ti.SetValue(cfg.Filter)
	return &Model{
		cfg:       cfg,
		smp:       smp,
		host:      host,
		latest:    model.Zero(),
		stream:    smp.Stream(ctx),
		ctxCancel: cancel,
		width:     120,
		height:    40,
		filter:    ti,
		sortBy:    cfg.Sort,
	}
}

// Messages
type (
	tickMsg   struct{}
	sampleMsg model.Sample
)

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "esc", "enter":
				m.filter.Blur()
				return m, nil
			case "ctrl+c":
				m.ctxCancel()
				return m, tea.Quit
			}
			before := m.filter.Value()
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			if m.filter.Value() != before {
				m.pushView()
			}
			return m, cmd
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctxCancel()
			return m, tea.Quit
		case "/":
			return m, m.filter.Focus()
		case "s":
			m.sortBy = nextSort(m.sortBy)
			m.pushView()
		case "y":
			m.scale = (m.scale + 1) % len(graphScales)
		case "p":
			m.paused = !m.paused
			m.frozen = m.latest.CPU.History
		case "tab":
			m.netTab = 1 - m.netTab
		}
	case tickMsg:
		select {
		case samp, ok := <-m.stream:
			if ok {
				m.latest = samp
			}
		default:
		}
		return m, tickCmd()
	case sampleMsg:
		m.latest = model.Sample(msg)
	}
	return m, nil
}

// pushView hands the filter and sort to the sampler so they apply to every
// process, not just the rows already shown.
func (m *Model) pushView() {
	if m.smp != nil {
		m.smp.SetView(m.filter.Value(), m.sortBy)
	}
}

func nextSort(cur string) string {
	for i, s := range sortOrder {
		if s == cur {
			return sortOrder[(i+1)%len(sortOrder)]
		}
	}
	return sortOrder[0]
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	activeTab   = lipgloss.NewStyle().Bold(true).Underline(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	sparkRunes  = []rune("▁▂▃▄▅▆▇█")
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

func (m *Model) View() string {
	s := m.latest
	header := titleStyle.Render("sysmoni") + "  " +
		subtleStyle.Render(fmt.Sprintf("%s@%s  %s %s  %s",
			m.host.Username, m.host.Hostname, m.host.OS, m.host.Kernel,
			s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006")))

	graph := s.CPU.History
	if m.paused {
		graph = m.frozen
	}
	pauseNote := ""
	if m.paused {
		pauseNote = subtleStyle.Render(" (paused)")
	}
	ceiling := graphScales[m.scale]
	cpuCard := card("CPU "+truncate(m.host.CPUModel, 32),
		fmt.Sprintf("%s  load %.2f %.2f %.2f\n%s%s\n%s",
			gaugeBar(s.CPU.Total, 28),
			s.Load.Load1, s.Load.Load5, s.Load.Load15,
			sparkline(graph, 40, ceiling), pauseNote,
			subtleStyle.Render("scale 0-"+format.Percent(ceiling))))

	memCard := card("Memory / Disk",
		fmt.Sprintf("RAM  %s %s / %s\nSwap %s %s / %s\nDisk %s %s / %s",
			gaugeBar(s.Memory.Percent, 20), format.Bytes(s.Memory.UsedBytes), format.Bytes(s.Memory.TotalBytes),
			gaugeBar(s.Memory.SwapPercent, 20), format.Bytes(s.Memory.SwapUsed), format.Bytes(s.Memory.SwapTotal),
			gaugeBar(s.Disk.Percent, 20), format.Bytes(s.Disk.UsedBytes), format.Bytes(s.Disk.TotalBytes)))

	sensorCard := card("Thermal / Fan", sensorBody(s))

	procCard := card(fmt.Sprintf("Processes (%d) sort:%s", s.Processes.Total, m.sortBy),
		m.filter.View()+"\n"+stateLine(s.Processes.States)+"\n"+
			renderProcesses(m.visibleProcesses(), 12))

	netCard := card("Network", m.networkBody(s.Network))

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, cpuCard, memCard, sensorCard)
	line2 := lipgloss.JoinHorizontal(lipgloss.Top, procCard, netCard)
	help := subtleStyle.Render("q quit  / filter  s sort  p pause graph  y graph scale  tab rx/tx")

	return lipgloss.JoinVertical(lipgloss.Left, header, line1, line2, help)
}

func (m *Model) visibleProcesses() []model.Process {
	q := strings.ToLower(m.filter.Value())
	rows := make([]model.Process, 0, len(m.latest.Processes.Top))
	for _, p := range m.latest.Processes.Top {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) {
			rows = append(rows, p)
		}
	}
	sampler.SortProcesses(rows, m.sortBy)
	return rows
}

func (m *Model) networkBody(ifaces []model.Interface) string {
	rx, tx := "RX", "TX"
	if m.netTab == 0 {
		rx = activeTab.Render(rx)
	} else {
		tx = activeTab.Render(tx)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s | %s\n", rx, tx)
	if m.netTab == 0 {
		fmt.Fprintf(&b, "%-10s %-15s %11s %12s %9s %5s %5s %5s %5s %5s %5s\n",
			"iface", "ipv4", "total", "rate", "packets", "errs", "drop", "fifo", "frame", "comp", "mcast")
		for _, i := range ifaces {
			c := i.Counters.RX
			fmt.Fprintf(&b, "%-10s %-15s %11s %12s %9d %5d %5d %5d %5d %5d %5d\n",
				truncate(i.Name, 10), i.IPv4, format.Bytes(i.RxBytes), format.Rate(i.RxRate),
				c.Packets, c.Errs, c.Drop, c.FIFO, c.Frame, c.Compressed, c.Multicast)
		}
	} else {
		fmt.Fprintf(&b, "%-10s %-15s %11s %12s %9s %5s %5s %5s %5s %5s %5s\n",
			"iface", "ipv4", "total", "rate", "packets", "errs", "drop", "fifo", "colls", "carr", "comp")
		for _, i := range ifaces {
			c := i.Counters.TX
			fmt.Fprintf(&b, "%-10s %-15s %11s %12s %9d %5d %5d %5d %5d %5d %5d\n",
				truncate(i.Name, 10), i.IPv4, format.Bytes(i.TxBytes), format.Rate(i.TxRate),
				c.Packets, c.Errs, c.Drop, c.FIFO, c.Colls, c.Carrier, c.Compressed)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func sensorBody(s model.Sample) string {
	temp := "n/a"
	if s.Sensors.TempAvailable {
		temp = fmt.Sprintf("%.1f°C", s.Sensors.TempC)
	}
	fan := "n/a"
	if s.Sensors.FanAvailable {
		fan = fmt.Sprintf("%s %.0f RPM", gaugeBar(s.Sensors.FanRPM*100/fanScaleRPM, 12), s.Sensors.FanRPM)
	}
	return fmt.Sprintf("Temp %s\n%s\nFan  %s", temp, sparkline(s.TempHistory, 24, 100), fan)
}

func stateLine(states map[string]int) string {
	keys := make([]string, 0, len(states))
	for k := range states {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, states[k]))
	}
	return subtleStyle.Render(strings.Join(parts, " "))
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %6s",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		format.Percent(pct))
}

// sparkline draws the last width values scaled against max.
func sparkline(values []float64, width int, max float64) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if max <= 0 {
		max = 100
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(v / max * float64(len(sparkRunes)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkRunes) {
			idx = len(sparkRunes) - 1
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func card(title, body string) string {
	titleStr := labelStyle.Render(title)
	content := titleStr + "\n" + body
	return cardStyle.Render(content)
}

func renderProcesses(rows []model.Process, limit int) string {
	n := min(limit, len(rows))
	var b strings.Builder
	fmt.Fprintf(&b, "%-7s %-18s %-2s %7s %6s %10s\n", "pid", "name", "st", "cpu", "mem", "rss")
	for i := 0; i < n; i++ {
		r := rows[i]
		fmt.Fprintf(&b, "%-7d %-18s %-2s %7s %6s %10s\n",
			r.PID, truncate(r.Name, 18), r.State, format.Percent(r.CPU), format.Percent(r.Memory), format.Bytes(r.RSSBytes))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string { return format.TruncateWithEllipsis(s, n) }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RunTUI starts the Bubble Tea program.
func RunTUI(cfg config.Config, smp *sampler.Sampler, host hostinfo.Info) error {
	prog := tea.NewProgram(New(cfg, smp, host), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
