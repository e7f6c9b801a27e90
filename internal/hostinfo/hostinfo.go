// Package hostinfo gathers one-shot facts about the machine for the
// dashboard header.
package hostinfo

import (
	"context"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/net"
)

// Unknown is shown for any fact that could not be determined.
const Unknown = "Unknown"

// Info is static host information.
type Info struct {
	OS       string            `json:"os"`
	Platform string            `json:"platform"`
	Kernel   string            `json:"kernel"`
	Hostname string            `json:"hostname"`
	Username string            `json:"username"`
	CPUModel string            `json:"cpu_model"`
	Uptime   time.Duration     `json:"uptime"`
	IPv4     map[string]string `json:"ipv4"`
}

// Collect queries the host. Each lookup fails independently.
func Collect(ctx context.Context) Info {
	info := Info{
		OS:       runtime.GOOS,
		Platform: Unknown,
		Kernel:   Unknown,
		Hostname: Unknown,
		Username: username(),
		CPUModel: Unknown,
		IPv4:     IPv4Addresses(ctx),
	}
	if h, err := host.InfoWithContext(ctx); err == nil {
		if h.Hostname != "" {
			info.Hostname = h.Hostname
		}
		if p := strings.TrimSpace(h.Platform + " " + h.PlatformVersion); p != "" {
			info.Platform = p
		}
		if h.KernelVersion != "" {
			info.Kernel = h.KernelVersion
		}
		info.Uptime = time.Duration(h.Uptime) * time.Second
	} else if name, err := os.Hostname(); err == nil {
		info.Hostname = name
	}
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 && cpus[0].ModelName != "" {
		info.CPUModel = cpus[0].ModelName
	}
	return info
}

// IPv4Addresses maps interface name to its first IPv4 address.
func IPv4Addresses(ctx context.Context) map[string]string {
	out := make(map[string]string)
	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return out
	}
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			if ip, ok := ipv4(addr.Addr); ok {
				out[iface.Name] = ip
				break
			}
		}
	}
	return out
}

// ipv4 strips the prefix length from a "a.b.c.d/nn" address and rejects
// IPv6 forms.
func ipv4(cidr string) (string, bool) {
	ip, _, _ := strings.Cut(cidr, "/")
	if strings.Contains(ip, ":") || strings.Count(ip, ".") != 3 {
		return "", false
	}
	return ip, true
}

func username() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if v := os.Getenv("USER"); v != "" {
		return v
	}
	return Unknown
}
