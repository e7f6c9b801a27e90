package procfs

import (
	"bufio"
	"bytes"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

const (
	hwmonFanGlob = "class/hwmon/hwmon*/fan1_input"
	ibmThermal   = "acpi/ibm/thermal"
	ibmFan       = "acpi/ibm/fan"
)

// cpuSensorPrefixes rank the sensors that track the CPU package.
var cpuSensorPrefixes = []string{"coretemp", "k10temp", "zenpower", "x86_pkg_temp", "cpu"}

// Sensors reads the CPU temperature and first fan speed. The generic sysfs
// sources are tried first, then the ThinkPad ACPI files under /proc.
func (r *Reader) Sensors() model.Sensors {
	var s model.Sensors
	s.TempC, s.TempAvailable = r.temperature()
	s.FanRPM, s.FanAvailable = r.fan()
	return s
}

func (r *Reader) temperature() (float64, bool) {
	// Partial results arrive with a warning error; keep whatever was read.
	temps, err := host.SensorsTemperaturesWithContext(r.hostContext())
	if err != nil {
		r.logger.Debug("temperature sensors", "root", r.sysRoot, "error", err)
	}
	if v, ok := pickTemperature(temps); ok {
		return v, true
	}
	if b := r.readProc(ibmThermal); b != nil {
		// temperatures: 50 -128 0 0 39 0 0 -128
		if v, ok := labelledValue(b, "temperatures:"); ok {
			return v, true
		}
	}
	return 0, false
}

func (r *Reader) fan() (float64, bool) {
	if r.sys != nil {
		matches, _ := fs.Glob(r.sys, hwmonFanGlob)
		sort.Strings(matches)
		for _, m := range matches {
			b := r.readSys(m)
			if b == nil {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64); err == nil {
				return v, true
			}
		}
	}
	if b := r.readProc(ibmFan); b != nil {
		if v, ok := labelledValue(b, "speed:"); ok {
			return v, true
		}
	}
	return 0, false
}

// pickTemperature prefers a CPU package sensor and otherwise takes the
// first reading.
func pickTemperature(temps []host.TemperatureStat) (float64, bool) {
	if len(temps) == 0 {
		return 0, false
	}
	for _, prefix := range cpuSensorPrefixes {
		for _, t := range temps {
			if strings.HasPrefix(strings.ToLower(t.SensorKey), prefix) {
				return t.Temperature, true
			}
		}
	}
	return temps[0].Temperature, true
}

// labelledValue finds the first line containing label and parses the first
// number after it.
func labelledValue(data []byte, label string) (float64, bool) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		_, rest, ok := strings.Cut(sc.Text(), label)
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return 0, false
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		return v, err == nil
	}
	return 0, false
}
