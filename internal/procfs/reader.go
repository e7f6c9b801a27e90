// Package procfs reads point-in-time counter snapshots from the Linux proc
// and sys pseudo-filesystems.
//
// Tick and byte counters (stat, <pid>/stat, net/dev) are parsed directly
// from an fs.FS. Occupancy readings (memory, load, disk, temperature) go
// through gopsutil, pointed at the same roots.
//
// Readers never fail the caller: a missing source yields a zero value and a
// malformed record is skipped. The only error surfaced is ErrNotFound from
// Process, so callers can tell a vanished PID from an idle one.
package procfs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v3/common"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// ErrNotFound reports a process that is gone or whose record is unusable.
var ErrNotFound = errors.New("procfs: process not found")

// Reader reads snapshots from a proc root and a sys root.
type Reader struct {
	proc     fs.FS
	sys      fs.FS
	procRoot string
	sysRoot  string
	pageSize uint64
	statfs   func(path string) (model.Disk, error)
	logger   *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithRoots points every reader at proc and sys directories on disk.
func WithRoots(proc, sys string) Option {
	return func(r *Reader) {
		r.procRoot, r.sysRoot = proc, sys
		r.proc, r.sys = os.DirFS(proc), os.DirFS(sys)
	}
}

// WithProcFS replaces the filesystem the counter parsers read.
func WithProcFS(fsys fs.FS) Option { return func(r *Reader) { r.proc = fsys } }

// WithPageSize overrides the page size used to convert RSS pages to bytes.
func WithPageSize(n uint64) Option { return func(r *Reader) { r.pageSize = n } }

// WithStatfs replaces the filesystem usage lookup behind Disk.
func WithStatfs(fn func(path string) (model.Disk, error)) Option {
	return func(r *Reader) { r.statfs = fn }
}

// WithLogger sets the logger used for debug output on unreadable sources.
func WithLogger(l *slog.Logger) Option { return func(r *Reader) { r.logger = l } }

// New returns a Reader over /proc and /sys unless overridden.
func New(opts ...Option) *Reader {
	r := &Reader{
		proc:     os.DirFS("/proc"),
		sys:      os.DirFS("/sys"),
		procRoot: "/proc",
		sysRoot:  "/sys",
		pageSize: uint64(os.Getpagesize()),
		statfs:   diskUsage,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// hostContext carries the proc and sys roots to gopsutil.
func (r *Reader) hostContext() context.Context {
	return context.WithValue(context.Background(), common.EnvKey, common.EnvMap{
		common.HostProcEnvKey: r.procRoot,
		common.HostSysEnvKey:  r.sysRoot,
	})
}

// readProc reads a whole proc file, logging and returning nil on failure.
func (r *Reader) readProc(name string) []byte {
	return r.read(r.proc, "proc", name)
}

func (r *Reader) readSys(name string) []byte {
	return r.read(r.sys, "sys", name)
}

func (r *Reader) read(fsys fs.FS, root, name string) []byte {
	if fsys == nil {
		return nil
	}
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		r.logger.Debug("source unavailable", "root", root, "path", name, "error", err)
		return nil
	}
	return b
}
