// Package debug provides the interpreter's opt-in trace logger: the CPU
// logs one line per fetched instruction and the frame loop logs one line
// per frame boundary, both gated behind --log so a normal run produces no
// log traffic at all.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger streams formatted trace lines to a writer without ever blocking
// its caller: Logf enqueues a pre-formatted line on a buffered channel and
// a single background goroutine does the actual write. At 1,000,000
// instructions per second, the CPU's trace calls happen on the emulator's
// hot path, so the writer must never stall it — a full buffer drops the
// line rather than waiting.
type Logger struct {
	out io.Writer

	mu       sync.RWMutex
	enabled  map[Component]bool
	minLevel LogLevel

	lines    chan string
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewLogger returns a logger writing to w (os.Stderr if w is nil) with
// every component disabled; callers enable the ones they want traced with
// SetComponentEnabled.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	l := &Logger{
		out:      w,
		enabled:  make(map[Component]bool),
		minLevel: LogLevelInfo,
		lines:    make(chan string, 4096),
		shutdown: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.drain()
	return l
}

func (l *Logger) drain() {
	defer l.wg.Done()
	for {
		select {
		case line := <-l.lines:
			fmt.Fprintln(l.out, line)
		case <-l.shutdown:
			for {
				select {
				case line := <-l.lines:
					fmt.Fprintln(l.out, line)
				default:
					return
				}
			}
		}
	}
}

// Logf formats and enqueues a line tagged with component and level, if
// the component is enabled and level clears the configured minimum.
func (l *Logger) Logf(component Component, level LogLevel, format string, args ...interface{}) {
	l.mu.RLock()
	on := l.enabled[component] && level >= l.minLevel
	l.mu.RUnlock()
	if !on {
		return
	}

	ts := time.Now().Format("15:04:05.000")
	line := fmt.Sprintf("[%s] [%s] %s: %s", ts, component, level, fmt.Sprintf(format, args...))

	select {
	case l.lines <- line:
	default:
		// Buffer full: drop rather than block the emulator thread.
	}
}

// LogCPUf records one CPU trace line. This is the method cpu.CPU calls
// through the LoggerInterface it's wired with.
func (l *Logger) LogCPUf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentCPU, level, format, args...)
}

// LogSystemf records one frame-loop trace line.
func (l *Logger) LogSystemf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentSystem, level, format, args...)
}

// SetComponentEnabled toggles tracing for one component.
func (l *Logger) SetComponentEnabled(component Component, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled[component] = enabled
}

// SetMinLevel sets the minimum level that will be recorded.
func (l *Logger) SetMinLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// Shutdown flushes any buffered lines and stops the background writer.
// The caller must not call Logf after Shutdown returns.
func (l *Logger) Shutdown() {
	close(l.shutdown)
	l.wg.Wait()
}
