// Package script runs sandboxed Lua edit scripts against a cast file.
//
// Scripts see a global module named cast:
//
//	for _, ev in ipairs(cast.lines(0, 100)) do
//	    if ev.code == "i" then
//	        cast.delete(cast.order(ev.offset, ev.time), ev)
//	    end
//	end
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dshills/castedit/internal/castfile"
	"github.com/dshills/castedit/internal/logging"
	lua "github.com/yuin/gopher-lua"
)

// Default limits for a script run.
const (
	DefaultTimeout          = 30 * time.Second
	DefaultInstructionLimit = 50_000_000
)

// State wraps a gopher-lua state bound to one cast file.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes runs.
type State struct {
	L *lua.LState

	mu sync.Mutex

	timeout          time.Duration
	instructionLimit int64
	output           io.Writer
	log              *logging.Logger

	sandbox *sandbox
	file    *castfile.CastFile

	closed bool
}

// Option configures a State.
type Option func(*State)

// WithTimeout bounds the wall time of each run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		s.timeout = d
	}
}

// WithInstructionLimit bounds the calls a run may make into the cast
// module. Each call costs one, plus one per event it returns.
func WithInstructionLimit(limit int64) Option {
	return func(s *State) {
		s.instructionLimit = limit
	}
}

// WithOutput sends print output to w. Print is discarded by default.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		s.output = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) {
		s.log = l
	}
}

// NewState creates a sandboxed state with the cast module bound to f.
func NewState(f *castfile.CastFile, opts ...Option) *State {
	s := &State{
		timeout:          DefaultTimeout,
		instructionLimit: DefaultInstructionLimit,
		file:             f,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.OrNull(s.log).WithComponent("script")

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	s.L = L
	openSafeLibraries(L)

	s.sandbox = newSandbox(L, s.instructionLimit, s.output)
	s.sandbox.install()

	L.SetGlobal("cast", newModule(s).table(L))
	return s
}

// DoString runs code under name, which appears in error messages.
func (s *State) DoString(ctx context.Context, name, code string) error {
	return s.run(ctx, name, func() error {
		fn, err := s.L.Load(strings.NewReader(code), name)
		if err != nil {
			return err
		}
		s.L.Push(fn)
		return s.L.PCall(0, lua.MultRet, nil)
	})
}

// DoFile runs the script at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, path, func() error {
		return s.L.DoFile(path)
	})
}

func (s *State) run(ctx context.Context, name string, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	s.sandbox.reset()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	top := s.L.GetTop()
	defer s.L.SetTop(top)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
		err = s.classify(ctx, err)
		s.log.WithFields(map[string]any{
			"script":       name,
			"instructions": s.sandbox.count(),
			"elapsed":      time.Since(start).Round(time.Millisecond),
		}).Debug("script finished")
	}()
	return fn()
}

func (s *State) classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case s.sandbox.exceeded.Load():
		return fmt.Errorf("%w: %v", ErrInstructionLimit, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

// Instructions returns the count charged by the last run.
func (s *State) Instructions() int64 {
	return s.sandbox.count()
}

// Close releases the Lua state. It does not close the cast file.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// Run executes the script at path against f with a fresh state.
func Run(ctx context.Context, f *castfile.CastFile, path string, opts ...Option) error {
	s := NewState(f, opts...)
	defer s.Close()
	return s.DoFile(ctx, path)
}
