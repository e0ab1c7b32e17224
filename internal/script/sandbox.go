package script

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// sandbox restricts a Lua state to the base, table, string and math
// libraries and meters calls into the host.
type sandbox struct {
	L *lua.LState

	instructionLimit int64
	instructionCount int64
	exceeded         atomic.Bool

	output io.Writer
}

func newSandbox(L *lua.LState, instructionLimit int64, output io.Writer) *sandbox {
	return &sandbox{
		L:                L,
		instructionLimit: instructionLimit,
		output:           output,
	}
}

// openSafeLibraries opens only the libraries a script needs. io, os, debug,
// package and coroutine stay closed.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// install removes loaders and replaces print.
func (s *sandbox) install() {
	for _, name := range []string{
		"dofile",
		"loadfile",
		"load",
		"loadstring",
		"require",
		"module",
		"collectgarbage",
	} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.L.SetGlobal("print", s.L.NewFunction(s.print))
}

func (s *sandbox) print(L *lua.LState) int {
	if s.output == nil {
		return 0
	}
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(s.output, strings.Join(parts, "\t"))
	return 0
}

func (s *sandbox) reset() {
	atomic.StoreInt64(&s.instructionCount, 0)
	s.exceeded.Store(false)
}

func (s *sandbox) count() int64 {
	return atomic.LoadInt64(&s.instructionCount)
}

// charge adds n to the instruction count and raises a Lua error once the
// limit is passed.
func (s *sandbox) charge(L *lua.LState, n int64) {
	if s.instructionLimit <= 0 {
		return
	}
	if atomic.AddInt64(&s.instructionCount, n) > s.instructionLimit {
		s.exceeded.Store(true)
		L.RaiseError("%s", ErrInstructionLimit.Error())
	}
}
