package script

import (
	"unicode/utf8"

	"github.com/dshills/castedit/internal/cast"
	"github.com/dshills/castedit/internal/castfile"
	lua "github.com/yuin/gopher-lua"
)

// module implements the cast Lua module. Events cross the boundary as
// tables with time, code, data, kind and offset fields.
type module struct {
	s *State
}

func newModule(s *State) *module {
	return &module{s: s}
}

func (m *module) table(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"header":      m.header,
		"lines":       m.lines,
		"each":        m.each,
		"order":       m.order,
		"add":         m.add,
		"delete":      m.delete,
		"modify_data": m.modifyData,
		"modify":      m.modify,
		"swap":        m.swap,
		"modified":    m.modified,
		"stats":       m.stats,
	})
}

func (m *module) file(L *lua.LState) *castfile.CastFile {
	m.s.sandbox.charge(L, 1)
	if m.s.file == nil {
		L.RaiseError("%s", ErrNoFile.Error())
	}
	return m.s.file
}

func raise(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

// cast.header() -> table
func (m *module) header(L *lua.LState) int {
	h := m.file(L).Header()
	t := L.NewTable()
	t.RawSetString("version", lua.LNumber(h.Version))
	t.RawSetString("width", lua.LNumber(h.Width))
	t.RawSetString("height", lua.LNumber(h.Height))
	if h.Timestamp != nil {
		t.RawSetString("timestamp", lua.LNumber(*h.Timestamp))
	}
	if h.Duration != nil {
		t.RawSetString("duration", lua.LNumber(*h.Duration))
	}
	if h.IdleTimeLimit != nil {
		t.RawSetString("idle_time_limit", lua.LNumber(*h.IdleTimeLimit))
	}
	if h.Command != nil {
		t.RawSetString("command", lua.LString(*h.Command))
	}
	if h.Title != nil {
		t.RawSetString("title", lua.LString(*h.Title))
	}
	if len(h.Env) > 0 {
		env := L.NewTable()
		for k, v := range h.Env {
			env.RawSetString(k, lua.LString(v))
		}
		t.RawSetString("env", env)
	}
	if h.Theme != nil {
		theme := L.NewTable()
		theme.RawSetString("fg", lua.LString(h.Theme.FG.Hex()))
		theme.RawSetString("bg", lua.LString(h.Theme.BG.Hex()))
		palette := L.NewTable()
		for _, c := range h.Theme.Palette {
			palette.Append(lua.LString(c.Hex()))
		}
		theme.RawSetString("palette", palette)
		t.RawSetString("theme", theme)
	}
	L.Push(t)
	return 1
}

// cast.lines(pos, n) -> {event...}
func (m *module) lines(L *lua.LState) int {
	f := m.file(L)
	pos := float64(L.CheckNumber(1))
	n := L.CheckInt(2)
	events, err := f.GetLines(pos, n)
	raise(L, err)
	m.s.sandbox.charge(L, int64(len(events)))

	t := L.CreateTable(len(events), 0)
	for _, p := range events {
		t.Append(positionedTable(L, p))
	}
	L.Push(t)
	return 1
}

// cast.each(fn) calls fn(event) for every event until fn returns false.
func (m *module) each(L *lua.LState) int {
	f := m.file(L)
	fn := L.CheckFunction(1)
	err := f.Each(func(p cast.Positioned) bool {
		m.s.sandbox.charge(L, 1)
		L.Push(fn)
		L.Push(positionedTable(L, p))
		L.Call(1, 1)
		ret := L.Get(-1)
		L.Pop(1)
		return ret != lua.LFalse
	})
	raise(L, err)
	return 0
}

// cast.order(offset, time) -> integer
func (m *module) order(L *lua.LState) int {
	f := m.file(L)
	offset := L.CheckInt(1)
	t := float64(L.CheckNumber(2))
	L.Push(lua.LNumber(f.GetOrder(offset, cast.Event{Time: t})))
	return 1
}

// cast.add(order, current, previous, event)
func (m *module) add(L *lua.LState) int {
	f := m.file(L)
	order := L.CheckInt(1)
	current := checkPositioned(L, 2)
	previous := optPositioned(L, 3)
	ev := checkEvent(L, 4)
	raise(L, f.Action(castfile.Addition{Event: ev}, order, current, previous))
	return 0
}

// cast.delete(order, current)
func (m *module) delete(L *lua.LState) int {
	f := m.file(L)
	order := L.CheckInt(1)
	current := checkPositioned(L, 2)
	raise(L, f.Action(castfile.Deletion{}, order, current, nil))
	return 0
}

// cast.modify_data(order, current, code, data)
func (m *module) modifyData(L *lua.LState) int {
	f := m.file(L)
	order := L.CheckInt(1)
	current := checkPositioned(L, 2)
	code := checkCode(L, 3)
	data, err := cast.ParseData(code, L.CheckString(4))
	if err != nil {
		L.ArgError(4, err.Error())
	}
	raise(L, f.Action(castfile.ModifyData{Data: data}, order, current, nil))
	return 0
}

// cast.modify(order, current, previous, next, event)
func (m *module) modify(L *lua.LState) int {
	f := m.file(L)
	order := L.CheckInt(1)
	current := checkPositioned(L, 2)
	previous := optPositioned(L, 3)
	next := optPositioned(L, 4)
	ev := checkEvent(L, 5)
	raise(L, f.AdvancedAction(castfile.Modify{Event: ev}, order, current, previous, next))
	return 0
}

// cast.swap(order, current, target, target_order)
func (m *module) swap(L *lua.LState) int {
	f := m.file(L)
	order := L.CheckInt(1)
	current := checkPositioned(L, 2)
	target := checkPositioned(L, 3)
	targetOrder := L.CheckInt(4)
	act := castfile.Swap{Target: target, TargetOrder: targetOrder}
	raise(L, f.AdvancedAction(act, order, current, nil, nil))
	return 0
}

// cast.modified() -> boolean
func (m *module) modified(L *lua.LState) int {
	L.Push(lua.LBool(m.file(L).Modified()))
	return 1
}

// cast.stats() -> {chains, insertions, deletions}
func (m *module) stats(L *lua.LState) int {
	st := m.file(L).Stats()
	t := L.NewTable()
	t.RawSetString("chains", lua.LNumber(st.Chains))
	t.RawSetString("insertions", lua.LNumber(st.Insertions))
	t.RawSetString("deletions", lua.LNumber(st.Deletions))
	L.Push(t)
	return 1
}

func positionedTable(L *lua.LState, p cast.Positioned) *lua.LTable {
	t := L.CreateTable(0, 5)
	t.RawSetString("time", lua.LNumber(p.Time))
	t.RawSetString("code", lua.LString(string(p.Code())))
	t.RawSetString("data", lua.LString(p.Payload()))
	t.RawSetString("kind", lua.LString(p.Kind()))
	t.RawSetString("offset", lua.LNumber(p.Offset))
	return t
}

func checkEvent(L *lua.LState, n int) cast.Event {
	t := L.CheckTable(n)
	tm, ok := L.GetField(t, "time").(lua.LNumber)
	if !ok {
		L.ArgError(n, "event.time must be a number")
	}
	code, ok := L.GetField(t, "code").(lua.LString)
	if !ok || utf8.RuneCountInString(string(code)) != 1 {
		L.ArgError(n, "event.code must be a single character")
	}
	data, ok := L.GetField(t, "data").(lua.LString)
	if !ok {
		L.ArgError(n, "event.data must be a string")
	}
	r, _ := utf8.DecodeRuneInString(string(code))
	ev, err := cast.NewEvent(float64(tm), r, string(data))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return ev
}

func checkPositioned(L *lua.LState, n int) cast.Positioned {
	ev := checkEvent(L, n)
	off, ok := L.GetField(L.CheckTable(n), "offset").(lua.LNumber)
	if !ok {
		L.ArgError(n, "event.offset must be a number")
	}
	return cast.Positioned{Event: ev, Offset: int(off)}
}

func optPositioned(L *lua.LState, n int) *cast.Positioned {
	if L.Get(n) == lua.LNil {
		return nil
	}
	p := checkPositioned(L, n)
	return &p
}

func checkCode(L *lua.LState, n int) rune {
	s := L.CheckString(n)
	if utf8.RuneCountInString(s) != 1 {
		L.ArgError(n, "code must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
