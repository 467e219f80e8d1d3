// Package luabind exposes a ragdoll animator to Lua scripts.
package luabind

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/ikemen-engine/ikemen-ragdoll/ragdoll"
)

func strArg(l *lua.LState, argi int) string {
	if !lua.LVCanConvToString(l.Get(argi)) {
		l.RaiseError("\nArgument %v is not a string: %v\n", argi, l.Get(argi))
	}
	return l.ToString(argi)
}

func numArg(l *lua.LState, argi int) float64 {
	num, ok := l.Get(argi).(lua.LNumber)
	if !ok {
		l.RaiseError("\nArgument %v is not a number: %v\n", argi, l.Get(argi))
	}
	return float64(num)
}

func nilArg(l *lua.LState, argi int) bool {
	lv := l.Get(argi)
	return lua.LVIsFalse(lv) && lv != lua.LFalse
}

// Register installs a global table called name whose functions drive a:
//
//	name.mode()                 -- "animation" or "physics"
//	name.setMode(mode)          -- also accepts "leech" and "seed"
//	name.isMoving([threshold])
//	name.rootPosition()         -- x, y, z
//	name.createJoints()
//	name.releaseJoints()
//	name.actorCount()
func Register(l *lua.LState, name string, a *ragdoll.Animator) {
	t := l.NewTable()
	fn := func(key string, f func(*lua.LState) int) {
		t.RawSetString(key, l.NewFunction(f))
	}
	fn("mode", func(l *lua.LState) int {
		l.Push(lua.LString(a.CurrentMode().String()))
		return 1
	})
	fn("setMode", func(l *lua.LState) int {
		m, err := ragdoll.ParseMode(strArg(l, 1))
		if err != nil {
			l.RaiseError("\n%v\n", err)
		}
		a.SetMode(m)
		return 0
	})
	fn("isMoving", func(l *lua.LState) int {
		var threshold float32
		if !nilArg(l, 1) {
			threshold = float32(numArg(l, 1))
		}
		l.Push(lua.LBool(a.IsMoving(threshold)))
		return 1
	})
	fn("rootPosition", func(l *lua.LState) int {
		p := a.RootPosition()
		l.Push(lua.LNumber(p[0]))
		l.Push(lua.LNumber(p[1]))
		l.Push(lua.LNumber(p[2]))
		return 3
	})
	fn("createJoints", func(l *lua.LState) int {
		if err := a.CreateJoints(); err != nil {
			l.RaiseError("\n%v\n", err)
		}
		return 0
	})
	fn("releaseJoints", func(*lua.LState) int {
		a.ReleaseJoints()
		return 0
	})
	fn("actorCount", func(l *lua.LState) int {
		n := 0
		if s := a.Skeleton(); s != nil {
			n = len(s.Actors())
		}
		l.Push(lua.LNumber(n))
		return 1
	})
	l.SetGlobal(name, t)
}
