package api

import (
	"github.com/zond/etlua/host"

	lua "github.com/yuin/gopher-lua"
)

// CheckVector3 reads a 1-based {x, y, z} table argument. Missing or
// non-numeric components read as zero, a non-table is an argument error.
func CheckVector3(L *lua.LState, n int) host.Vec3 {
	return ToVector3(L.CheckTable(n))
}

// OptVector3 is CheckVector3 for an argument that may be nil or absent.
func OptVector3(L *lua.LState, n int, def host.Vec3) host.Vec3 {
	if L.Get(n) == lua.LNil {
		return def
	}
	return CheckVector3(L, n)
}

func ToVector3(tbl *lua.LTable) host.Vec3 {
	var v host.Vec3
	for i := range v {
		v[i] = float32(lua.LVAsNumber(tbl.RawGetInt(i + 1)))
	}
	return v
}

func VectorTable(L *lua.LState, v host.Vec3) *lua.LTable {
	tbl := L.CreateTable(3, 0)
	for i, f := range v {
		tbl.RawSetInt(i+1, lua.LNumber(f))
	}
	return tbl
}

func PushVector3(L *lua.LState, v host.Vec3) {
	L.Push(VectorTable(L, v))
}

// BoundedIndex reads integer argument n and reports whether it lies in
// [0, limit).
func BoundedIndex(L *lua.LState, n, limit int) (int, bool) {
	idx := L.CheckInt(n)
	return idx, idx >= 0 && idx < limit
}

// OptBoundedIndex is BoundedIndex with a default for absent arguments.
func OptBoundedIndex(L *lua.LState, n, def, limit int) (int, bool) {
	idx := L.OptInt(n, def)
	return idx, idx >= 0 && idx < limit
}

// CheckString reads a string argument and truncates it to a host buffer
// of size bytes.
func CheckString(L *lua.LState, n, size int) string {
	return host.Truncate(L.CheckString(n), size)
}

func PushString(L *lua.LState, s string, size int) {
	L.Push(lua.LString(host.Truncate(s, size)))
}

func PushBool(L *lua.LState, b bool) {
	L.Push(lua.LBool(b))
}

// PushFlag pushes b as the 0/1 integer the engine uses for booleans.
func PushFlag(L *lua.LState, b bool) {
	if b {
		L.Push(lua.LNumber(1))
	} else {
		L.Push(lua.LNumber(0))
	}
}

func TraceTable(L *lua.LState, tr host.TraceResult) *lua.LTable {
	tbl := L.CreateTable(0, 7)
	tbl.RawSetString("allsolid", lua.LBool(tr.AllSolid))
	tbl.RawSetString("startsolid", lua.LBool(tr.StartSolid))
	tbl.RawSetString("fraction", lua.LNumber(tr.Fraction))
	tbl.RawSetString("endpos", VectorTable(L, tr.EndPos))
	tbl.RawSetString("surfaceFlags", lua.LNumber(tr.SurfaceFlags))
	tbl.RawSetString("contents", lua.LNumber(tr.Contents))
	tbl.RawSetString("entityNum", lua.LNumber(tr.EntityNum))
	return tbl
}

func PushTrace(L *lua.LState, tr host.TraceResult) {
	L.Push(TraceTable(L, tr))
}

// PushStrings pushes a 1-based array of strings.
func PushStrings(L *lua.LState, strs []string) {
	tbl := L.CreateTable(len(strs), 0)
	for i, s := range strs {
		tbl.RawSetInt(i+1, lua.LString(s))
	}
	L.Push(tbl)
}

// intTable renders a host array the way the engine does: 0-based keys.
func intTable(L *lua.LState, vals []int) *lua.LTable {
	tbl := L.CreateTable(0, len(vals))
	for i, v := range vals {
		tbl.RawSetInt(i, lua.LNumber(v))
	}
	return tbl
}
