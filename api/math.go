package api

import (
	"math"

	"github.com/zond/etlua/host"

	lua "github.com/yuin/gopher-lua"
)

const (
	pitch = 0
	yaw   = 1
	roll  = 2
)

func add(a, b host.Vec3) host.Vec3 {
	return host.Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func subtract(a, b host.Vec3) host.Vec3 {
	return host.Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale(a host.Vec3, s float32) host.Vec3 {
	return host.Vec3{a[0] * s, a[1] * s, a[2] * s}
}

func dot(a, b host.Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross(a, b host.Vec3) host.Vec3 {
	return host.Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func length(a host.Vec3) float32 {
	return float32(math.Sqrt(float64(dot(a, a))))
}

// normalize returns a unit vector along a. The zero vector stays zero.
func normalize(a host.Vec3) host.Vec3 {
	l := length(a)
	if l == 0 {
		return a
	}
	return scale(a, 1/l)
}

func angleVectors(angles host.Vec3) (forward, right, up host.Vec3) {
	rad := func(deg float32) (float32, float32) {
		s, c := math.Sincos(float64(deg) * math.Pi / 180)
		return float32(s), float32(c)
	}
	sy, cy := rad(angles[yaw])
	sp, cp := rad(angles[pitch])
	sr, cr := rad(angles[roll])
	forward = host.Vec3{cp * cy, cp * sy, -sp}
	right = host.Vec3{-sr*sp*cy + cr*sy, -sr*sp*sy - cr*cy, -sr * cp}
	up = host.Vec3{cr*sp*cy + sr*sy, cr*sp*sy - sr*cy, cr * cp}
	return
}

func unary(fn func(float64) float64) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LNumber(fn(float64(L.CheckNumber(1)))))
		return 1
	}
}

func binary(fn func(float64, float64) float64) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LNumber(fn(float64(L.CheckNumber(1)), float64(L.CheckNumber(2)))))
		return 1
	}
}

func (b *binding) addMath(f Functions) {
	f["VectorAdd"] = func(L *lua.LState) int {
		PushVector3(L, add(CheckVector3(L, 1), CheckVector3(L, 2)))
		return 1
	}
	f["VectorSubtract"] = func(L *lua.LState) int {
		PushVector3(L, subtract(CheckVector3(L, 1), CheckVector3(L, 2)))
		return 1
	}
	f["VectorScale"] = func(L *lua.LState) int {
		PushVector3(L, scale(CheckVector3(L, 1), float32(L.CheckNumber(2))))
		return 1
	}
	f["VectorMA"] = func(L *lua.LState) int {
		v := CheckVector3(L, 1)
		s := float32(L.CheckNumber(2))
		PushVector3(L, add(v, scale(CheckVector3(L, 3), s)))
		return 1
	}
	f["VectorLength"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(length(CheckVector3(L, 1))))
		return 1
	}
	f["VectorNormalize"] = func(L *lua.LState) int {
		PushVector3(L, normalize(CheckVector3(L, 1)))
		return 1
	}
	f["DotProduct"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(dot(CheckVector3(L, 1), CheckVector3(L, 2))))
		return 1
	}
	f["CrossProduct"] = func(L *lua.LState) int {
		PushVector3(L, cross(CheckVector3(L, 1), CheckVector3(L, 2)))
		return 1
	}
	f["Distance"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(length(subtract(CheckVector3(L, 1), CheckVector3(L, 2)))))
		return 1
	}
	f["AngleVectors"] = func(L *lua.LState) int {
		forward, right, up := angleVectors(CheckVector3(L, 1))
		PushVector3(L, forward)
		PushVector3(L, right)
		PushVector3(L, up)
		return 3
	}
	f["floor"] = unary(math.Floor)
	f["ceil"] = unary(math.Ceil)
	f["abs"] = unary(math.Abs)
	f["sin"] = unary(math.Sin)
	f["cos"] = unary(math.Cos)
	f["tan"] = unary(math.Tan)
	f["asin"] = unary(math.Asin)
	f["acos"] = unary(math.Acos)
	f["atan"] = unary(math.Atan)
	f["sqrt"] = unary(math.Sqrt)
	f["atan2"] = binary(math.Atan2)
	f["pow"] = binary(math.Pow)
}
