package world

import (
	"github.com/zond/etlua/host"
)

// Trace sweeps the box mins..maxs from start to end against the bounding
// boxes of linked entities. There is no map geometry, so anything not hit
// by an entity travels the full distance.
func (w *World) Trace(start, mins, maxs, end host.Vec3, passEnt, mask int) host.TraceResult {
	result := host.TraceResult{
		Fraction:  1,
		EndPos:    end,
		EntityNum: host.EntityNumNone,
	}
	for i := 0; i < w.numEntities; i++ {
		ent := &w.entities[i]
		if !ent.InUse || !ent.Linked || i == passEnt || ent.Contents&mask == 0 {
			continue
		}
		var lo, hi host.Vec3
		for axis := 0; axis < 3; axis++ {
			lo[axis] = ent.Origin[axis] + ent.Mins[axis] - maxs[axis]
			hi[axis] = ent.Origin[axis] + ent.Maxs[axis] - mins[axis]
		}
		startInside := inside(start, lo, hi)
		if startInside {
			result.StartSolid = true
			if inside(end, lo, hi) {
				result.AllSolid = true
			}
			result.Fraction = 0
			result.EntityNum = i
			result.Contents = ent.Contents
			continue
		}
		if frac, hit := sweep(start, end, lo, hi); hit && frac < result.Fraction {
			result.Fraction = frac
			result.EntityNum = i
			result.Contents = ent.Contents
		}
	}
	for axis := 0; axis < 3; axis++ {
		result.EndPos[axis] = start[axis] + result.Fraction*(end[axis]-start[axis])
	}
	return result
}

// InPVS treats two points as mutually visible unless something solid lies
// between them.
func (w *World) InPVS(a, b host.Vec3) bool {
	return w.Trace(a, host.Vec3{}, host.Vec3{}, b, host.EntityNumNone, host.ContentsSolid).Fraction == 1
}

func (w *World) PointContents(point host.Vec3, passEnt int) int {
	contents := 0
	for i := 0; i < w.numEntities; i++ {
		ent := &w.entities[i]
		if !ent.InUse || !ent.Linked || i == passEnt {
			continue
		}
		var lo, hi host.Vec3
		for axis := 0; axis < 3; axis++ {
			lo[axis] = ent.Origin[axis] + ent.Mins[axis]
			hi[axis] = ent.Origin[axis] + ent.Maxs[axis]
		}
		if inside(point, lo, hi) {
			contents |= ent.Contents
		}
	}
	return contents
}

func inside(p, lo, hi host.Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < lo[axis] || p[axis] > hi[axis] {
			return false
		}
	}
	return true
}

// sweep intersects the segment start..end with the box lo..hi using the slab
// method and returns the entry fraction.
func sweep(start, end, lo, hi host.Vec3) (float32, bool) {
	enter, exit := float32(0), float32(1)
	for axis := 0; axis < 3; axis++ {
		delta := end[axis] - start[axis]
		if delta == 0 {
			if start[axis] < lo[axis] || start[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - start[axis]) / delta
		t2 := (hi[axis] - start[axis]) / delta
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > enter {
			enter = t1
		}
		if t2 < exit {
			exit = t2
		}
		if enter > exit {
			return 0, false
		}
	}
	return enter, true
}
