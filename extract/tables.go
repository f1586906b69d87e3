package extract

import (
	"fmt"

	"github.com/flywave/go-jvxl/mesh"
)

// Cube corners, counted x first then y then z on each layer.
var cornerOffsets = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

var cubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Faces list their corners counter-clockwise seen from outside the cube.
var cubeFaces = [6][4]int{
	{0, 3, 2, 1}, {4, 5, 6, 7},
	{0, 1, 5, 4}, {3, 7, 6, 2},
	{0, 4, 7, 3}, {1, 2, 6, 5},
}

type cellTriangle struct {
	e     [3]int8
	check uint8
}

var (
	edgeBetween   [8][8]int
	edgeLowCorner [12]int
	edgeAxis      [12]int
	edgeFaces     [12]uint8
	caseTriangles [256][]cellTriangle
)

func init() {
	for i := range edgeBetween {
		for j := range edgeBetween[i] {
			edgeBetween[i][j] = -1
		}
	}
	for e, c := range cubeEdges {
		edgeBetween[c[0]][c[1]] = e
		edgeBetween[c[1]][c[0]] = e
		a, b := cornerOffsets[c[0]], cornerOffsets[c[1]]
		for axis := 0; axis < 3; axis++ {
			if a[axis] != b[axis] {
				edgeAxis[e] = axis
				if a[axis] < b[axis] {
					edgeLowCorner[e] = c[0]
				} else {
					edgeLowCorner[e] = c[1]
				}
			}
		}
	}
	for f, corners := range cubeFaces {
		for k := 0; k < 4; k++ {
			edgeFaces[edgeBetween[corners[k]][corners[(k+1)%4]]] |= 1 << uint(f)
		}
	}
	for c := range caseTriangles {
		caseTriangles[c] = buildCase(c)
	}
}

// buildCase triangulates one corner configuration. Every face contributes a
// segment per run of inside corners, running from the edge where the run is
// left to the edge where it was entered. An ambiguous face therefore keeps
// its two inside corners apart, and both cells sharing that face agree on it.
// The segments chain into closed loops.
func buildCase(c int) []cellTriangle {
	inside := func(k int) bool { return c&(1<<uint(k)) != 0 }
	var next [12]int
	for i := range next {
		next[i] = -1
	}
	for _, f := range cubeFaces {
		for k := 0; k < 4; k++ {
			a, b := f[k], f[(k+1)%4]
			if inside(a) || !inside(b) {
				continue
			}
			for j := 1; j < 4; j++ {
				p, q := f[(k+j)%4], f[(k+j+1)%4]
				if inside(p) && !inside(q) {
					next[edgeBetween[p][q]] = edgeBetween[a][b]
					break
				}
			}
		}
	}

	var tris []cellTriangle
	var used [12]bool
	for s := range next {
		if next[s] < 0 || used[s] {
			continue
		}
		var loop []int
		for e := s; e >= 0 && !used[e]; e = next[e] {
			used[e] = true
			loop = append(loop, e)
		}
		pos := make([]int, len(loop))
		for i := range pos {
			pos[i] = i
		}
		parts, ok := triangulateLoop(loop, pos)
		if !ok {
			panic(fmt.Sprintf("extract: loop %v of case %d has no interior triangulation", loop, c))
		}
		boundary := func(i, j int) bool {
			d := i - j
			if d < 0 {
				d = -d
			}
			return d == 1 || d == len(loop)-1
		}
		for _, t := range parts {
			var check uint8
			if boundary(t[0], t[1]) {
				check |= mesh.CheckEdge01
			}
			if boundary(t[1], t[2]) {
				check |= mesh.CheckEdge12
			}
			if boundary(t[2], t[0]) {
				check |= mesh.CheckEdge20
			}
			tris = append(tris, cellTriangle{
				e:     [3]int8{int8(loop[t[0]]), int8(loop[t[1]]), int8(loop[t[2]])},
				check: check,
			})
		}
	}
	return tris
}

func sameFace(a, b int) bool {
	return edgeFaces[a]&edgeFaces[b] != 0
}

// triangulateLoop splits the polygon p, given as positions in loop, so that
// no diagonal joins two edges of the same cube face.
func triangulateLoop(loop, p []int) ([][3]int, bool) {
	n := len(p)
	if n < 3 {
		return nil, true
	}
	a, b := p[0], p[n-1]
	for k := 1; k < n-1; k++ {
		if k > 1 && sameFace(loop[a], loop[p[k]]) {
			continue
		}
		if k < n-2 && sameFace(loop[p[k]], loop[b]) {
			continue
		}
		left, ok := triangulateLoop(loop, p[:k+1])
		if !ok {
			continue
		}
		right, ok := triangulateLoop(loop, p[k:])
		if !ok {
			continue
		}
		tris := append(left, [3]int{a, p[k], b})
		return append(tris, right...), true
	}
	return nil, false
}
