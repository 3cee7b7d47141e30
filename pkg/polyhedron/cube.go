package polyhedron

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Box corners are numbered x + 2y + 4z, where each bit selects the max side.

// cubeEdges lists p0, p1, left face, right face for each box edge.
var cubeEdges = [12][4]int32{
	{0, 1, 2, 4},
	{0, 2, 4, 0},
	{0, 4, 0, 2},
	{1, 3, 1, 4},
	{1, 5, 2, 1},
	{2, 3, 4, 3},
	{2, 6, 3, 0},
	{3, 7, 1, 3},
	{4, 5, 5, 2},
	{4, 6, 0, 5},
	{5, 7, 5, 1},
	{6, 7, 3, 5},
}

// cubeFaces lists each face's normal and its edges clockwise seen from outside.
var cubeFaces = [6]struct {
	normal v3.Vec
	ring   [4]int32
}{
	{v3.Vec{X: -1}, [4]int32{1, 6, 9, 2}},
	{v3.Vec{X: 1}, [4]int32{4, 10, 7, 3}},
	{v3.Vec{Y: -1}, [4]int32{2, 8, 4, 0}},
	{v3.Vec{Y: 1}, [4]int32{5, 7, 11, 6}},
	{v3.Vec{Z: -1}, [4]int32{0, 3, 5, 1}},
	{v3.Vec{Z: 1}, [4]int32{9, 11, 10, 8}},
}

// newBoxGraph returns the boundary graph of an axis-aligned box.
func newBoxGraph(box sdf.Box3) *graph {
	g := &graph{
		points: make([]point, 0, 8),
		edges:  make([]edge, 0, len(cubeEdges)),
		faces:  make([]face, 0, len(cubeFaces)),
	}
	for i := 0; i < 8; i++ {
		pos := box.Min
		if i&1 != 0 {
			pos.X = box.Max.X
		}
		if i&2 != 0 {
			pos.Y = box.Max.Y
		}
		if i&4 != 0 {
			pos.Z = box.Max.Z
		}
		g.addPoint(pos, stateAlive)
	}
	for _, e := range cubeEdges {
		g.addEdge(e[0], e[1], e[2], e[3])
	}
	for _, f := range cubeFaces {
		g.addFace(f.normal, append([]int32(nil), f.ring[:]...))
	}
	if err := g.link(); err != nil {
		// The tables above are fixed; a failure here is a programming error.
		panic(err)
	}
	return g
}
