package polyhedron

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// faceArea returns the area of face f.
func (p *Polyhedron) faceArea(f int) float64 {
	loop := p.FaceLoop(f)
	v0 := p.Vertices[loop[0]]
	var sum v3.Vec
	for i := 1; i+1 < len(loop); i++ {
		a := p.Vertices[loop[i]].Sub(v0)
		b := p.Vertices[loop[i+1]].Sub(v0)
		sum = sum.Add(a.Cross(b))
	}
	return sum.Length() / 2
}

// SurfaceArea returns the total face area.
func (p *Polyhedron) SurfaceArea() float64 {
	var a float64
	for f := range p.Faces {
		a += p.faceArea(f)
	}
	return a
}

// Volume returns the enclosed volume as the sum of the pyramids from the
// origin to each face.
func (p *Polyhedron) Volume() float64 {
	var vol float64
	for f := range p.Faces {
		h := p.FacePlane(f).Dist
		vol += h * p.faceArea(f) / 3
	}
	return vol
}

// Centroid returns the mean of the vertices.
func (p *Polyhedron) Centroid() v3.Vec {
	var c v3.Vec
	if len(p.Vertices) == 0 {
		return c
	}
	for _, v := range p.Vertices {
		c = c.Add(v)
	}
	return c.DivScalar(float64(len(p.Vertices)))
}

// Contains reports whether pt lies behind every face plane, within eps.
func (p *Polyhedron) Contains(pt v3.Vec, eps float64) bool {
	if p.IsEmpty() {
		return false
	}
	for f := range p.Faces {
		if p.FacePlane(f).Distance(pt) > eps {
			return false
		}
	}
	return true
}
