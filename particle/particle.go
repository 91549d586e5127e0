// Package particle generates the per-element input of the BVH builder: a
// center position with a radius in the w lane and a velocity.
package particle

import (
	"fmt"
	"math/rand"

	"github.com/achilleasa/lbvh/types"
)

// Ranges used by Random.
const (
	PositionExtent = 5.0
	MinRadius      = 0.1
	MaxRadius      = 0.2
	MaxSpeed       = 0.00125
)

// A structure-of-arrays particle set. Both slices have the same length.
type Set struct {
	Positions  []types.Vec4
	Velocities []types.Vec4
}

// Get the number of particles.
func (s *Set) Len() int {
	return len(s.Positions)
}

// Check that the set is well formed.
func (s *Set) Validate() error {
	if len(s.Positions) == 0 {
		return fmt.Errorf("particle: empty set")
	}
	if len(s.Positions) != len(s.Velocities) {
		return fmt.Errorf("particle: got %d positions and %d velocities", len(s.Positions), len(s.Velocities))
	}
	return nil
}

// Generate n particles with centers inside [-5, 5]^3, radii in [0.1, 0.2]
// and velocities in [-0.00125, 0.00125]^3.
func Random(n int, rng *rand.Rand) *Set {
	set := &Set{
		Positions:  make([]types.Vec4, n),
		Velocities: make([]types.Vec4, n),
	}

	for i := 0; i < n; i++ {
		set.Positions[i] = types.XYZW(
			uniform(rng, -PositionExtent, PositionExtent),
			uniform(rng, -PositionExtent, PositionExtent),
			uniform(rng, -PositionExtent, PositionExtent),
			uniform(rng, MinRadius, MaxRadius),
		)
		set.Velocities[i] = types.XYZW(
			uniform(rng, -MaxSpeed, MaxSpeed),
			uniform(rng, -MaxSpeed, MaxSpeed),
			uniform(rng, -MaxSpeed, MaxSpeed),
			0,
		)
	}

	return set
}

// Generate a static nx*ny*nz lattice of particles with the given spacing
// and radius, starting at the origin.
func Grid(nx, ny, nz int, spacing, radius float32) *Set {
	n := nx * ny * nz
	set := &Set{
		Positions:  make([]types.Vec4, 0, n),
		Velocities: make([]types.Vec4, n),
	}

	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				set.Positions = append(set.Positions, types.XYZW(
					float32(x)*spacing,
					float32(y)*spacing,
					float32(z)*spacing,
					radius,
				))
			}
		}
	}

	return set
}

func uniform(rng *rand.Rand, min, max float32) float32 {
	return min + rng.Float32()*(max-min)
}
