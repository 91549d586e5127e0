package lbvh

// An alias for functions that can be used as part of the construction pipeline.
type Stage func(b *Builder) error

// The list of pluggable stages that are used to build a frame. Nil stages are
// skipped.
type Pipeline struct {
	// Move elements along their velocities.
	Advance Stage

	// Build leaf boxes from the current positions. This stage runs twice
	// per frame: once to feed the Morton box and once after the elements
	// have been sorted.
	LeafBounds Stage

	// Reduce the leaf boxes into the box used to normalize Morton codes.
	SceneBounds Stage

	// Assign a Morton code to every leaf.
	MortonCodes Stage

	// Sort the codes and compute the sort permutation.
	Sort Stage

	// Reorder element data to match the sorted codes.
	Permute Stage

	// Build the internal nodes.
	Hierarchy Stage

	// Fit internal node boxes.
	Refit Stage
}

type namedStage struct {
	name  string
	stage Stage
}

// Get the stages in execution order.
func (p *Pipeline) stages() []namedStage {
	all := []namedStage{
		{"advance", p.Advance},
		{"leafBounds", p.LeafBounds},
		{"sceneBounds", p.SceneBounds},
		{"mortonCodes", p.MortonCodes},
		{"sort", p.Sort},
		{"permute", p.Permute},
		{"sortedLeafBounds", p.LeafBounds},
		{"hierarchy", p.Hierarchy},
		{"refit", p.Refit},
	}

	out := all[:0]
	for _, s := range all {
		if s.stage != nil {
			out = append(out, s)
		}
	}
	return out
}

// Get a pipeline that runs every stage.
func DefaultPipeline() *Pipeline {
	return &Pipeline{
		Advance:     AdvancePositions(),
		LeafBounds:  CreateLeafAABBs(),
		SceneBounds: ReduceAABB(),
		MortonCodes: MortonCodes(),
		Sort:        RadixSort(),
		Permute:     PermuteElements(),
		Hierarchy:   NodeHierarchy(),
		Refit:       RefitInnerNodes(),
	}
}

// Get a pipeline for elements that do not move between frames.
func StaticPipeline() *Pipeline {
	p := DefaultPipeline()
	p.Advance = nil
	return p
}

func AdvancePositions() Stage {
	return func(b *Builder) error {
		return b.resources.AdvancePositions()
	}
}

func CreateLeafAABBs() Stage {
	return func(b *Builder) error {
		return b.resources.CreateLeafAABBs()
	}
}

func ReduceAABB() Stage {
	return func(b *Builder) error {
		return b.resources.ReduceAABB()
	}
}

func MortonCodes() Stage {
	return func(b *Builder) error {
		return b.resources.MortonCodes()
	}
}

func RadixSort() Stage {
	return func(b *Builder) error {
		return b.resources.RadixSort()
	}
}

func PermuteElements() Stage {
	return func(b *Builder) error {
		return b.resources.Permute()
	}
}

func NodeHierarchy() Stage {
	return func(b *Builder) error {
		return b.resources.NodeHierarchy()
	}
}

func RefitInnerNodes() Stage {
	return func(b *Builder) error {
		return b.resources.RefitInnerNodes()
	}
}
