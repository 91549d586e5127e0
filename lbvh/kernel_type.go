package lbvh

import "fmt"

type kernelType uint8

// The list of kernels that implement the construction pipeline.
const (
	// element kernels
	advancePositions kernelType = iota
	createLeafAABBs
	reduceAABB
	mortonCodes
	// sort kernels
	permutationIdentity
	selectBitflag
	scan
	scanAdd
	reorderKeys
	permute
	// tree kernels
	nodeHierarchy
	resetNodeFlags
	refitInnerNodes
	//
	numKernels
)

// Implements Stringer; map kernel type to the kernel name as defined in the CL source.
func (kt kernelType) String() string {
	switch kt {
	case advancePositions:
		return "advancePositions"
	case createLeafAABBs:
		return "createLeafAABBs"
	case reduceAABB:
		return "reduceAABB"
	case mortonCodes:
		return "mortonCodes"
	case permutationIdentity:
		return "permutationIdentity"
	case selectBitflag:
		return "selectBitflag"
	case scan:
		return "scan"
	case scanAdd:
		return "scanAdd"
	case reorderKeys:
		return "reorderKeys"
	case permute:
		return "permute"
	case nodeHierarchy:
		return "nodeHierarchy"
	case resetNodeFlags:
		return "resetNodeFlags"
	case refitInnerNodes:
		return "refitInnerNodes"
	default:
		panic(fmt.Sprintf("Unsupported kernel type: %d", kt))
	}
}
