package xr

import (
	"errors"
	"fmt"
)

// MaxFilterChainDepth bounds how many nodes a filter chain may contain.
const MaxFilterChainDepth = 16

var (
	ErrFilterTypeMismatch = errors.New("filter node type does not match its payload")
	ErrFilterChainCycle   = errors.New("filter chain contains a cycle")
	ErrFilterChainDepth   = fmt.Errorf("filter chain longer than %d nodes", MaxFilterChainDepth)
	ErrFilterNodeNil      = errors.New("filter chain contains a nil node")
)

// SpaceFilterNode is one link of a space filter chain. The outer (base) node
// refers to the next, more specific node through FilterHeader.Next.
type SpaceFilterNode interface {
	Base() *FilterHeader
}

// FilterHeader is the tag and next link shared by every filter node.
type FilterHeader struct {
	Type StructureType
	Next SpaceFilterNode
}

func (h *FilterHeader) Base() *FilterHeader { return h }

// SpaceFilterInfo is the base filter node.
type SpaceFilterInfo struct {
	FilterHeader
}

// SpaceComponentFilterInfo restricts a query to entities with a component.
type SpaceComponentFilterInfo struct {
	FilterHeader
	ComponentType ComponentType
}

// SpaceStorageLocationFilterInfo restricts a query to a storage location.
type SpaceStorageLocationFilterInfo struct {
	FilterHeader
	Location StorageLocation
}

// nodeType returns the tag n must carry, and false for nil pointers or node
// kinds this package does not know.
func nodeType(n SpaceFilterNode) (StructureType, bool) {
	switch v := n.(type) {
	case *SpaceFilterInfo:
		return TypeSpaceFilterInfoFB, v != nil
	case *SpaceComponentFilterInfo:
		return TypeSpaceComponentFilterInfoFB, v != nil
	case *SpaceStorageLocationFilterInfo:
		return TypeSpaceStorageLocationFilterInfoFB, v != nil
	default:
		return TypeUnknown, false
	}
}

// ValidateFilterChain walks the chain starting at head and checks that every
// node's declared tag matches its concrete payload. A nil head is a valid,
// empty chain.
func ValidateFilterChain(head SpaceFilterNode) error {
	seen := make(map[SpaceFilterNode]struct{})
	depth := 0
	for n := head; n != nil; n = n.Base().Next {
		want, ok := nodeType(n)
		if !ok {
			return fmt.Errorf("%w at position %d (%T)", ErrFilterNodeNil, depth, n)
		}
		if depth >= MaxFilterChainDepth {
			return ErrFilterChainDepth
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w at position %d", ErrFilterChainCycle, depth)
		}
		seen[n] = struct{}{}
		if got := n.Base().Type; got != want {
			return fmt.Errorf("%w at position %d: %T tagged %s, want %s", ErrFilterTypeMismatch, depth, n, got, want)
		}
		depth++
	}
	return nil
}

// FilterChainTypes lists the tags along the chain, outermost first. It stops
// at MaxFilterChainDepth nodes.
func FilterChainTypes(head SpaceFilterNode) []StructureType {
	var types []StructureType
	for n := head; n != nil && len(types) < MaxFilterChainDepth; n = n.Base().Next {
		if _, ok := nodeType(n); !ok {
			break
		}
		types = append(types, n.Base().Type)
	}
	return types
}
