package mindflux

import (
	"fmt"
	"slices"
)

// NodeID identifies a question in the concept graph.
type NodeID string

// Node is a question of the concept graph.
type Node struct {
	ID          NodeID   `json:"id"`
	DepthKey    string   `json:"depth_key"` // Length encodes distance from the map root.
	Answers     []Answer `json:"answers"`
	Siblings    []NodeID `json:"siblings,omitempty"`
	Connections []NodeID `json:"connections,omitempty"`
}

// Answer is a numbered position under a Node. Ordinals are 1-based and
// unique within their Node.
type Answer struct {
	Ordinal  int      `json:"ordinal"`
	Children []NodeID `json:"children,omitempty"`
}

// Validate checks the node's identity and answer ordinals.
func (n Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidNode)
	}
	seen := make(map[int]struct{}, len(n.Answers))
	for _, a := range n.Answers {
		if a.Ordinal < 1 {
			return fmt.Errorf("%w: %s: ordinal %d is not 1-based", ErrInvalidNode, n.ID, a.Ordinal)
		}
		if _, dup := seen[a.Ordinal]; dup {
			return fmt.Errorf("%w: %s: duplicate ordinal %d", ErrInvalidNode, n.ID, a.Ordinal)
		}
		seen[a.Ordinal] = struct{}{}
	}
	return nil
}

// DepthKeyLength returns the hierarchical depth encoded by the node's depth key.
func (n Node) DepthKeyLength() int {
	return len(n.DepthKey)
}

// Answer returns the answer with the given ordinal.
func (n Node) Answer(ordinal int) (Answer, bool) {
	for _, a := range n.Answers {
		if a.Ordinal == ordinal {
			return a, true
		}
	}
	return Answer{}, false
}

// AnswerChildren returns the children of every answer keyed by ordinal.
func (n Node) AnswerChildren() map[int][]NodeID {
	out := make(map[int][]NodeID, len(n.Answers))
	for _, a := range n.Answers {
		out[a.Ordinal] = slices.Clone(a.Children)
	}
	return out
}

// ConceptGraph answers read-only queries over the question/answer graph.
// Methods fail with ErrNodeNotFound for ids missing from the graph; any
// other error is treated as the store being unavailable.
type ConceptGraph interface {
	DepthKeyLength(id NodeID) (int, error)
	ChildrenOf(id NodeID, ordinal int) ([]NodeID, error)
	AllAnswerChildren(id NodeID) (map[int][]NodeID, error)
	SiblingsOf(id NodeID) ([]NodeID, error)
	ConnectionsOf(id NodeID) ([]NodeID, error)
}

// Graph is an immutable in-memory ConceptGraph.
type Graph struct {
	nodes map[NodeID]Node
}

var _ ConceptGraph = (*Graph)(nil)

// NewGraph validates the nodes and builds a Graph.
// References to ids that are not part of nodes are allowed; they surface as
// ErrNodeNotFound when queried.
func NewGraph(nodes ...Node) (*Graph, error) {
	g := &Graph{nodes: make(map[NodeID]Node, len(nodes))}
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			return nil, err
		}
		if _, dup := g.nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		g.nodes[n.ID] = n
	}
	return g, nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n, nil
}

// DepthKeyLength implements ConceptGraph.
func (g *Graph) DepthKeyLength(id NodeID) (int, error) {
	n, err := g.Node(id)
	if err != nil {
		return 0, err
	}
	return n.DepthKeyLength(), nil
}

// ChildrenOf implements ConceptGraph. An ordinal the node does not have
// yields no children.
func (g *Graph) ChildrenOf(id NodeID, ordinal int) ([]NodeID, error) {
	n, err := g.Node(id)
	if err != nil {
		return nil, err
	}
	a, _ := n.Answer(ordinal)
	return slices.Clone(a.Children), nil
}

// AllAnswerChildren implements ConceptGraph.
func (g *Graph) AllAnswerChildren(id NodeID) (map[int][]NodeID, error) {
	n, err := g.Node(id)
	if err != nil {
		return nil, err
	}
	return n.AnswerChildren(), nil
}

// SiblingsOf implements ConceptGraph.
func (g *Graph) SiblingsOf(id NodeID) ([]NodeID, error) {
	n, err := g.Node(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.Siblings), nil
}

// ConnectionsOf implements ConceptGraph.
func (g *Graph) ConnectionsOf(id NodeID) ([]NodeID, error) {
	n, err := g.Node(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.Connections), nil
}
