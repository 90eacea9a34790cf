package mindflux

// lookup is one remembered graph answer, error included.
type lookup[T any] struct {
	v   T
	err error
}

func cached[K comparable, T any](m map[K]lookup[T], k K, fetch func() (T, error)) (T, error) {
	if l, ok := m[k]; ok {
		return l.v, l.err
	}
	v, err := fetch()
	m[k] = lookup[T]{v, err}
	return v, err
}

type answerKey struct {
	node    NodeID
	ordinal int
}

// callGraph remembers every answer of g for the length of one Next call, so
// backtracking through a deep stack asks the graph about each node at most
// once per query kind. Returned slices and maps are shared and must not be
// modified.
type callGraph struct {
	g           ConceptGraph
	depth       map[NodeID]lookup[int]
	children    map[answerKey]lookup[[]NodeID]
	answers     map[NodeID]lookup[map[int][]NodeID]
	siblings    map[NodeID]lookup[[]NodeID]
	connections map[NodeID]lookup[[]NodeID]
}

var _ ConceptGraph = (*callGraph)(nil)

func newCallGraph(g ConceptGraph) *callGraph {
	return &callGraph{
		g:           g,
		depth:       make(map[NodeID]lookup[int]),
		children:    make(map[answerKey]lookup[[]NodeID]),
		answers:     make(map[NodeID]lookup[map[int][]NodeID]),
		siblings:    make(map[NodeID]lookup[[]NodeID]),
		connections: make(map[NodeID]lookup[[]NodeID]),
	}
}

func (c *callGraph) DepthKeyLength(id NodeID) (int, error) {
	return cached(c.depth, id, func() (int, error) { return c.g.DepthKeyLength(id) })
}

func (c *callGraph) ChildrenOf(id NodeID, ordinal int) ([]NodeID, error) {
	return cached(c.children, answerKey{id, ordinal}, func() ([]NodeID, error) { return c.g.ChildrenOf(id, ordinal) })
}

func (c *callGraph) AllAnswerChildren(id NodeID) (map[int][]NodeID, error) {
	return cached(c.answers, id, func() (map[int][]NodeID, error) { return c.g.AllAnswerChildren(id) })
}

func (c *callGraph) SiblingsOf(id NodeID) ([]NodeID, error) {
	return cached(c.siblings, id, func() ([]NodeID, error) { return c.g.SiblingsOf(id) })
}

func (c *callGraph) ConnectionsOf(id NodeID) ([]NodeID, error) {
	return cached(c.connections, id, func() ([]NodeID, error) { return c.g.ConnectionsOf(id) })
}
