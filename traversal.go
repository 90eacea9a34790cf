package mindflux

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
)

// phase names the step of the search that produced a result.
type phase int

const (
	phaseNone phase = iota
	phaseStart
	phaseContinue
	phaseChildren
	phaseDescendants
	phaseUnanswered
	phaseUnansweredDescendants
	phaseSiblings
	phaseConnections
	phaseConnectionsOfConnections
)

var phaseNames = [...]string{
	phaseNone:                     "none",
	phaseStart:                    "start",
	phaseContinue:                 "continue",
	phaseChildren:                 "children",
	phaseDescendants:              "descendants",
	phaseUnanswered:               "unanswered",
	phaseUnansweredDescendants:    "unanswered_descendants",
	phaseSiblings:                 "siblings",
	phaseConnections:              "connections",
	phaseConnectionsOfConnections: "connections_of_connections",
}

func (p phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// traversal is the state of one Next call. The snapshot is frozen for the
// whole call.
type traversal struct {
	graph  ConceptGraph
	snap   *DueSnapshot
	sess   *Session
	rng    *rand.Rand
	logger *slog.Logger
}

func (t *traversal) run() (ItemRef, phase, bool, error) {
	if t.snap.Empty() {
		return ItemRef{}, phaseNone, false, nil
	}
	for !t.sess.IsEmpty() {
		ref, ph, ok, err := t.forward()
		if err != nil || ok {
			return ref, ph, ok, err
		}
		f := t.sess.pop()
		backtrackTotal.Inc()
		t.logger.Debug("backtrack", slog.String("node", string(f.NodeID)), slog.Int("depth", t.sess.Depth()))
	}
	return t.start()
}

// start picks the shallowest due node, most urgent tier first.
func (t *traversal) start() (ItemRef, phase, bool, error) {
	var shallowest []NodeID
	minDepth := -1
	for _, id := range t.snap.AllDueNodes() {
		d, err := t.graph.DepthKeyLength(id)
		if err != nil {
			if t.stale(id, err) {
				continue
			}
			return ItemRef{}, phaseNone, false, unavailable("depth of "+string(id), err)
		}
		switch {
		case minDepth < 0 || d < minDepth:
			minDepth = d
			shallowest = []NodeID{id}
		case d == minDepth:
			shallowest = append(shallowest, id)
		}
	}
	ref, ok, err := t.descendInto("", shallowest)
	if !ok {
		return ItemRef{}, phaseNone, false, err
	}
	return ref, phaseStart, true, nil
}

// forward searches for a due item around the top frame, nearest first.
func (t *traversal) forward() (ItemRef, phase, bool, error) {
	top := t.sess.top().clone()
	answered := top.ItemIDs()

	// Later answers of the same question.
	last := top.lastOrdinal()
	for _, ref := range t.snap.DueItemsOfNode(top.NodeID, nil) {
		if ref.Ordinal > last && !slices.Contains(answered, ref.ItemID) {
			return ref, phaseContinue, true, nil
		}
	}

	// Questions following the answers already shown, then their descendants.
	fanout, err := t.answerChildren(top.NodeID, top.answeredOrdinals())
	if err != nil {
		return ItemRef{}, phaseNone, false, err
	}
	if ref, ph, ok, err := t.descendFrom(top.NodeID, fanout, phaseChildren, phaseDescendants); ok || err != nil {
		return ref, ph, ok, err
	}

	// Questions following the answers not shown yet.
	unanswered, err := t.unansweredChildren(top)
	if err != nil {
		return ItemRef{}, phaseNone, false, err
	}
	if ref, ph, ok, err := t.descendFrom(top.NodeID, unanswered, phaseUnanswered, phaseUnansweredDescendants); ok || err != nil {
		return ref, ph, ok, err
	}

	siblings, err := t.links(top.NodeID, t.graph.SiblingsOf, "siblings")
	if err != nil {
		return ItemRef{}, phaseNone, false, err
	}
	if ref, ok, err := t.descendInto(top.NodeID, siblings); ok || err != nil {
		return ref, phaseSiblings, ok, err
	}

	connections, err := t.links(top.NodeID, t.graph.ConnectionsOf, "connections")
	if err != nil {
		return ItemRef{}, phaseNone, false, err
	}
	if ref, ok, err := t.descendInto(top.NodeID, connections); ok || err != nil {
		return ref, phaseConnections, ok, err
	}

	var second []NodeID
	for _, c := range connections {
		cc, err := t.links(c, t.graph.ConnectionsOf, "connections")
		if err != nil {
			return ItemRef{}, phaseNone, false, err
		}
		second = appendUnique(second, cc...)
	}
	if ref, ok, err := t.descendInto(top.NodeID, second); ok || err != nil {
		return ref, phaseConnectionsOfConnections, ok, err
	}

	return ItemRef{}, phaseNone, false, nil
}

// descendFrom looks for due nodes in gen, then in each following generation
// of answer children until the graph below gen is exhausted. Every node is
// expanded at most once, so cycles terminate.
func (t *traversal) descendFrom(origin NodeID, gen []NodeID, direct, deeper phase) (ItemRef, phase, bool, error) {
	if ref, ok, err := t.descendInto(origin, gen); ok || err != nil {
		return ref, direct, ok, err
	}
	seen := map[NodeID]struct{}{origin: {}}
	for _, id := range gen {
		seen[id] = struct{}{}
	}
	for len(gen) > 0 {
		var next []NodeID
		for _, id := range gen {
			children, err := t.graph.AllAnswerChildren(id)
			if err != nil {
				if t.stale(id, err) {
					continue
				}
				return ItemRef{}, phaseNone, false, unavailable("answers of "+string(id), err)
			}
			for _, ord := range sortedOrdinals(children) {
				for _, c := range children[ord] {
					if _, ok := seen[c]; ok {
						continue
					}
					seen[c] = struct{}{}
					next = append(next, c)
				}
			}
		}
		if ref, ok, err := t.descendInto(origin, next); ok || err != nil {
			return ref, deeper, ok, err
		}
		gen = next
	}
	return ItemRef{}, phaseNone, false, nil
}

// descendInto chooses the most urgent due node among ids, pushes a frame for
// it and returns its first due answer. origin is never chosen.
func (t *traversal) descendInto(origin NodeID, ids []NodeID) (ItemRef, bool, error) {
	var candidates []NodeID
	for _, id := range ids {
		if id != origin && t.snap.HasDue(id) && !slices.Contains(candidates, id) {
			candidates = append(candidates, id)
		}
	}
	chosen, ok := urgentNode(t.snap, candidates, t.rng)
	if !ok {
		return ItemRef{}, false, nil
	}
	ref, err := t.snap.NextAnswer(chosen, 1)
	if err != nil {
		return ItemRef{}, false, err
	}
	t.sess.push(chosen)
	return ref, true, nil
}

// answerChildren returns the children of the given answers of node.
func (t *traversal) answerChildren(node NodeID, ordinals []int) ([]NodeID, error) {
	var out []NodeID
	for _, ord := range ordinals {
		children, err := t.graph.ChildrenOf(node, ord)
		if err != nil {
			if t.stale(node, err) {
				return nil, nil
			}
			return nil, unavailable("children of "+string(node), err)
		}
		out = appendUnique(out, children...)
	}
	return out, nil
}

// unansweredChildren returns the children of every answer of the frame's
// node that has not been shown in the frame.
func (t *traversal) unansweredChildren(f HistoryFrame) ([]NodeID, error) {
	all, err := t.graph.AllAnswerChildren(f.NodeID)
	if err != nil {
		if t.stale(f.NodeID, err) {
			return nil, nil
		}
		return nil, unavailable("answers of "+string(f.NodeID), err)
	}
	answered := f.answeredOrdinals()
	var out []NodeID
	for _, ord := range sortedOrdinals(all) {
		if slices.Contains(answered, ord) {
			continue
		}
		out = appendUnique(out, all[ord]...)
	}
	return out, nil
}

func (t *traversal) links(node NodeID, query func(NodeID) ([]NodeID, error), what string) ([]NodeID, error) {
	ids, err := query(node)
	if err != nil {
		if t.stale(node, err) {
			return nil, nil
		}
		return nil, unavailable(what+" of "+string(node), err)
	}
	return ids, nil
}

// stale reports whether err means node is gone from the graph. Such
// branches contribute no candidates.
func (t *traversal) stale(node NodeID, err error) bool {
	if !errors.Is(err, ErrNodeNotFound) {
		return false
	}
	t.logger.Warn("skipping stale node", slog.String("node", string(node)), slog.String("error", err.Error()))
	return true
}

// urgentNode picks uniformly at random among the candidates owning a
// Learning item, else a Review item, else a New item.
func urgentNode(snap *DueSnapshot, candidates []NodeID, rng *rand.Rand) (NodeID, bool) {
	for _, tier := range DueTiers {
		var pool []NodeID
		for _, id := range candidates {
			if snap.Owns(id, tier) {
				pool = append(pool, id)
			}
		}
		if len(pool) > 0 {
			return pool[rng.Intn(len(pool))], true
		}
	}
	return "", false
}

// NextAnswer returns node's due item with the smallest ordinal at or above
// minOrdinal. It fails with ErrNoDueAnswer when there is none.
func (s *DueSnapshot) NextAnswer(node NodeID, minOrdinal int) (ItemRef, error) {
	for _, ref := range s.byNode[node] {
		if ref.Ordinal >= minOrdinal {
			return ref, nil
		}
	}
	return ItemRef{}, fmt.Errorf("%w: %s from ordinal %d", ErrNoDueAnswer, node, minOrdinal)
}

func sortedOrdinals(m map[int][]NodeID) []int {
	ords := make([]int, 0, len(m))
	for ord := range m {
		ords = append(ords, ord)
	}
	slices.Sort(ords)
	return ords
}

func appendUnique(dst []NodeID, ids ...NodeID) []NodeID {
	for _, id := range ids {
		if !slices.Contains(dst, id) {
			dst = append(dst, id)
		}
	}
	return dst
}
