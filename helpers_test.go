package mindflux

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

func mustGraph(t testing.TB, nodes ...Node) *Graph {
	t.Helper()
	g, err := NewGraph(nodes...)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func mustScheduler(t testing.TB, g ConceptGraph, due DueIndex, seed int64) *Scheduler {
	t.Helper()
	s, err := NewScheduler(g, due, SchedulerConfig{Rand: rand.New(rand.NewSource(seed))})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func mustNext(t testing.TB, s *Scheduler, sess *Session) ItemRef {
	t.Helper()
	ref, ok, err := s.Next(context.Background(), sess)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !ok {
		t.Fatal("Next returned no item")
	}
	return ref
}

func item(id ItemID, node NodeID, ordinal int, tier Tier) ItemRef {
	return ItemRef{ItemID: id, NodeID: node, Ordinal: ordinal, Tier: tier}
}

// node builds a node whose answers are listed in ordinal order starting at 1.
func node(id NodeID, depthKey string, answers ...[]NodeID) Node {
	n := Node{ID: id, DepthKey: depthKey}
	for i, children := range answers {
		n.Answers = append(n.Answers, Answer{Ordinal: i + 1, Children: children})
	}
	return n
}

func nodeIDs(ids ...NodeID) []NodeID { return ids }

// staticDue serves fixed due lists, grouped by each item's Tier.
type staticDue struct {
	tiers map[Tier][]ItemRef
	err   error
	reads int
}

func dueOf(items ...ItemRef) *staticDue {
	d := &staticDue{tiers: make(map[Tier][]ItemRef)}
	for _, it := range items {
		d.tiers[it.Tier] = append(d.tiers[it.Tier], it)
	}
	return d
}

func (d *staticDue) DuePerTier(_ context.Context, tier Tier) ([]ItemRef, error) {
	d.reads++
	if d.err != nil {
		return nil, d.err
	}
	return d.tiers[tier], nil
}

// brokenGraph fails every query for the listed nodes with err.
type brokenGraph struct {
	ConceptGraph
	broken map[NodeID]bool
	err    error
}

var errDiskGone = errors.New("disk gone")

func (g *brokenGraph) fail(id NodeID) error {
	if g.broken[id] {
		return g.err
	}
	return nil
}

func (g *brokenGraph) DepthKeyLength(id NodeID) (int, error) {
	if err := g.fail(id); err != nil {
		return 0, err
	}
	return g.ConceptGraph.DepthKeyLength(id)
}

func (g *brokenGraph) ChildrenOf(id NodeID, ordinal int) ([]NodeID, error) {
	if err := g.fail(id); err != nil {
		return nil, err
	}
	return g.ConceptGraph.ChildrenOf(id, ordinal)
}

func (g *brokenGraph) AllAnswerChildren(id NodeID) (map[int][]NodeID, error) {
	if err := g.fail(id); err != nil {
		return nil, err
	}
	return g.ConceptGraph.AllAnswerChildren(id)
}

func (g *brokenGraph) SiblingsOf(id NodeID) ([]NodeID, error) {
	if err := g.fail(id); err != nil {
		return nil, err
	}
	return g.ConceptGraph.SiblingsOf(id)
}

func (g *brokenGraph) ConnectionsOf(id NodeID) ([]NodeID, error) {
	if err := g.fail(id); err != nil {
		return nil, err
	}
	return g.ConceptGraph.ConnectionsOf(id)
}

// countingGraph counts node lookups.
type countingGraph struct {
	ConceptGraph
	visits int
}

func (g *countingGraph) DepthKeyLength(id NodeID) (int, error) {
	g.visits++
	return g.ConceptGraph.DepthKeyLength(id)
}

func (g *countingGraph) ChildrenOf(id NodeID, ordinal int) ([]NodeID, error) {
	g.visits++
	return g.ConceptGraph.ChildrenOf(id, ordinal)
}

func (g *countingGraph) AllAnswerChildren(id NodeID) (map[int][]NodeID, error) {
	g.visits++
	return g.ConceptGraph.AllAnswerChildren(id)
}

func (g *countingGraph) SiblingsOf(id NodeID) ([]NodeID, error) {
	g.visits++
	return g.ConceptGraph.SiblingsOf(id)
}

func (g *countingGraph) ConnectionsOf(id NodeID) ([]NodeID, error) {
	g.visits++
	return g.ConceptGraph.ConnectionsOf(id)
}
