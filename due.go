package mindflux

import (
	"context"
	"slices"
)

// DueIndex reports which items are due, per tier.
// Learning and Review items are ordered by due time, New items by map order.
type DueIndex interface {
	DuePerTier(ctx context.Context, tier Tier) ([]ItemRef, error)
}

// BatchDueIndex is a DueIndex that can report every tier from one
// consistent read. Scheduling calls prefer DueAll over three DuePerTier calls.
type BatchDueIndex interface {
	DueIndex
	DueAll(ctx context.Context) (learning, review, fresh []ItemRef, err error)
}

// DueSnapshot is a frozen view of the due items, taken once per scheduling call.
type DueSnapshot struct {
	tiers  [TierNotDue][]ItemRef
	owners [TierNotDue]map[NodeID]struct{}
	byNode map[NodeID][]ItemRef
	nodes  []NodeID
}

// NewDueSnapshot builds a snapshot from the per-tier due lists. Each ref's
// Tier is set from the list it came from; an item listed in more than one
// tier is kept in the most urgent one.
func NewDueSnapshot(learning, review, fresh []ItemRef) *DueSnapshot {
	s := &DueSnapshot{byNode: make(map[NodeID][]ItemRef)}
	seen := make(map[ItemID]struct{})
	nodeSeen := make(map[NodeID]struct{})
	lists := [TierNotDue][]ItemRef{TierLearning: learning, TierReview: review, TierNew: fresh}
	for _, tier := range DueTiers {
		s.owners[tier] = make(map[NodeID]struct{})
		for _, ref := range lists[tier] {
			if _, dup := seen[ref.ItemID]; dup {
				continue
			}
			seen[ref.ItemID] = struct{}{}
			ref.Tier = tier
			s.tiers[tier] = append(s.tiers[tier], ref)
			s.owners[tier][ref.NodeID] = struct{}{}
			s.byNode[ref.NodeID] = append(s.byNode[ref.NodeID], ref)
			if _, ok := nodeSeen[ref.NodeID]; !ok {
				nodeSeen[ref.NodeID] = struct{}{}
				s.nodes = append(s.nodes, ref.NodeID)
			}
		}
	}
	for id, refs := range s.byNode {
		slices.SortStableFunc(refs, func(a, b ItemRef) int {
			if a.Ordinal != b.Ordinal {
				return a.Ordinal - b.Ordinal
			}
			return int(a.Tier) - int(b.Tier)
		})
		s.byNode[id] = refs
	}
	return s
}

// snapshotOf reads every due tier from idx exactly once, in a single read
// when idx is a BatchDueIndex.
func snapshotOf(ctx context.Context, idx DueIndex) (*DueSnapshot, error) {
	if b, ok := idx.(BatchDueIndex); ok {
		learning, review, fresh, err := b.DueAll(ctx)
		if err != nil {
			return nil, unavailable("read due tiers", err)
		}
		return NewDueSnapshot(learning, review, fresh), nil
	}
	var lists [TierNotDue][]ItemRef
	for _, tier := range DueTiers {
		refs, err := idx.DuePerTier(ctx, tier)
		if err != nil {
			return nil, unavailable("read "+tier.String()+" tier", err)
		}
		lists[tier] = refs
	}
	return NewDueSnapshot(lists[TierLearning], lists[TierReview], lists[TierNew]), nil
}

// Empty reports whether no item is due in any tier.
func (s *DueSnapshot) Empty() bool {
	return len(s.nodes) == 0
}

// Len returns the number of due items across all tiers.
func (s *DueSnapshot) Len() int {
	n := 0
	for _, tier := range DueTiers {
		n += len(s.tiers[tier])
	}
	return n
}

// DuePerTier returns the due items of tier in due order.
func (s *DueSnapshot) DuePerTier(tier Tier) []ItemRef {
	if !tier.IsDue() {
		return nil
	}
	return slices.Clone(s.tiers[tier])
}

// NodesOwningDueItems returns the nodes owning at least one item of tier,
// in the order of their first item.
func (s *DueSnapshot) NodesOwningDueItems(tier Tier) []NodeID {
	if !tier.IsDue() {
		return nil
	}
	var out []NodeID
	seen := make(map[NodeID]struct{})
	for _, ref := range s.tiers[tier] {
		if _, ok := seen[ref.NodeID]; ok {
			continue
		}
		seen[ref.NodeID] = struct{}{}
		out = append(out, ref.NodeID)
	}
	return out
}

// AllDueNodes returns the union of NodesOwningDueItems over all due tiers.
func (s *DueSnapshot) AllDueNodes() []NodeID {
	return slices.Clone(s.nodes)
}

// Owns reports whether node owns a due item of tier.
func (s *DueSnapshot) Owns(node NodeID, tier Tier) bool {
	if !tier.IsDue() {
		return false
	}
	_, ok := s.owners[tier][node]
	return ok
}

// HasDue reports whether node owns any due item.
func (s *DueSnapshot) HasDue(node NodeID) bool {
	return len(s.byNode[node]) > 0
}

// DueItemsOfNode returns node's due items ordered by ordinal, restricted to
// candidates. A nil candidates slice means every due item.
func (s *DueSnapshot) DueItemsOfNode(node NodeID, candidates []ItemID) []ItemRef {
	refs := s.byNode[node]
	if candidates == nil {
		return slices.Clone(refs)
	}
	var out []ItemRef
	for _, ref := range refs {
		if slices.Contains(candidates, ref.ItemID) {
			out = append(out, ref)
		}
	}
	return out
}

// Contains reports whether item is due in the snapshot.
func (s *DueSnapshot) Contains(item ItemID) bool {
	for _, tier := range DueTiers {
		for _, ref := range s.tiers[tier] {
			if ref.ItemID == item {
				return true
			}
		}
	}
	return false
}
