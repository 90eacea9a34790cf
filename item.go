package mindflux

import (
	"fmt"
	"time"
)

// ItemID identifies a schedulable flashcard.
type ItemID int64

// ItemRef is a due item as reported by the due engine: the item, the
// (node, ordinal) position owning it, and its tier at query time.
type ItemRef struct {
	ItemID  ItemID `json:"item_id"`
	NodeID  NodeID `json:"node_id"`
	Ordinal int    `json:"ordinal"`
	Tier    Tier   `json:"tier"`
}

// String returns "node@ordinal#item".
func (r ItemRef) String() string {
	return fmt.Sprintf("%s@%d#%d", r.NodeID, r.Ordinal, r.ItemID)
}

// ItemRecord is the stored scheduling state of one item.
type ItemRecord struct {
	ItemID   ItemID    `json:"item_id"`
	NodeID   NodeID    `json:"node_id"`
	Ordinal  int       `json:"ordinal"`
	State    State     `json:"state"`
	Due      time.Time `json:"due"`      // Ignored for New and Suspended items.
	Position int       `json:"position"` // Map order, used to order New items.
}

// NewItemRecord creates a record in the New state.
func NewItemRecord(id ItemID, node NodeID, ordinal, position int) ItemRecord {
	return ItemRecord{
		ItemID:   id,
		NodeID:   node,
		Ordinal:  ordinal,
		State:    New,
		Position: position,
	}
}

// Validate checks that the record references a position and has a known state.
func (r ItemRecord) Validate() error {
	if r.NodeID == "" {
		return fmt.Errorf("%w: item %d has no node", ErrInvalidNode, r.ItemID)
	}
	if r.Ordinal < 1 {
		return fmt.Errorf("%w: item %d: ordinal %d is not 1-based", ErrInvalidNode, r.ItemID, r.Ordinal)
	}
	if !r.State.isValid() {
		return fmt.Errorf("%w: item %d: %d", ErrInvalidState, r.ItemID, int(r.State))
	}
	return nil
}

// ref returns the ItemRef for r classified as tier.
func (r ItemRecord) ref(tier Tier) ItemRef {
	return ItemRef{ItemID: r.ItemID, NodeID: r.NodeID, Ordinal: r.Ordinal, Tier: tier}
}
