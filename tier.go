package mindflux

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Tier is the due classification of an item at query time.
// Lower values are more urgent.
type Tier int

const (
	TierLearning Tier = iota + 1 // Due in the (re)learning queue.
	TierReview                   // Due for long-term review.
	TierNew                      // Never studied, available today.
	TierNotDue                   // Not due now.
)

// DueTiers lists the tiers that hold due items, most urgent first.
var DueTiers = [...]Tier{TierLearning, TierReview, TierNew}

var tierCodec = newEnumCodec[Tier]("Tier", ErrInvalidTier, "Learning", "Review", "New", "NotDue")

var (
	_ fmt.Stringer             = Tier(0)
	_ json.Marshaler           = Tier(0)
	_ json.Unmarshaler         = (*Tier)(nil)
	_ encoding.TextMarshaler   = Tier(0)
	_ encoding.TextUnmarshaler = (*Tier)(nil)
)

// IsValid reports whether t is one of the defined tiers.
func (t Tier) IsValid() bool { return tierCodec.valid(t) }

// IsDue reports whether t is Learning, Review or New.
func (t Tier) IsDue() bool {
	return t >= TierLearning && t <= TierNew
}

// String returns the tier name, or "Tier(n)" for invalid values.
func (t Tier) String() string { return tierCodec.name(t) }

func (t Tier) MarshalText() ([]byte, error) { return tierCodec.marshalText(t) }

func (t *Tier) UnmarshalText(text []byte) error {
	v, err := tierCodec.unmarshalText(text)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalJSON encodes t as its name.
func (t Tier) MarshalJSON() ([]byte, error) { return tierCodec.marshalJSON(t) }

func (t *Tier) UnmarshalJSON(data []byte) error {
	v, err := tierCodec.unmarshalJSON(data)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
