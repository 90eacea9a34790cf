package mindflux

import (
	"slices"

	"github.com/google/uuid"
)

// HistoryFrame records that the session is inside NodeID and which of its
// items have been shown, in presentation order.
type HistoryFrame struct {
	NodeID   NodeID    `json:"node_id"`
	Answered []ItemRef `json:"answered"`
}

// ItemIDs returns the ids of the answered items in presentation order.
func (f HistoryFrame) ItemIDs() []ItemID {
	ids := make([]ItemID, len(f.Answered))
	for i, ref := range f.Answered {
		ids[i] = ref.ItemID
	}
	return ids
}

// lastOrdinal returns the ordinal of the most recently answered item, or 0.
func (f HistoryFrame) lastOrdinal() int {
	if len(f.Answered) == 0 {
		return 0
	}
	return f.Answered[len(f.Answered)-1].Ordinal
}

// answeredOrdinals returns the distinct ordinals of the answered items in
// presentation order.
func (f HistoryFrame) answeredOrdinals() []int {
	var out []int
	for _, ref := range f.Answered {
		if !slices.Contains(out, ref.Ordinal) {
			out = append(out, ref.Ordinal)
		}
	}
	return out
}

func (f HistoryFrame) clone() HistoryFrame {
	f.Answered = slices.Clone(f.Answered)
	return f
}

// Session is the traversal stack of one review context. The zero value is
// not usable; create sessions with NewSession.
//
// A Session is owned by a single review context and is not safe for
// concurrent use. It is never persisted.
type Session struct {
	id     string
	frames []HistoryFrame
}

// NewSession returns an empty session with a fresh random id.
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

// ID returns the session id used in logs and traces.
func (s *Session) ID() string {
	return s.id
}

// IsEmpty reports whether no review is in progress.
func (s *Session) IsEmpty() bool {
	return len(s.frames) == 0
}

// Depth returns the number of frames on the stack.
func (s *Session) Depth() int {
	return len(s.frames)
}

// Top returns a copy of the top frame.
func (s *Session) Top() (HistoryFrame, bool) {
	if s.IsEmpty() {
		return HistoryFrame{}, false
	}
	return s.frames[len(s.frames)-1].clone(), true
}

// Frames returns a copy of the stack, bottom first.
func (s *Session) Frames() []HistoryFrame {
	out := make([]HistoryFrame, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.clone()
	}
	return out
}

// EnterOrContinue records that item was shown. If the top frame is the
// item's node the item is appended to it, otherwise a new frame is pushed.
func (s *Session) EnterOrContinue(item ItemRef) {
	if n := len(s.frames); n > 0 && s.frames[n-1].NodeID == item.NodeID {
		s.frames[n-1].Answered = append(s.frames[n-1].Answered, item)
		return
	}
	s.frames = append(s.frames, HistoryFrame{NodeID: item.NodeID, Answered: []ItemRef{item}})
}

// Reset discards the whole history.
func (s *Session) Reset() {
	s.frames = nil
}

func (s *Session) top() *HistoryFrame {
	return &s.frames[len(s.frames)-1]
}

func (s *Session) push(node NodeID) {
	s.frames = append(s.frames, HistoryFrame{NodeID: node})
}

func (s *Session) pop() HistoryFrame {
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f
}
