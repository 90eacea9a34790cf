package mindflux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strings"
	"testing"
)

// --- NewScheduler ---

func TestNewSchedulerRequiresCollaborators(t *testing.T) {
	g := mustGraph(t)
	if _, err := NewScheduler(nil, dueOf(), SchedulerConfig{}); err == nil {
		t.Error("NewScheduler should reject a nil graph")
	}
	if _, err := NewScheduler(g, nil, SchedulerConfig{}); err == nil {
		t.Error("NewScheduler should reject a nil due index")
	}
	if s, err := NewScheduler(g, dueOf(), SchedulerConfig{Seed: 7}); err != nil || s == nil {
		t.Errorf("NewScheduler with seed: %v", err)
	}
}

// --- Nothing due ---

func TestNextNothingDueLeavesSessionUnchanged(t *testing.T) {
	g := mustGraph(t, node("a", "a", nil), node("b", "ab", nil))
	s := mustScheduler(t, g, dueOf(), 1)

	sess := NewSession()
	sess.EnterOrContinue(item(1, "a", 1, TierNew))
	sess.EnterOrContinue(item(2, "b", 1, TierNew))
	before := sess.Frames()

	_, ok, err := s.Next(context.Background(), sess)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ok {
		t.Fatal("Next returned an item with nothing due")
	}
	after := sess.Frames()
	if len(after) != len(before) {
		t.Fatalf("frames = %+v, want %+v", after, before)
	}
	for i := range before {
		if after[i].NodeID != before[i].NodeID || !slices.Equal(after[i].ItemIDs(), before[i].ItemIDs()) {
			t.Errorf("frame %d = %+v, want %+v", i, after[i], before[i])
		}
	}

	empty := NewSession()
	if _, ok, _ := s.Next(context.Background(), empty); ok || !empty.IsEmpty() {
		t.Error("empty session should stay empty when nothing is due")
	}
}

// --- Start of session ---

func TestStartFollowedByAnsweredChild(t *testing.T) {
	// A(1) --answer 1--> B(2); A@1 and B@1 are New.
	g := mustGraph(t, node("A", "a", nodeIDs("B")), node("B", "ab", nil))
	a1, b1 := item(1, "A", 1, TierNew), item(2, "B", 1, TierNew)
	s := mustScheduler(t, g, dueOf(a1, b1), 1)
	sess := NewSession()

	if got := mustNext(t, s, sess); got != a1 {
		t.Fatalf("first Next = %v, want %v", got, a1)
	}
	sess.EnterOrContinue(a1)
	if got := mustNext(t, s, sess); got != b1 {
		t.Fatalf("second Next = %v, want %v", got, b1)
	}
	if sess.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", sess.Depth())
	}
}

func TestStartSkipsNodesWithoutDueItems(t *testing.T) {
	// A@1 is not due; B (depth 2) and C (depth 1) have New items.
	g := mustGraph(t, node("A", "a", nodeIDs("B")), node("B", "ab", nil), node("C", "c", nil))
	c1 := item(3, "C", 1, TierNew)
	for seed := int64(1); seed <= 20; seed++ {
		s := mustScheduler(t, g, dueOf(item(2, "B", 1, TierNew), c1), seed)
		if got := mustNext(t, s, NewSession()); got != c1 {
			t.Fatalf("seed %d: Next = %v, want %v", seed, got, c1)
		}
	}
}

func TestStartPrefersMinimalDepthOverTier(t *testing.T) {
	g := mustGraph(t, node("A", "a", nil), node("D", "dd", nil))
	a1 := item(1, "A", 1, TierNew)
	for seed := int64(1); seed <= 20; seed++ {
		s := mustScheduler(t, g, dueOf(a1, item(2, "D", 1, TierLearning)), seed)
		if got := mustNext(t, s, NewSession()); got != a1 {
			t.Fatalf("seed %d: Next = %v, want shallow %v", seed, got, a1)
		}
	}
}

func TestStartTierPriorityAtEqualDepth(t *testing.T) {
	g := mustGraph(t, node("A", "a", nil), node("C", "c", nil), node("E", "e", nil))
	c1 := item(2, "C", 1, TierLearning)
	for seed := int64(1); seed <= 30; seed++ {
		due := dueOf(item(1, "A", 1, TierNew), c1, item(3, "E", 1, TierReview))
		s := mustScheduler(t, g, due, seed)
		if got := mustNext(t, s, NewSession()); got != c1 {
			t.Fatalf("seed %d: Next = %v, want learning %v", seed, got, c1)
		}
	}
}

// --- Same node ---

func TestContinueAtCurrentNode(t *testing.T) {
	g := mustGraph(t, node("A", "a", nil, nil, nil, nil))
	a2, a4 := item(2, "A", 2, TierReview), item(4, "A", 4, TierNew)
	s := mustScheduler(t, g, dueOf(a2, a4), 1)

	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))
	if got := mustNext(t, s, sess); got != a2 {
		t.Fatalf("Next = %v, want %v", got, a2)
	}
	sess.EnterOrContinue(a2)
	if got := mustNext(t, s, sess); got != a4 {
		t.Fatalf("Next = %v, want %v", got, a4)
	}
	if sess.Depth() != 1 {
		t.Errorf("continuing at one node changed depth to %d", sess.Depth())
	}
}

func TestContinueSkipsAnsweredItems(t *testing.T) {
	// Two items share ordinal 1; the one already shown is not repeated.
	g := mustGraph(t, node("A", "a", nil, nil))
	x, y, z := item(1, "A", 1, TierNew), item(2, "A", 1, TierNew), item(3, "A", 2, TierNew)
	s := mustScheduler(t, g, dueOf(x, y, z), 1)
	sess := NewSession()
	if got := mustNext(t, s, sess); got != x {
		t.Fatalf("Next = %v, want %v", got, x)
	}
	sess.EnterOrContinue(x)
	if got := mustNext(t, s, sess); got != z {
		t.Fatalf("Next = %v, want %v", got, z)
	}
}

// --- Descent ---

func TestDescendantsUseCompleteFanout(t *testing.T) {
	// Regression: the search below the answered children expands from all
	// of them, including the ones without due items.
	g := mustGraph(t,
		node("A", "a", nodeIDs("B")),
		node("B", "ab", nodeIDs("C")),
		node("C", "abc", nodeIDs("E")),
		node("E", "abce", nil),
	)
	e1 := item(5, "E", 1, TierNew)
	s := mustScheduler(t, g, dueOf(e1), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))

	if got := mustNext(t, s, sess); got != e1 {
		t.Fatalf("Next = %v, want grandchild item %v", got, e1)
	}
	frames := sess.Frames()
	if len(frames) != 2 || frames[0].NodeID != "A" || frames[1].NodeID != "E" {
		t.Errorf("frames = %+v, want [A E]", frames)
	}
}

func TestDescendantsTerminateOnCycles(t *testing.T) {
	g := mustGraph(t,
		node("A", "a", nodeIDs("B")),
		node("B", "ab", nodeIDs("A", "B")),
		node("Z", "z", nil),
	)
	z1 := item(9, "Z", 1, TierNew)
	s := mustScheduler(t, g, dueOf(z1), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))
	if got := mustNext(t, s, sess); got != z1 {
		t.Fatalf("Next = %v, want %v", got, z1)
	}
}

func TestUnansweredAnswersChildren(t *testing.T) {
	g := mustGraph(t,
		node("A", "a", nodeIDs("B"), nodeIDs("C")),
		node("B", "ab", nil),
		node("C", "ac", nil),
	)
	c1 := item(5, "C", 1, TierNew)
	s := mustScheduler(t, g, dueOf(c1), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))
	if got := mustNext(t, s, sess); got != c1 {
		t.Fatalf("Next = %v, want %v", got, c1)
	}
}

func TestUnansweredAnswersDescendants(t *testing.T) {
	g := mustGraph(t,
		node("A", "a", nodeIDs("B"), nodeIDs("C")),
		node("B", "ab", nil),
		node("C", "ac", nodeIDs("E")),
		node("E", "ace", nil),
	)
	e1 := item(5, "E", 1, TierReview)
	s := mustScheduler(t, g, dueOf(e1), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))
	if got := mustNext(t, s, sess); got != e1 {
		t.Fatalf("Next = %v, want %v", got, e1)
	}
}

func TestChildTierPriority(t *testing.T) {
	g := mustGraph(t,
		node("A", "a", nodeIDs("B", "C", "D")),
		node("B", "ab", nil), node("C", "ac", nil), node("D", "ad", nil),
	)
	c1 := item(3, "C", 1, TierLearning)
	for seed := int64(1); seed <= 30; seed++ {
		due := dueOf(item(2, "B", 1, TierNew), c1, item(4, "D", 1, TierReview))
		s := mustScheduler(t, g, due, seed)
		sess := NewSession()
		sess.EnterOrContinue(item(1, "A", 1, TierNew))
		if got := mustNext(t, s, sess); got != c1 {
			t.Fatalf("seed %d: Next = %v, want learning %v", seed, got, c1)
		}
	}
}

// --- Lateral links ---

func TestSiblingsBeforeConnections(t *testing.T) {
	a := node("A", "a", nil)
	a.Siblings = nodeIDs("S")
	a.Connections = nodeIDs("X")
	g := mustGraph(t, a, node("S", "s", nil), node("X", "x", nil))
	s1 := item(2, "S", 1, TierNew)
	s := mustScheduler(t, g, dueOf(s1, item(3, "X", 1, TierLearning)), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))
	if got := mustNext(t, s, sess); got != s1 {
		t.Fatalf("Next = %v, want sibling %v", got, s1)
	}
}

func TestConnectionOfChildReachedAfterBacktrack(t *testing.T) {
	// A has no more due answers, its child B has none, B's connection D
	// does and A has no siblings.
	b := node("B", "ab", nil)
	b.Connections = nodeIDs("D")
	g := mustGraph(t, node("A", "a", nodeIDs("B")), b, node("D", "abd", nil))
	d1 := item(4, "D", 1, TierNew)
	s := mustScheduler(t, g, dueOf(d1), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))

	if got := mustNext(t, s, sess); got != d1 {
		t.Fatalf("Next = %v, want %v", got, d1)
	}
	top, _ := sess.Top()
	if top.NodeID != "D" {
		t.Errorf("top = %v, want D", top.NodeID)
	}
}

func TestConnections(t *testing.T) {
	a := node("A", "a", nodeIDs("B"))
	a.Connections = nodeIDs("D")
	g := mustGraph(t, a, node("B", "ab", nil), node("D", "abd", nil))
	d1 := item(4, "D", 1, TierNew)
	s := mustScheduler(t, g, dueOf(d1), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))

	if got := mustNext(t, s, sess); got != d1 {
		t.Fatalf("Next = %v, want %v", got, d1)
	}
	frames := sess.Frames()
	if len(frames) != 2 || frames[0].NodeID != "A" || frames[1].NodeID != "D" {
		t.Errorf("frames = %+v, want [A D]", frames)
	}
}

func TestConnectionsOfConnections(t *testing.T) {
	a := node("A", "a", nil)
	a.Connections = nodeIDs("X")
	x := node("X", "x", nil)
	x.Connections = nodeIDs("A", "Y")
	y := node("Y", "yy", nil)
	y.Connections = nodeIDs("W")
	g := mustGraph(t, a, x, y, node("W", "www", nil))
	y1 := item(3, "Y", 1, TierReview)
	s := mustScheduler(t, g, dueOf(y1, item(4, "W", 1, TierLearning)), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))
	if got := mustNext(t, s, sess); got != y1 {
		t.Fatalf("Next = %v, want %v", got, y1)
	}
	if sess.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", sess.Depth())
	}
}

// --- Backtracking ---

func TestBacktrackToParent(t *testing.T) {
	g := mustGraph(t,
		node("R", "r", nodeIDs("A"), nodeIDs("X")),
		node("A", "ra", nil),
		node("X", "rx", nil),
	)
	x1 := item(9, "X", 1, TierNew)
	s := mustScheduler(t, g, dueOf(x1), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "R", 1, TierNew))
	sess.EnterOrContinue(item(2, "A", 1, TierNew))

	if got := mustNext(t, s, sess); got != x1 {
		t.Fatalf("Next = %v, want %v", got, x1)
	}
	frames := sess.Frames()
	if len(frames) != 2 || frames[0].NodeID != "R" || frames[1].NodeID != "X" {
		t.Errorf("frames = %+v, want [R X]", frames)
	}
}

func TestBacktrackToFreshStart(t *testing.T) {
	g := mustGraph(t, node("A", "a", nil), node("B", "b", nil))
	b1 := item(2, "B", 1, TierNew)
	s := mustScheduler(t, g, dueOf(b1), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))
	if got := mustNext(t, s, sess); got != b1 {
		t.Fatalf("Next = %v, want %v", got, b1)
	}
	frames := sess.Frames()
	if len(frames) != 1 || frames[0].NodeID != "B" {
		t.Errorf("frames = %+v, want [B]", frames)
	}
}

// --- Idempotence ---

func TestNextIsIdempotent(t *testing.T) {
	g := mustGraph(t,
		node("A", "a", nodeIDs("B", "C")),
		node("B", "ab", nil), node("C", "ac", nil), node("Q", "q", nil),
	)
	due := dueOf(item(1, "A", 1, TierNew), item(2, "B", 1, TierNew), item(3, "C", 1, TierNew), item(4, "Q", 1, TierNew))
	s := mustScheduler(t, g, due, 3)
	sess := NewSession()

	for step := 0; step < 4; step++ {
		first := mustNext(t, s, sess)
		depth := sess.Depth()
		second := mustNext(t, s, sess)
		if first != second {
			t.Fatalf("step %d: Next = %v then %v", step, first, second)
		}
		if sess.Depth() != depth {
			t.Fatalf("step %d: repeated Next changed depth %d → %d", step, depth, sess.Depth())
		}
		sess.EnterOrContinue(first)
	}
}

// --- Errors ---

func TestStaleNodesContributeNothing(t *testing.T) {
	g := mustGraph(t, node("A", "a", nil))
	a1 := item(1, "A", 1, TierNew)
	ghost := item(7, "ghost", 1, TierLearning)
	s := mustScheduler(t, g, dueOf(ghost, a1), 1)
	sess := NewSession()
	sess.EnterOrContinue(ghost)

	if got := mustNext(t, s, sess); got != a1 {
		t.Fatalf("Next = %v, want %v", got, a1)
	}
}

func TestOnlyStaleDueNodesIsNoStart(t *testing.T) {
	ghost := item(7, "ghost", 1, TierNew)
	tr := &traversal{
		graph:  mustGraph(t, node("A", "a", nil)),
		snap:   NewDueSnapshot(nil, nil, []ItemRef{ghost}),
		sess:   NewSession(),
		rng:    rand.New(rand.NewSource(1)),
		logger: slog.New(slog.DiscardHandler),
	}
	_, ph, ok, err := tr.run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if ok || ph != phaseNone {
		t.Errorf("run = (%v, %v), want (none, false)", ph, ok)
	}
}

func TestStoreFailureIsFatal(t *testing.T) {
	inner := mustGraph(t, node("A", "a", nodeIDs("B")), node("B", "ab", nil), node("Z", "z", nil))
	g := &brokenGraph{ConceptGraph: inner, broken: map[NodeID]bool{"B": true}, err: errDiskGone}
	s := mustScheduler(t, g, dueOf(item(9, "Z", 1, TierNew)), 1)
	sess := NewSession()
	sess.EnterOrContinue(item(1, "A", 1, TierNew))

	_, ok, err := s.Next(context.Background(), sess)
	if ok {
		t.Error("Next returned an item after a store failure")
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Next error = %v, want ErrStoreUnavailable", err)
	}
	if !strings.Contains(err.Error(), errDiskGone.Error()) {
		t.Errorf("error %q lost its cause", err)
	}
}

func TestDueIndexFailureIsFatal(t *testing.T) {
	due := dueOf()
	due.err = errDiskGone
	s := mustScheduler(t, mustGraph(t), due, 1)
	_, _, err := s.Next(context.Background(), NewSession())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Next error = %v, want ErrStoreUnavailable", err)
	}
}

// --- Randomness ---

func TestTieBreakIsRandomButSeeded(t *testing.T) {
	g := mustGraph(t, node("A", "a", nil), node("B", "b", nil), node("C", "c", nil))
	due := dueOf(item(1, "A", 1, TierNew), item(2, "B", 1, TierNew), item(3, "C", 1, TierNew))

	chosen := map[NodeID]int{}
	for seed := int64(1); seed <= 100; seed++ {
		first := mustNext(t, mustScheduler(t, g, due, seed), NewSession())
		again := mustNext(t, mustScheduler(t, g, due, seed), NewSession())
		if first != again {
			t.Fatalf("seed %d: %v then %v with the same seed", seed, first, again)
		}
		chosen[first.NodeID]++
	}
	if len(chosen) < 2 {
		t.Errorf("100 seeds always chose %v", chosen)
	}
}

func TestUrgentNode(t *testing.T) {
	snap := NewDueSnapshot(
		[]ItemRef{item(1, "L", 1, TierLearning)},
		[]ItemRef{item(2, "R", 1, TierReview)},
		[]ItemRef{item(3, "N", 1, TierNew)},
	)
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		candidates []NodeID
		want       NodeID
	}{
		{nodeIDs("N", "R", "L"), "L"},
		{nodeIDs("N", "R"), "R"},
		{nodeIDs("N"), "N"},
	}
	for _, tt := range tests {
		got, ok := urgentNode(snap, tt.candidates, rng)
		if !ok || got != tt.want {
			t.Errorf("urgentNode(%v) = %v, %v; want %v", tt.candidates, got, ok, tt.want)
		}
	}
	if _, ok := urgentNode(snap, nodeIDs("nobody"), rng); ok {
		t.Error("urgentNode chose a node without due items")
	}
}

// --- Properties over random graphs ---

func randomGraph(r *rand.Rand, n int) ([]Node, []ItemRef) {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{ID: NodeID(fmt.Sprintf("n%d", i)), DepthKey: strings.Repeat("k", 1+r.Intn(4))}
	}
	pick := func() NodeID { return nodes[r.Intn(n)].ID }

	var items []ItemRef
	next := ItemID(1)
	for i := range nodes {
		answers := r.Intn(4)
		for ord := 1; ord <= answers; ord++ {
			var children []NodeID
			for c := r.Intn(3); c > 0; c-- {
				children = append(children, pick())
			}
			nodes[i].Answers = append(nodes[i].Answers, Answer{Ordinal: ord, Children: children})
			if r.Intn(3) == 0 {
				items = append(items, item(next, nodes[i].ID, ord, DueTiers[r.Intn(len(DueTiers))]))
				next++
			}
		}
		if r.Intn(3) == 0 {
			nodes[i].Siblings = append(nodes[i].Siblings, pick())
		}
		if r.Intn(3) == 0 {
			nodes[i].Connections = append(nodes[i].Connections, pick())
		}
	}
	return nodes, items
}

func TestRandomGraphProperties(t *testing.T) {
	r := rand.New(rand.NewSource(2024))
	for round := 0; round < 200; round++ {
		nodes, items := randomGraph(r, 2+r.Intn(12))
		g := mustGraph(t, nodes...)
		due := dueOf(items...)
		s := mustScheduler(t, g, due, int64(round))
		snap := NewDueSnapshot(due.tiers[TierLearning], due.tiers[TierReview], due.tiers[TierNew])

		sess := NewSession()
		ref, ok, err := s.Next(context.Background(), sess)
		if err != nil {
			t.Fatalf("round %d: Next: %v", round, err)
		}
		if len(items) == 0 {
			if ok || !sess.IsEmpty() {
				t.Fatalf("round %d: nothing due but Next = %v, %v", round, ref, ok)
			}
			continue
		}
		if !ok {
			t.Fatalf("round %d: items are due but Next returned none", round)
		}

		// Starting node has minimal depth among due nodes.
		minDepth := -1
		for _, id := range snap.AllDueNodes() {
			d, _ := g.DepthKeyLength(id)
			if minDepth < 0 || d < minDepth {
				minDepth = d
			}
		}
		if d, _ := g.DepthKeyLength(ref.NodeID); d != minDepth {
			t.Fatalf("round %d: start %v has depth %d, minimum is %d", round, ref, d, minDepth)
		}

		// Every call terminates with a due item, and a twin scheduler with
		// the same seed makes the same choices.
		twin := mustScheduler(t, g, due, int64(round))
		twinSess := NewSession()
		mustNext(t, twin, twinSess)
		sess.EnterOrContinue(ref)
		twinSess.EnterOrContinue(ref)
		for step := 0; step < 25; step++ {
			got := mustNext(t, s, sess)
			if !snap.Contains(got.ItemID) {
				t.Fatalf("round %d: Next returned %v which is not due", round, got)
			}
			if want := mustNext(t, twin, twinSess); got != want {
				t.Fatalf("round %d step %d: %v vs twin %v", round, step, got, want)
			}
			sess.EnterOrContinue(got)
			twinSess.EnterOrContinue(got)
		}
	}
}

func TestNextVisitsAreBounded(t *testing.T) {
	const n = 60
	var nodes []Node
	for i := 0; i < n; i++ {
		nd := node(NodeID(fmt.Sprintf("c%d", i)), strings.Repeat("c", i+1), nil)
		if i+1 < n {
			nd.Answers[0].Children = nodeIDs(NodeID(fmt.Sprintf("c%d", i+1)))
		}
		nd.Connections = nodeIDs("c0")
		nodes = append(nodes, nd)
	}
	nodes = append(nodes, node("Z", "z", nil))
	g := &countingGraph{ConceptGraph: mustGraph(t, nodes...)}
	z1 := item(99, "Z", 1, TierNew)
	s := mustScheduler(t, g, dueOf(z1), 1)

	sess := NewSession()
	sess.EnterOrContinue(item(1, "c0", 1, TierNew))
	if got := mustNext(t, s, sess); got != z1 {
		t.Fatalf("Next = %v, want %v", got, z1)
	}
	if g.visits > 4*n {
		t.Errorf("Next made %d graph lookups for %d nodes", g.visits, n)
	}
}

func TestNextVisitsAreBoundedOnDeepStack(t *testing.T) {
	const n = 60
	var nodes []Node
	sess := NewSession()
	for i := 0; i < n; i++ {
		id := NodeID(fmt.Sprintf("c%d", i))
		nd := node(id, strings.Repeat("c", i+1), nil)
		if i+1 < n {
			nd.Answers[0].Children = nodeIDs(NodeID(fmt.Sprintf("c%d", i+1)))
		}
		nd.Connections = nodeIDs("c0")
		nodes = append(nodes, nd)
		sess.EnterOrContinue(item(ItemID(i+1), id, 1, TierNew))
	}
	nodes = append(nodes, node("Z", "z", nil))
	g := &countingGraph{ConceptGraph: mustGraph(t, nodes...)}
	z1 := item(99, "Z", 1, TierNew)
	s := mustScheduler(t, g, dueOf(z1), 1)

	if sess.Depth() != n {
		t.Fatalf("Depth = %d, want %d", sess.Depth(), n)
	}
	if got := mustNext(t, s, sess); got != z1 {
		t.Fatalf("Next = %v, want %v", got, z1)
	}
	if g.visits > 5*n {
		t.Errorf("Next made %d graph lookups for %d nodes on a %d-frame stack", g.visits, n, n)
	}
}
