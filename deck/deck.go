// Package deck loads a concept graph and its item records from a YAML file.
//
// A deck looks like:
//
//	nodes:
//	  - id: capital
//	    depth_key: a
//	    answers:
//	      - ordinal: 1
//	        children: [population]
//	    connections: [rivers]
//	  - id: population
//	    depth_key: aa
//	    answers:
//	      - ordinal: 1
//	items:
//	  - id: 1
//	    node: capital
//	    ordinal: 1
//	    state: Review
//	    due: 2025-06-15T08:00:00Z
//
// When items is omitted, one New item is created per answer, numbered from 1
// in file order.
package deck

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sky-flux/mindflux"
)

var (
	// ErrDanglingReference is returned when a link, child or item names a
	// node or answer the deck does not define.
	ErrDanglingReference = errors.New("deck: dangling reference")

	// ErrInvalidDeck is returned when the file fails structural validation.
	ErrInvalidDeck = errors.New("deck: invalid deck")
)

var deckValidate = validator.New()

type fileDeck struct {
	Nodes []fileNode `yaml:"nodes" validate:"required,min=1,dive"`
	Items []fileItem `yaml:"items" validate:"dive"`
}

type fileNode struct {
	ID          string       `yaml:"id" validate:"required"`
	DepthKey    string       `yaml:"depth_key" validate:"required"`
	Answers     []fileAnswer `yaml:"answers" validate:"dive"`
	Siblings    []string     `yaml:"siblings" validate:"dive,required"`
	Connections []string     `yaml:"connections" validate:"dive,required"`
}

type fileAnswer struct {
	Ordinal  int      `yaml:"ordinal" validate:"gte=1"`
	Children []string `yaml:"children" validate:"dive,required"`
}

type fileItem struct {
	ID       int64     `yaml:"id" validate:"gte=1"`
	Node     string    `yaml:"node" validate:"required"`
	Ordinal  int       `yaml:"ordinal" validate:"gte=1"`
	State    string    `yaml:"state"`
	Due      time.Time `yaml:"due"`
	Position *int      `yaml:"position"`
}

// Deck is a validated concept graph with its item records.
type Deck struct {
	Nodes []mindflux.Node
	Items []mindflux.ItemRecord
}

// Graph builds an in-memory graph from the deck.
func (d *Deck) Graph() (*mindflux.Graph, error) {
	return mindflux.NewGraph(d.Nodes...)
}

// Index builds an in-memory due index from the deck's item records.
func (d *Deck) Index(cfg mindflux.RecordIndexConfig) (*mindflux.RecordIndex, error) {
	return mindflux.NewRecordIndex(d.Items, cfg)
}

// Load reads and parses the deck at path.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deck: read %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse parses and validates a YAML deck.
func Parse(data []byte) (*Deck, error) {
	var f fileDeck
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
	}
	if err := deckValidate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
	}

	d := &Deck{Nodes: make([]mindflux.Node, 0, len(f.Nodes))}
	for _, fn := range f.Nodes {
		d.Nodes = append(d.Nodes, fn.node())
	}
	g, err := mindflux.NewGraph(d.Nodes...)
	if err != nil {
		return nil, err
	}
	if err := checkLinks(g, d.Nodes); err != nil {
		return nil, err
	}

	if len(f.Items) == 0 {
		d.Items = generateItems(d.Nodes)
		return d, nil
	}
	seen := make(map[mindflux.ItemID]struct{}, len(f.Items))
	for i, fi := range f.Items {
		rec, err := fi.record(i)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[rec.ItemID]; dup {
			return nil, fmt.Errorf("%w: %d", mindflux.ErrDuplicateItem, rec.ItemID)
		}
		seen[rec.ItemID] = struct{}{}
		n, err := g.Node(rec.NodeID)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: node %s", ErrDanglingReference, rec.ItemID, rec.NodeID)
		}
		if _, ok := n.Answer(rec.Ordinal); !ok {
			return nil, fmt.Errorf("%w: item %d: %s has no answer %d", ErrDanglingReference, rec.ItemID, rec.NodeID, rec.Ordinal)
		}
		d.Items = append(d.Items, rec)
	}
	return d, nil
}

func (fn fileNode) node() mindflux.Node {
	n := mindflux.Node{
		ID:          mindflux.NodeID(fn.ID),
		DepthKey:    fn.DepthKey,
		Siblings:    nodeIDs(fn.Siblings),
		Connections: nodeIDs(fn.Connections),
	}
	for _, fa := range fn.Answers {
		n.Answers = append(n.Answers, mindflux.Answer{
			Ordinal:  fa.Ordinal,
			Children: nodeIDs(fa.Children),
		})
	}
	return n
}

func (fi fileItem) record(index int) (mindflux.ItemRecord, error) {
	position := index
	if fi.Position != nil {
		position = *fi.Position
	}
	rec := mindflux.NewItemRecord(mindflux.ItemID(fi.ID), mindflux.NodeID(fi.Node), fi.Ordinal, position)
	if fi.State != "" {
		if err := rec.State.UnmarshalText([]byte(fi.State)); err != nil {
			return mindflux.ItemRecord{}, fmt.Errorf("item %d: %w", fi.ID, err)
		}
	}
	rec.Due = fi.Due
	return rec, rec.Validate()
}

func checkLinks(g *mindflux.Graph, nodes []mindflux.Node) error {
	known := func(id mindflux.NodeID) bool {
		_, err := g.Node(id)
		return err == nil
	}
	for _, n := range nodes {
		for _, a := range n.Answers {
			for _, c := range a.Children {
				if !known(c) {
					return fmt.Errorf("%w: %s answer %d: child %s", ErrDanglingReference, n.ID, a.Ordinal, c)
				}
			}
		}
		for _, s := range n.Siblings {
			if !known(s) {
				return fmt.Errorf("%w: %s: sibling %s", ErrDanglingReference, n.ID, s)
			}
		}
		for _, c := range n.Connections {
			if !known(c) {
				return fmt.Errorf("%w: %s: connection %s", ErrDanglingReference, n.ID, c)
			}
		}
	}
	return nil
}

func generateItems(nodes []mindflux.Node) []mindflux.ItemRecord {
	var out []mindflux.ItemRecord
	for _, n := range nodes {
		for _, a := range n.Answers {
			out = append(out, mindflux.NewItemRecord(mindflux.ItemID(len(out)+1), n.ID, a.Ordinal, len(out)))
		}
	}
	return out
}

func nodeIDs(ss []string) []mindflux.NodeID {
	if len(ss) == 0 {
		return nil
	}
	out := make([]mindflux.NodeID, len(ss))
	for i, s := range ss {
		out[i] = mindflux.NodeID(s)
	}
	return out
}
