// Package badgerstore persists a concept graph and its item records in
// BadgerDB and serves them as a mindflux.ConceptGraph and mindflux.DueIndex.
//
// Nodes live under "node/<id>" and items under "item/<zero-padded id>", both
// JSON encoded. A node record that is missing or fails to decode is reported
// as mindflux.ErrNodeNotFound, and malformed item records are left out of the
// due index. Every other database failure is reported as
// mindflux.ErrStoreUnavailable.
//
// Store is safe for concurrent use.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/sky-flux/mindflux"
)

// ErrItemNotFound is returned when an item id has no record.
var ErrItemNotFound = errors.New("badgerstore: item not found")

const (
	nodePrefix = "node/"
	itemPrefix = "item/"
)

// Config holds configuration for a Store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Useful for testing.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// Logger receives BadgerDB's internal logs and warnings about skipped
	// records. Nil disables them.
	Logger *slog.Logger

	// Limits bounds the daily queue served by DuePerTier.
	Limits mindflux.DueLimits

	// Now is the clock used to classify items. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns a durable configuration for the database at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Infof logs at Debug: badger's info output is table and compaction chatter.
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a BadgerDB-backed concept graph and due index.
type Store struct {
	db     *badger.DB
	limits mindflux.DueLimits
	now    func() time.Time
	logger *slog.Logger
}

var (
	_ mindflux.ConceptGraph  = (*Store)(nil)
	_ mindflux.BatchDueIndex = (*Store)(nil)
)

// Open opens the database described by cfg. The caller must Close it.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badgerstore: path is required for a persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("badgerstore: create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger database: %w", mindflux.ErrStoreUnavailable, err)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{db: db, limits: cfg.Limits, now: now, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nodeKey(id mindflux.NodeID) []byte {
	return []byte(nodePrefix + string(id))
}

func itemKey(id mindflux.ItemID) []byte {
	return []byte(fmt.Sprintf("%s%020d", itemPrefix, id))
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", mindflux.ErrStoreUnavailable, op, err)
}

// Import writes nodes and items in one batch, replacing existing records
// with the same ids. Everything is validated before anything is written.
func (s *Store) Import(nodes []mindflux.Node, items []mindflux.ItemRecord) error {
	type kv struct{ k, v []byte }
	var pending []kv
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			return err
		}
		v, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("badgerstore: encode node %s: %w", n.ID, err)
		}
		pending = append(pending, kv{nodeKey(n.ID), v})
	}
	for _, rec := range items {
		if err := rec.Validate(); err != nil {
			return err
		}
		v, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("badgerstore: encode item %d: %w", rec.ItemID, err)
		}
		pending = append(pending, kv{itemKey(rec.ItemID), v})
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, p := range pending {
		if err := wb.Set(p.k, p.v); err != nil {
			return unavailable("import", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return unavailable("import", err)
	}
	return nil
}

// PutNode stores n.
func (s *Store) PutNode(n mindflux.Node) error {
	return s.Import([]mindflux.Node{n}, nil)
}

// PutItem stores rec.
func (s *Store) PutItem(rec mindflux.ItemRecord) error {
	return s.Import(nil, []mindflux.ItemRecord{rec})
}

// DeleteNode removes the node record. Items and references pointing at it
// are left alone; they surface as stale references.
func (s *Store) DeleteNode(id mindflux.NodeID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(nodeKey(id))
	})
	if err != nil {
		return unavailable("delete node "+string(id), err)
	}
	return nil
}

// Node returns the stored node.
func (s *Store) Node(id mindflux.NodeID) (mindflux.Node, error) {
	var n mindflux.Node
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &n)
		})
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return mindflux.Node{}, fmt.Errorf("%w: %s", mindflux.ErrNodeNotFound, id)
	case err != nil && isDecodeError(err):
		return mindflux.Node{}, fmt.Errorf("%w: %s: malformed record: %v", mindflux.ErrNodeNotFound, id, err)
	case err != nil:
		return mindflux.Node{}, unavailable("read node "+string(id), err)
	}
	if n.ID != id {
		return mindflux.Node{}, fmt.Errorf("%w: %s: record holds %q", mindflux.ErrNodeNotFound, id, n.ID)
	}
	if err := n.Validate(); err != nil {
		return mindflux.Node{}, fmt.Errorf("%w: %s: %v", mindflux.ErrNodeNotFound, id, err)
	}
	return n, nil
}

func isDecodeError(err error) bool {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syntax) || errors.As(err, &typ) ||
		errors.Is(err, mindflux.ErrInvalidTier) || errors.Is(err, mindflux.ErrInvalidState)
}

// decodeItem decodes the record stored under key. The error is non-nil when
// the record is malformed: undecodable, invalid, or stored under another id.
func decodeItem(key, val []byte) (mindflux.ItemRecord, error) {
	var rec mindflux.ItemRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return mindflux.ItemRecord{}, err
	}
	if err := rec.Validate(); err != nil {
		return mindflux.ItemRecord{}, err
	}
	if want := itemKey(rec.ItemID); string(want) != string(key) {
		return mindflux.ItemRecord{}, fmt.Errorf("record holds item %d", rec.ItemID)
	}
	return rec, nil
}

// Item returns the stored item record. A malformed record is reported as
// ErrItemNotFound.
func (s *Store) Item(id mindflux.ItemID) (mindflux.ItemRecord, error) {
	var (
		rec mindflux.ItemRecord
		bad error
	)
	key := itemKey(id)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec, bad = decodeItem(key, val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return mindflux.ItemRecord{}, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	if err != nil {
		return mindflux.ItemRecord{}, unavailable(fmt.Sprintf("read item %d", id), err)
	}
	if bad != nil {
		return mindflux.ItemRecord{}, fmt.Errorf("%w: %d: malformed record: %v", ErrItemNotFound, id, bad)
	}
	return rec, nil
}

// Items returns every well-formed item record in id order, read in one
// transaction. Malformed records are skipped with a warning.
func (s *Store) Items(ctx context.Context) ([]mindflux.ItemRecord, error) {
	var out []mindflux.ItemRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(itemPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().KeyCopy(nil)
			var (
				rec mindflux.ItemRecord
				bad error
			)
			if err := it.Item().Value(func(val []byte) error {
				rec, bad = decodeItem(key, val)
				return nil
			}); err != nil {
				return fmt.Errorf("read %s: %w", key, err)
			}
			if bad != nil {
				s.logger.Warn("skipping malformed item record",
					slog.String("key", string(key)),
					slog.String("error", bad.Error()))
				continue
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("list items", err)
	}
	return out, nil
}

// MarkReviewed reschedules the item to due. A due time before the end of the
// store clock's day puts the item in Learning (Relearning when it was in
// review), whose due time is exact; otherwise it moves into Review.
func (s *Store) MarkReviewed(id mindflux.ItemID, due time.Time) error {
	rec, err := s.Item(id)
	if err != nil {
		return err
	}
	switch {
	case !due.Before(mindflux.EndOfDay(s.now())):
		rec.State = mindflux.Review
	case rec.State == mindflux.Review || rec.State == mindflux.Relearning:
		rec.State = mindflux.Relearning
	default:
		rec.State = mindflux.Learning
	}
	rec.Due = due
	return s.PutItem(rec)
}

// DepthKeyLength implements mindflux.ConceptGraph.
func (s *Store) DepthKeyLength(id mindflux.NodeID) (int, error) {
	n, err := s.Node(id)
	if err != nil {
		return 0, err
	}
	return n.DepthKeyLength(), nil
}

// ChildrenOf implements mindflux.ConceptGraph.
func (s *Store) ChildrenOf(id mindflux.NodeID, ordinal int) ([]mindflux.NodeID, error) {
	n, err := s.Node(id)
	if err != nil {
		return nil, err
	}
	a, _ := n.Answer(ordinal)
	return a.Children, nil
}

// AllAnswerChildren implements mindflux.ConceptGraph.
func (s *Store) AllAnswerChildren(id mindflux.NodeID) (map[int][]mindflux.NodeID, error) {
	n, err := s.Node(id)
	if err != nil {
		return nil, err
	}
	return n.AnswerChildren(), nil
}

// SiblingsOf implements mindflux.ConceptGraph.
func (s *Store) SiblingsOf(id mindflux.NodeID) ([]mindflux.NodeID, error) {
	n, err := s.Node(id)
	if err != nil {
		return nil, err
	}
	return n.Siblings, nil
}

// ConnectionsOf implements mindflux.ConceptGraph.
func (s *Store) ConnectionsOf(id mindflux.NodeID) ([]mindflux.NodeID, error) {
	n, err := s.Node(id)
	if err != nil {
		return nil, err
	}
	return n.Connections, nil
}

// DueAll implements mindflux.BatchDueIndex: all tiers come from one read
// transaction classified at one clock reading.
func (s *Store) DueAll(ctx context.Context) (learning, review, fresh []mindflux.ItemRef, err error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	learning, review, fresh = mindflux.PartitionDue(items, s.now(), s.limits)
	return learning, review, fresh, nil
}

// DuePerTier implements mindflux.DueIndex.
func (s *Store) DuePerTier(ctx context.Context, tier mindflux.Tier) ([]mindflux.ItemRef, error) {
	if !tier.IsDue() {
		return nil, fmt.Errorf("%w: %v is not a due tier", mindflux.ErrInvalidTier, tier)
	}
	learning, review, fresh, err := s.DueAll(ctx)
	if err != nil {
		return nil, err
	}
	switch tier {
	case mindflux.TierLearning:
		return learning, nil
	case mindflux.TierReview:
		return review, nil
	default:
		return fresh, nil
	}
}
