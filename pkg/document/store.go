package document

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/helmdraw/pkg/cache"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

// DefaultTTL is how long an untouched document stays open.
const DefaultTTL = 24 * time.Hour

// Store holds open documents.
type Store struct {
	db      monomer.Database
	backing cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	logger  *log.Logger

	mu   sync.RWMutex
	docs map[string]*entry
}

type entry struct {
	doc      *Document
	lastUsed time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithBacking mirrors every document's notation into c under keys from
// keyer, and loads documents from it on a miss.
func WithBacking(c cache.Cache, keyer cache.Keyer) Option {
	return func(s *Store) {
		s.backing = c
		if keyer != nil {
			s.keyer = keyer
		}
	}
}

// WithTTL sets how long an untouched document stays open.
func WithTTL(ttl time.Duration) Option { return func(s *Store) { s.ttl = ttl } }

// WithLogger sets the logger for backing-store failures.
func WithLogger(l *log.Logger) Option { return func(s *Store) { s.logger = l } }

// NewStore creates an in-memory store resolving monomers against db.
func NewStore(db monomer.Database, opts ...Option) *Store {
	if db == nil {
		db = monomer.Default()
	}
	s := &Store{
		db:      db,
		backing: cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
		ttl:     DefaultTTL,
		logger:  log.Default(),
		docs:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create parses text into a new document.
func (s *Store) Create(ctx context.Context, text string) (*Document, error) {
	if err := errors.ValidateNotationInput(text); err != nil {
		return nil, err
	}
	m, err := translate.Parse(text, s.db)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	d := newDocument(uuid.NewString(), m, s.db, now)
	d.onCommit = s.persist

	s.mu.Lock()
	s.docs[d.ID] = &entry{doc: d, lastUsed: now}
	s.mu.Unlock()

	s.persist(ctx, d, translate.Serialize(m))
	return d, nil
}

// Get returns the open document with the given ID, loading it from the
// backing cache if it is not in memory.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid document id %q", id)
	}

	s.mu.Lock()
	if e, ok := s.docs[id]; ok {
		e.lastUsed = time.Now()
		s.mu.Unlock()
		return e.doc, nil
	}
	s.mu.Unlock()

	data, hit, err := s.backing.Get(ctx, s.keyer.DocumentKey(id))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load document %s", id)
	}
	if !hit {
		return nil, errors.New(errors.ErrCodeDocumentNotFound, "document %s not found", id)
	}
	m, err := translate.Parse(string(data), s.db)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stored document %s is unreadable", id)
	}

	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have loaded it meanwhile.
	if e, ok := s.docs[id]; ok {
		e.lastUsed = now
		return e.doc, nil
	}
	d := newDocument(id, m, s.db, now)
	d.onCommit = s.persist
	s.docs[id] = &entry{doc: d, lastUsed: now}
	return d, nil
}

// Delete closes a document and removes it from the backing cache.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid document id %q", id)
	}
	s.mu.Lock()
	_, ok := s.docs[id]
	delete(s.docs, id)
	s.mu.Unlock()

	key := s.keyer.DocumentKey(id)
	if !ok {
		if _, hit, _ := s.backing.Get(ctx, key); !hit {
			return errors.New(errors.ErrCodeDocumentNotFound, "document %s not found", id)
		}
	}
	return s.backing.Delete(ctx, key)
}

// Len returns the number of documents held in memory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Cleanup drops documents untouched for longer than the TTL from memory.
// Their backing entries expire on their own.
func (s *Store) Cleanup(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.docs {
		if now.Sub(e.lastUsed) > s.ttl {
			delete(s.docs, id)
			n++
		}
	}
	return n
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Cleanup(now); n > 0 {
				s.logger.Debug("closed idle documents", "count", n)
			}
		}
	}
}

func (s *Store) persist(ctx context.Context, d *Document, notation string) {
	s.mu.Lock()
	if e, ok := s.docs[d.ID]; ok {
		e.lastUsed = time.Now()
	}
	s.mu.Unlock()

	if err := s.backing.Set(ctx, s.keyer.DocumentKey(d.ID), []byte(notation), s.ttl); err != nil {
		s.logger.Warn("persist document", "id", d.ID, "err", err)
	}
}
