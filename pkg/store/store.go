// Package store persists compiled sections in a bbolt database, so a
// later link or decompile step can pick them up without recompiling.
// Sections live in one bucket, keyed by section id, JSON encoded.
package store

import (
	"fmt"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/goccy/go-json"
	"github.com/kolide/wixext/pkg/diag"
	"github.com/kolide/wixext/pkg/intermediate"
	"github.com/kolide/wixext/pkg/schema"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

const sectionsBucket = "sections"

// NoDbError is an error type that represents a nil bbolt database
type NoDbError struct{}

func (e NoDbError) Error() string {
	return "bbolt db is nil"
}

// NoBucketError is an error type that represents a nonexistent bucket
type NoBucketError struct {
	bucketName string
}

func (e NoBucketError) Error() string {
	return fmt.Sprintf("%s bucket does not exist", e.bucketName)
}

func NewNoBucketError(bucketName string) NoBucketError {
	return NoBucketError{bucketName: bucketName}
}

// ErrNotFound is returned by Load for ids nothing was saved under.
var ErrNotFound = errors.New("section not found")

type Store struct {
	logger log.Logger
	db     *bbolt.DB
}

type Option func(*Store)

func WithLogger(logger log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open opens, creating if needed, the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening bbolt db %s", path)
	}

	s := &Store{
		logger: log.NewNopLogger(),
		db:     db,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(sectionsBucket)); err != nil {
			return errors.Wrap(err, "creating bucket")
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return NoDbError{}
	}
	return s.db.Close()
}

type storedSymbol struct {
	Table  string               `json:"table"`
	Source diag.SourceLine      `json:"source"`
	Fields []intermediate.Field `json:"fields"`
}

type storedSection struct {
	ID         string                         `json:"id"`
	Symbols    []storedSymbol                 `json:"symbols"`
	References []intermediate.SimpleReference `json:"references,omitempty"`
}

// Save stores section under its id, replacing what was there.
func (s *Store) Save(section *intermediate.Section) error {
	if s == nil || s.db == nil {
		return NoDbError{}
	}
	if section.ID == "" {
		return errors.New("section has no id")
	}

	stored := storedSection{
		ID:         section.ID,
		Symbols:    make([]storedSymbol, len(section.Symbols)),
		References: section.References,
	}
	for i, sym := range section.Symbols {
		stored.Symbols[i] = storedSymbol{
			Table:  sym.Table(),
			Source: sym.Source,
			Fields: sym.Fields,
		}
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return errors.Wrapf(err, "encoding section %s", section.ID)
	}

	if err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sectionsBucket))
		if b == nil {
			return NewNoBucketError(sectionsBucket)
		}
		if err := b.Put([]byte(section.ID), raw); err != nil {
			return errors.Wrapf(err, "error setting %s key", section.ID)
		}
		return nil
	}); err != nil {
		return err
	}

	level.Debug(s.logger).Log("msg", "saved section", "section", section.ID, "symbols", len(section.Symbols), "bytes", len(raw))
	return nil
}

// Load reads the section saved under id. Table names are resolved
// through reg and every symbol is checked against its definition.
func (s *Store) Load(id string, reg *schema.Registry) (*intermediate.Section, error) {
	if s == nil || s.db == nil {
		return nil, NoDbError{}
	}

	var raw []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sectionsBucket))
		if b == nil {
			return NewNoBucketError(sectionsBucket)
		}
		if v := b.Get([]byte(id)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.Wrap(ErrNotFound, id)
	}

	var stored storedSection
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, errors.Wrapf(err, "decoding section %s", id)
	}

	section := &intermediate.Section{
		ID:         stored.ID,
		Symbols:    make([]*intermediate.Symbol, len(stored.Symbols)),
		References: stored.References,
	}
	for i, ss := range stored.Symbols {
		def, err := reg.Lookup(ss.Table)
		if err != nil {
			return nil, errors.Wrapf(err, "section %s symbol %d", id, i)
		}
		sym := &intermediate.Symbol{Definition: def, Fields: ss.Fields, Source: ss.Source}
		if err := sym.Validate(); err != nil {
			return nil, errors.Wrapf(err, "section %s symbol %d", id, i)
		}
		section.Symbols[i] = sym
	}

	return section, nil
}

// List returns the saved section ids in byte order.
func (s *Store) List() ([]string, error) {
	if s == nil || s.db == nil {
		return nil, NoDbError{}
	}

	var ids []string
	if err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sectionsBucket))
		if b == nil {
			return NewNoBucketError(sectionsBucket)
		}
		return b.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) Delete(ids ...string) error {
	if s == nil || s.db == nil {
		return NoDbError{}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sectionsBucket))
		if b == nil {
			return NewNoBucketError(sectionsBucket)
		}
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return errors.Wrapf(err, "error deleting %s key", id)
			}
		}
		return nil
	})
}
