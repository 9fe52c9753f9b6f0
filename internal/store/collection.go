package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Document is implemented by every record type kept in a collection.
// The store owns the identifier and both timestamps.
type Document interface {
	GetID() string
	SetID(id string)
	GetCreatedAt() time.Time
	SetCreatedAt(t time.Time)
	SetUpdatedAt(t time.Time)
	// Field returns the value of a filterable field by its persisted name.
	Field(name string) (any, bool)
}

// Collection is a typed view over one named collection of a DB.
type Collection[T any, PT interface {
	*T
	Document
}] struct {
	db   *DB
	name string
}

// NewCollection binds a record type to a named collection.
//
//	assets := store.NewCollection[models.Asset](db, "assets")
func NewCollection[T any, PT interface {
	*T
	Document
}](db *DB, name string) *Collection[T, PT] {
	return &Collection[T, PT]{db: db, name: name}
}

// Name returns the collection name.
func (c *Collection[T, PT]) Name() string { return c.name }

// load decodes the collection file. Must be called with the collection locked.
func (c *Collection[T, PT]) load() ([]T, error) {
	data, err := c.db.read(c.name)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []T{}, nil
	}

	var docs []T
	if err := json.Unmarshal(data, &docs); err != nil {
		// Any decode failure, including a field's own unmarshaler, quarantines the file.
		if qErr := c.db.quarantine(c.name, data, err); qErr != nil {
			return nil, qErr
		}
		return []T{}, nil
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}

// save encodes and rewrites the collection file. Must be called with the collection locked.
func (c *Collection[T, PT]) save(docs []T) error {
	data, err := c.db.marshal(c.name, docs)
	if err != nil {
		return err
	}
	if err := c.db.write(c.name, data); err != nil {
		c.db.log.Errorw("failed to write collection", "collection", c.name, "error", err)
		return err
	}
	c.db.log.Debugw("collection written", "collection", c.name, "records", len(docs))
	return nil
}

func (c *Collection[T, PT]) indexOf(docs []T, id string) int {
	for i := range docs {
		if PT(&docs[i]).GetID() == id {
			return i
		}
	}
	return -1
}

// Create stores a copy of doc with a fresh identifier and both timestamps set
// to now, and returns the stored record.
func (c *Collection[T, PT]) Create(doc *T) (*T, error) {
	return c.CreateIf(doc, nil)
}

// CreateIf is Create with a guard that sees the current records before the
// new one is appended. A guard error aborts the create and is returned
// unchanged. Uniqueness checks belong in the guard.
func (c *Collection[T, PT]) CreateIf(doc *T, guard func(existing []T) error) (*T, error) {
	m := c.db.lock(c.name)
	m.Lock()
	defer m.Unlock()

	docs, err := c.load()
	if err != nil {
		return nil, err
	}
	if guard != nil {
		if err := guard(docs); err != nil {
			return nil, err
		}
	}

	rec := *doc
	p := PT(&rec)

	id := c.db.newID()
	for c.indexOf(docs, id) >= 0 {
		id = c.db.newID()
	}
	now := c.db.now().UTC()
	p.SetID(id)
	p.SetCreatedAt(now)
	p.SetUpdatedAt(now)

	docs = append(docs, rec)
	if err := c.save(docs); err != nil {
		return nil, err
	}

	c.db.log.Debugw("document created", "collection", c.name, "id", id)
	out := rec
	return &out, nil
}

// FindAll returns the records matching every condition, in storage order.
// No conditions matches everything.
func (c *Collection[T, PT]) FindAll(conds ...Condition) ([]T, error) {
	if err := c.checkFields(conds); err != nil {
		return nil, err
	}

	m := c.db.lock(c.name)
	m.Lock()
	defer m.Unlock()

	docs, err := c.load()
	if err != nil {
		return nil, err
	}
	if len(conds) == 0 {
		return docs, nil
	}

	out := make([]T, 0, len(docs))
	for i := range docs {
		if matches(PT(&docs[i]), conds) {
			out = append(out, docs[i])
		}
	}
	return out, nil
}

// FindByID returns the record with the given id, or nil when there is none.
func (c *Collection[T, PT]) FindByID(id string) (*T, error) {
	m := c.db.lock(c.name)
	m.Lock()
	defer m.Unlock()

	docs, err := c.load()
	if err != nil {
		return nil, err
	}
	i := c.indexOf(docs, id)
	if i < 0 {
		return nil, nil
	}
	rec := docs[i]
	return &rec, nil
}

// FindOne returns the first record matching every condition, or nil.
func (c *Collection[T, PT]) FindOne(conds ...Condition) (*T, error) {
	if err := c.checkFields(conds); err != nil {
		return nil, err
	}

	m := c.db.lock(c.name)
	m.Lock()
	defer m.Unlock()

	docs, err := c.load()
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if matches(PT(&docs[i]), conds) {
			rec := docs[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// UpdateByID applies mutate to the stored record, refreshes its update time,
// persists the collection, and returns the updated record. It returns nil when
// no record has the id. If mutate fails nothing is written and its error is
// returned. The identifier and creation time survive any mutation.
//
// The load, mutate, and write happen under the collection lock, so mutate may
// check a precondition against the current record.
func (c *Collection[T, PT]) UpdateByID(id string, mutate func(*T) error) (*T, error) {
	m := c.db.lock(c.name)
	m.Lock()
	defer m.Unlock()

	docs, err := c.load()
	if err != nil {
		return nil, err
	}
	i := c.indexOf(docs, id)
	if i < 0 {
		return nil, nil
	}

	rec := docs[i]
	p := PT(&rec)
	createdAt := p.GetCreatedAt()
	if mutate != nil {
		if err := mutate(&rec); err != nil {
			return nil, err
		}
	}
	p.SetID(id)
	p.SetCreatedAt(createdAt)
	p.SetUpdatedAt(c.db.now().UTC())

	docs[i] = rec
	if err := c.save(docs); err != nil {
		return nil, err
	}
	out := rec
	return &out, nil
}

// DeleteIf removes the record with the given id if guard accepts it. It
// reports whether a record was removed; a guard error is returned unchanged.
func (c *Collection[T, PT]) DeleteIf(id string, guard func(*T) error) (bool, error) {
	m := c.db.lock(c.name)
	m.Lock()
	defer m.Unlock()

	docs, err := c.load()
	if err != nil {
		return false, err
	}
	i := c.indexOf(docs, id)
	if i < 0 {
		return false, nil
	}
	if guard != nil {
		rec := docs[i]
		if err := guard(&rec); err != nil {
			return false, err
		}
	}

	docs = append(docs[:i], docs[i+1:]...)
	if err := c.save(docs); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByID removes the record with the given id and reports whether it existed.
func (c *Collection[T, PT]) DeleteByID(id string) (bool, error) {
	return c.DeleteIf(id, nil)
}

// DeleteMany removes every record matching the conditions and returns how many
// were removed. No conditions removes everything.
func (c *Collection[T, PT]) DeleteMany(conds ...Condition) (int, error) {
	if err := c.checkFields(conds); err != nil {
		return 0, err
	}

	m := c.db.lock(c.name)
	m.Lock()
	defer m.Unlock()

	docs, err := c.load()
	if err != nil {
		return 0, err
	}

	kept := make([]T, 0, len(docs))
	for i := range docs {
		if !matches(PT(&docs[i]), conds) {
			kept = append(kept, docs[i])
		}
	}
	removed := len(docs) - len(kept)
	if err := c.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Count returns the number of records matching the conditions.
func (c *Collection[T, PT]) Count(conds ...Condition) (int, error) {
	docs, err := c.FindAll(conds...)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// checkFields rejects conditions naming a field the record type does not expose.
func (c *Collection[T, PT]) checkFields(conds []Condition) error {
	var zero T
	p := PT(&zero)
	for _, cond := range conds {
		if _, ok := p.Field(cond.Field); !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, c.name, cond.Field)
		}
	}
	return nil
}
