package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kind string

type note struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Title     string    `json:"title"`
	Kind      kind      `json:"kind"`
	Score     int       `json:"score"`
	Pinned    bool      `json:"pinned"`
	Tags      []string  `json:"tags"`
}

func (n *note) GetID() string            { return n.ID }
func (n *note) SetID(id string)          { n.ID = id }
func (n *note) GetCreatedAt() time.Time  { return n.CreatedAt }
func (n *note) SetCreatedAt(t time.Time) { n.CreatedAt = t }
func (n *note) SetUpdatedAt(t time.Time) { n.UpdatedAt = t }

func (n *note) Field(name string) (any, bool) {
	switch name {
	case "id":
		return n.ID, true
	case "title":
		return n.Title, true
	case "kind":
		return n.Kind, true
	case "score":
		return n.Score, true
	case "pinned":
		return n.Pinned, true
	}
	return nil, false
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func openTestDB(t *testing.T) (*DB, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	db, err := Open(Options{Dir: t.TempDir(), Clock: clock.now})
	require.NoError(t, err)
	return db, clock
}

func notes(db *DB) *Collection[note, *note] {
	return NewCollection[note](db, "notes")
}

func TestOpen(t *testing.T) {
	t.Run("requires_dir", func(t *testing.T) {
		_, err := Open(Options{})
		require.Error(t, err)
	})

	t.Run("creates_dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "data")
		db, err := Open(Options{Dir: dir})
		require.NoError(t, err)
		assert.Equal(t, dir, db.Dir())
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestCreateAndFindByID(t *testing.T) {
	db, clock := openTestDB(t)
	c := notes(db)

	created, err := c.Create(&note{Title: "first", Kind: "memo", Score: 3, Tags: []string{"a"}})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, clock.now(), created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	found, err := c.FindByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, *created, *found)

	t.Run("missing_is_nil", func(t *testing.T) {
		missing, err := c.FindByID("nope")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("caller_copy_untouched", func(t *testing.T) {
		in := &note{Title: "second"}
		out, err := c.Create(in)
		require.NoError(t, err)
		assert.Empty(t, in.ID)
		assert.NotEqual(t, created.ID, out.ID)
	})
}

func TestCreateUniqueIDs(t *testing.T) {
	dir := t.TempDir()
	ids := []string{"dup", "dup", "dup", "fresh"}
	i := 0
	db, err := Open(Options{Dir: dir, NewID: func() string {
		id := ids[i]
		i++
		return id
	}})
	require.NoError(t, err)
	c := notes(db)

	first, err := c.Create(&note{Title: "a"})
	require.NoError(t, err)
	second, err := c.Create(&note{Title: "b"})
	require.NoError(t, err)

	assert.Equal(t, "dup", first.ID)
	assert.Equal(t, "fresh", second.ID)
}

func TestCreateIf(t *testing.T) {
	db, _ := openTestDB(t)
	c := notes(db)

	unique := func(title string) func([]note) error {
		return func(existing []note) error {
			for _, n := range existing {
				if n.Title == title {
					return errors.New("duplicate title")
				}
			}
			return nil
		}
	}

	_, err := c.CreateIf(&note{Title: "x"}, unique("x"))
	require.NoError(t, err)
	_, err = c.CreateIf(&note{Title: "x"}, unique("x"))
	require.EqualError(t, err, "duplicate title")

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFindAll(t *testing.T) {
	db, _ := openTestDB(t)
	c := notes(db)

	for i, k := range []kind{"memo", "todo", "memo", "idea"} {
		_, err := c.Create(&note{Title: fmt.Sprintf("n%d", i), Kind: k, Score: i, Pinned: i%2 == 0})
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		conds  []Condition
		titles []string
	}{
		{"no_conditions", nil, []string{"n0", "n1", "n2", "n3"}},
		{"eq_named_string", []Condition{Eq("kind", kind("memo"))}, []string{"n0", "n2"}},
		{"eq_plain_string", []Condition{Eq("kind", "memo")}, []string{"n0", "n2"}},
		{"eq_bool", []Condition{Eq("pinned", false)}, []string{"n1", "n3"}},
		{"eq_number_across_kinds", []Condition{Eq("score", 2.0)}, []string{"n2"}},
		{"in_set", []Condition{In("kind", "todo", "idea")}, []string{"n1", "n3"}},
		{"in_empty_matches_nothing", []Condition{In[string]("kind")}, nil},
		{"conjunction", []Condition{Eq("kind", "memo"), Eq("pinned", true)}, []string{"n0", "n2"}},
		{"no_match", []Condition{Eq("title", "zzz")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := c.FindAll(tt.conds...)
			require.NoError(t, err)
			var titles []string
			for _, d := range docs {
				titles = append(titles, d.Title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}

	t.Run("find_one_first_match", func(t *testing.T) {
		doc, err := c.FindOne(Eq("kind", "memo"))
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "n0", doc.Title)
	})

	t.Run("unknown_field", func(t *testing.T) {
		_, err := c.FindAll(Eq("color", "red"))
		assert.ErrorIs(t, err, ErrUnknownField)
		_, err = c.Count(Eq("color", "red"))
		assert.ErrorIs(t, err, ErrUnknownField)
	})
}

func TestUpdateByID(t *testing.T) {
	db, clock := openTestDB(t)
	c := notes(db)

	created, err := c.Create(&note{Title: "draft", Score: 1})
	require.NoError(t, err)
	clock.advance(time.Minute)

	updated, err := c.UpdateByID(created.ID, func(n *note) error {
		n.Title = "final"
		n.ID = "hijacked"
		n.CreatedAt = time.Time{}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, created.CreatedAt.Add(time.Minute), updated.UpdatedAt)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, 1, updated.Score)

	t.Run("missing_is_nil", func(t *testing.T) {
		out, err := c.UpdateByID("nope", func(*note) error { return nil })
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("mutation_error_aborts", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := c.UpdateByID(created.ID, func(n *note) error {
			n.Title = "lost"
			return boom
		})
		require.ErrorIs(t, err, boom)

		found, err := c.FindByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", found.Title)
	})
}

func TestDelete(t *testing.T) {
	db, _ := openTestDB(t)
	c := notes(db)

	a, err := c.Create(&note{Title: "a", Kind: "memo"})
	require.NoError(t, err)
	_, err = c.Create(&note{Title: "b", Kind: "todo"})
	require.NoError(t, err)
	_, err = c.Create(&note{Title: "c", Kind: "memo"})
	require.NoError(t, err)

	t.Run("guard_blocks", func(t *testing.T) {
		blocked := errors.New("blocked")
		removed, err := c.DeleteIf(a.ID, func(*note) error { return blocked })
		require.ErrorIs(t, err, blocked)
		assert.False(t, removed)
	})

	t.Run("by_id", func(t *testing.T) {
		removed, err := c.DeleteByID(a.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = c.DeleteByID(a.ID)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("many", func(t *testing.T) {
		n, err := c.DeleteMany(Eq("kind", "memo"))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		left, err := c.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, left)

		n, err = c.DeleteMany()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestPersistedLayout(t *testing.T) {
	db, _ := openTestDB(t)
	c := notes(db)

	_, err := c.Create(&note{Title: "on disk"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(db.Dir(), "notes.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"))

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "on disk", raw[0]["title"])
	assert.Contains(t, raw[0], "createdAt")
	assert.Contains(t, raw[0], "updatedAt")

	reopened, err := Open(Options{Dir: db.Dir()})
	require.NoError(t, err)
	docs, err := notes(reopened).FindAll()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestEmptyAndCorruptFiles(t *testing.T) {
	t.Run("missing_file_initialized", func(t *testing.T) {
		db, _ := openTestDB(t)
		docs, err := notes(db).FindAll()
		require.NoError(t, err)
		assert.Empty(t, docs)

		data, err := os.ReadFile(filepath.Join(db.Dir(), "notes.json"))
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("blank_file_is_empty", func(t *testing.T) {
		db, _ := openTestDB(t)
		path := filepath.Join(db.Dir(), "notes.json")
		require.NoError(t, os.WriteFile(path, []byte(" \n\t"), 0o644))

		docs, err := notes(db).FindAll()
		require.NoError(t, err)
		assert.Empty(t, docs)

		matches, err := filepath.Glob(path + ".backup.*")
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("corrupt_file_quarantined", func(t *testing.T) {
		db, clock := openTestDB(t)
		path := filepath.Join(db.Dir(), "notes.json")
		corrupt := []byte(`[{"id": "x", "title": `)
		require.NoError(t, os.WriteFile(path, corrupt, 0o644))

		docs, err := notes(db).FindAll()
		require.NoError(t, err)
		assert.Empty(t, docs)

		backup := fmt.Sprintf("%s.backup.%d", path, clock.now().UnixMilli())
		saved, err := os.ReadFile(backup)
		require.NoError(t, err)
		assert.Equal(t, corrupt, saved)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("wrong_shape_quarantined", func(t *testing.T) {
		db, _ := openTestDB(t)
		path := filepath.Join(db.Dir(), "notes.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644))

		created, err := notes(db).Create(&note{Title: "after"})
		require.NoError(t, err)

		docs, err := notes(db).FindAll()
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, created.ID, docs[0].ID)
	})

	t.Run("bad_timestamp_quarantined", func(t *testing.T) {
		db, clock := openTestDB(t)
		path := filepath.Join(db.Dir(), "notes.json")
		bad := []byte(`[{"id":"x","createdAt":"not-a-time","title":"t"}]`)
		require.NoError(t, os.WriteFile(path, bad, 0o644))

		docs, err := notes(db).FindAll()
		require.NoError(t, err)
		assert.Empty(t, docs)

		saved, err := os.ReadFile(fmt.Sprintf("%s.backup.%d", path, clock.now().UnixMilli()))
		require.NoError(t, err)
		assert.Equal(t, bad, saved)

		_, err = notes(db).Create(&note{Title: "after"})
		require.NoError(t, err)
		docs, err = notes(db).FindAll()
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	db, _ := openTestDB(t)
	c := notes(db)

	created, err := c.Create(&note{Title: "counter"})
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.UpdateByID(created.ID, func(n *note) error {
				n.Score++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	found, err := c.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, found.Score)
}

func TestConcurrentCreatesKeepEveryRecord(t *testing.T) {
	db, _ := openTestDB(t)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Separate collection values over the same DB share one lock.
			_, err := notes(db).Create(&note{Title: fmt.Sprintf("n%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	n, err := notes(db).Count()
	require.NoError(t, err)
	assert.Equal(t, workers, n)
}
