// Package store provides durable, filterable keyed collections. Each
// collection is cached in memory and flushed whole to its backing JSON file
// on every mutation; the cache is the source of truth between flushes.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"momtrack/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Record is any entity a collection can hold.
type Record interface {
	RecordID() string
	Validate() error
}

// Collection is a keyed set of records in insertion order.
type Collection[T Record] struct {
	mu      sync.RWMutex
	name    string
	path    string
	index   map[string]int
	records []T
}

func openCollection[T Record](dir, name string) (*Collection[T], error) {
	c := &Collection[T]{
		name:  name,
		path:  filepath.Join(dir, name+".json"),
		index: map[string]int{},
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		// A missing file is an empty collection, not an error.
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var records []T
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.path, err)
	}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("parse %s: record %d: %w", c.path, i, err)
		}
		id := rec.RecordID()
		if _, ok := c.index[id]; ok {
			return nil, fmt.Errorf("parse %s: id %s: %w", c.path, id, ErrDuplicateKey)
		}
		c.index[id] = i
	}
	c.records = records
	return c, nil
}

// Insert adds a record and persists the collection.
func (c *Collection[T]) Insert(rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := rec.RecordID()
	if _, ok := c.index[id]; ok {
		return fmt.Errorf("%s %s: %w", c.name, id, ErrDuplicateKey)
	}
	c.records = append(c.records, rec)
	c.index[id] = len(c.records) - 1
	if err := c.flush(); err != nil {
		c.records = c.records[:len(c.records)-1]
		delete(c.index, id)
		return err
	}
	return nil
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
	}
	return c.records[i], nil
}

// Update replaces the record stored under id and persists the collection.
func (c *Collection[T]) Update(id string, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
	}
	prev := c.records[i]
	c.records[i] = rec
	if newID := rec.RecordID(); newID != id {
		delete(c.index, id)
		c.index[newID] = i
	}
	if err := c.flush(); err != nil {
		c.records[i] = prev
		if newID := rec.RecordID(); newID != id {
			delete(c.index, newID)
			c.index[id] = i
		}
		return err
	}
	return nil
}

// Delete removes the record with the given id and persists the collection.
func (c *Collection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
	}
	prev := c.records
	c.records = append(append([]T{}, c.records[:i]...), c.records[i+1:]...)
	c.reindex()
	if err := c.flush(); err != nil {
		c.records = prev
		c.reindex()
		return err
	}
	return nil
}

// Find returns all records whose named JSON fields equal the given values,
// in insertion order. No filters returns every record. Unknown filter keys
// match nothing.
func (c *Collection[T]) Find(filters map[string]any) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	want := make(map[string]any, len(filters))
	for k, v := range filters {
		nv, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", k, err)
		}
		want[k] = nv
	}
	var out []T
	for _, rec := range c.records {
		fields, err := recordFields(rec)
		if err != nil {
			return nil, err
		}
		if matches(fields, want) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// All returns every record in insertion order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T{}, c.records...)
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *Collection[T]) reindex() {
	c.index = make(map[string]int, len(c.records))
	for i, rec := range c.records {
		c.index[rec.RecordID()] = i
	}
}

// flush rewrites the whole collection through a temp file and an atomic
// rename so a crash mid-write cannot truncate previously durable state.
func (c *Collection[T]) flush() error {
	recs := c.records
	if recs == nil {
		recs = []T{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	f, err := os.CreateTemp(filepath.Dir(c.path), c.name+"-*.json.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// recordFields projects a record onto its generic JSON representation, the
// shape filter values are compared against.
func recordFields(rec any) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(fields, want map[string]any) bool {
	for k, v := range want {
		got, ok := fields[k]
		if !ok || !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}

// Store owns one typed collection per entity. It is created once at process
// start and passed by handle to the services that use it.
type Store struct {
	Departments *Collection[domain.Department]
	Meetings    *Collection[domain.Meeting]
	MOMs        *Collection[domain.MinutesOfMeeting]
	Tasks       *Collection[domain.Task]
}

// Open loads every collection from dir, creating the directory if missing.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	departments, err := openCollection[domain.Department](dir, "departments")
	if err != nil {
		return nil, err
	}
	meetings, err := openCollection[domain.Meeting](dir, "meetings")
	if err != nil {
		return nil, err
	}
	moms, err := openCollection[domain.MinutesOfMeeting](dir, "moms")
	if err != nil {
		return nil, err
	}
	tasks, err := openCollection[domain.Task](dir, "tasks")
	if err != nil {
		return nil, err
	}
	return &Store{
		Departments: departments,
		Meetings:    meetings,
		MOMs:        moms,
		Tasks:       tasks,
	}, nil
}
