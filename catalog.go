package fieldsort

import (
	"cmp"
	"context"
	"encoding"
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/fieldsort/blobstore"
	"github.com/hupe1980/fieldsort/internal/resource"
	"golang.org/x/sync/errgroup"
)

// SnapshotExt is the blob name suffix of field snapshots.
const SnapshotExt = ".fsrt"

// Field is the type-erased view of a FieldIndex used by Catalog.
type Field interface {
	Name() string
	Len() int
	Has(docid uint32) bool
	Unindex(docid uint32)
	Clear()
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

var _ Field = (*FieldIndex[string])(nil)

// Catalog is a named collection of fields that are unindexed and persisted
// together.
type Catalog struct {
	mu     sync.RWMutex
	fields map[string]Field

	logger *Logger
	rc     *resource.Controller
}

// NewCatalog creates an empty catalog.
//
// Snapshot behavior is tuned with WithSnapshotConcurrency,
// WithSnapshotIOLimit and WithSnapshotMemoryLimit.
func NewCatalog(optFns ...Option) *Catalog {
	opts := applyOptions(optFns)
	return &Catalog{
		fields: make(map[string]Field),
		logger: opts.logger,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:       opts.snapshotMemoryLimit,
			MaxConcurrentSnapshots: opts.snapshotConcurrency,
			IOLimitBytesPerSec:     opts.snapshotIOLimit,
		}),
	}
}

// Register adds f to the catalog.
func (c *Catalog) Register(f Field) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.fields[f.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrFieldExists, f.Name())
	}
	c.fields[f.Name()] = f
	return nil
}

// Field returns the field registered under name.
func (c *Catalog) Field(name string) (Field, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	return f, nil
}

// FieldOf returns the field registered under name as a *FieldIndex[V].
// A field of another value type is reported as not found.
func FieldOf[V cmp.Ordered](c *Catalog, name string) (*FieldIndex[V], error) {
	f, err := c.Field(name)
	if err != nil {
		return nil, err
	}
	typed, ok := f.(*FieldIndex[V])
	if !ok {
		return nil, fmt.Errorf("%w: %s has value type %T", ErrFieldNotFound, name, f)
	}
	return typed, nil
}

// Names returns the registered field names in ascending order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.fields))
	for name := range c.fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Unindex removes docid from every field.
func (c *Catalog) Unindex(docid uint32) {
	for _, f := range c.snapshotFields() {
		f.Unindex(docid)
	}
}

// Clear removes every document from every field.
func (c *Catalog) Clear() {
	for _, f := range c.snapshotFields() {
		f.Clear()
	}
}

func (c *Catalog) snapshotFields() []Field {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fields := make([]Field, 0, len(c.fields))
	for _, f := range c.fields {
		fields = append(fields, f)
	}
	slices.SortFunc(fields, func(a, b Field) int { return cmp.Compare(a.Name(), b.Name()) })
	return fields
}

// Save writes a snapshot of every field to store, one blob per field named
// after the field with SnapshotExt appended. Fields are saved concurrently.
func (c *Catalog) Save(ctx context.Context, store blobstore.Store) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, f := range c.snapshotFields() {
		g.Go(func() error {
			if err := c.rc.AcquireSnapshot(ctx); err != nil {
				return err
			}
			defer c.rc.ReleaseSnapshot()

			n, err := c.saveField(ctx, store, f)
			c.logger.LogSnapshot(ctx, "save", f.Name(), n, err)
			return err
		})
	}

	return g.Wait()
}

func (c *Catalog) saveField(ctx context.Context, store blobstore.Store, f Field) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := f.MarshalBinary()
	if err != nil {
		return 0, err
	}
	if err := c.rc.AcquireIO(ctx, len(data)); err != nil {
		return 0, err
	}
	if err := store.Put(ctx, f.Name()+SnapshotExt, data); err != nil {
		return 0, fmt.Errorf("save field %s: %w", f.Name(), err)
	}
	return len(data), nil
}

// Load replaces the content of every registered field with its snapshot in
// store. Fields are loaded concurrently. A field without a snapshot fails
// with an error satisfying errors.Is(err, blobstore.ErrNotFound); fields
// that loaded before the failure keep their new content.
func (c *Catalog) Load(ctx context.Context, store blobstore.Store) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, f := range c.snapshotFields() {
		g.Go(func() error {
			if err := c.rc.AcquireSnapshot(ctx); err != nil {
				return err
			}
			defer c.rc.ReleaseSnapshot()

			n, err := c.loadField(ctx, store, f)
			c.logger.LogSnapshot(ctx, "load", f.Name(), n, err)
			return err
		})
	}

	return g.Wait()
}

func (c *Catalog) loadField(ctx context.Context, store blobstore.Store, f Field) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	blob, err := store.Open(ctx, f.Name()+SnapshotExt)
	if err != nil {
		return 0, fmt.Errorf("load field %s: %w", f.Name(), err)
	}
	defer blob.Close()

	size := blob.Size()
	if err := c.rc.AcquireMemory(ctx, size); err != nil {
		return 0, fmt.Errorf("load field %s: %w", f.Name(), err)
	}
	defer c.rc.ReleaseMemory(size)

	if err := c.rc.AcquireIO(ctx, int(size)); err != nil {
		return 0, err
	}

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return 0, fmt.Errorf("load field %s: %w", f.Name(), err)
	}

	if err := f.UnmarshalBinary(data); err != nil {
		return 0, fmt.Errorf("load field %s: %w", f.Name(), err)
	}
	return len(data), nil
}
