package fieldsort

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/fieldsort/codec"
	"github.com/hupe1980/fieldsort/internal/compress"
	"github.com/hupe1980/fieldsort/internal/valueindex"
)

// Snapshot layout:
//
//	magic "FSRT" | version u8 | compression u8 | codec name len u8 | codec name | block
//
// The block uses the internal/compress header and holds the codec encoding
// of snapshotPayload.
const (
	snapshotMagic   = "FSRT"
	snapshotVersion = 1
)

type snapshotGroup[V cmp.Ordered] struct {
	Value V      `json:"v"`
	Docs  []byte `json:"d"`
}

type snapshotPayload[V cmp.Ordered] struct {
	Name   string             `json:"name"`
	Groups []snapshotGroup[V] `json:"groups"`
}

// MarshalBinary encodes the field into a snapshot using the configured
// codec and compression.
func (f *FieldIndex[V]) MarshalBinary() ([]byte, error) {
	payload := snapshotPayload[V]{Name: f.name}

	f.mu.RLock()
	payload.Groups = make([]snapshotGroup[V], 0, f.ix.Cardinality())
	for v, docs := range f.ix.Groups() {
		b, err := docs.ToBytes()
		if err != nil {
			f.mu.RUnlock()
			return nil, fmt.Errorf("encode group: %w", err)
		}
		payload.Groups = append(payload.Groups, snapshotGroup[V]{Value: v, Docs: b})
	}
	f.mu.RUnlock()

	c := f.opts.codec
	raw, err := c.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %s: %w", f.name, err)
	}

	block, err := compress.Block(raw, f.opts.compression)
	if err != nil {
		return nil, fmt.Errorf("compress snapshot %s: %w", f.name, err)
	}

	name := c.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("codec name too long: %q", name)
	}

	var buf bytes.Buffer
	buf.Grow(len(snapshotMagic) + 3 + len(name) + len(block))
	buf.WriteString(snapshotMagic)
	buf.WriteByte(snapshotVersion)
	buf.WriteByte(byte(f.opts.compression))
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	buf.Write(block)

	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the content of the field with a snapshot
// produced by MarshalBinary. On error the field is left unchanged.
func (f *FieldIndex[V]) UnmarshalBinary(data []byte) error {
	ix, err := f.decodeSnapshot(data)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.ix = ix
	f.mu.Unlock()
	return nil
}

func (f *FieldIndex[V]) decodeSnapshot(data []byte) (*valueindex.Index[V], error) {
	headerLen := len(snapshotMagic) + 3
	if len(data) < headerLen || string(data[:len(snapshotMagic)]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorruptSnapshot)
	}
	data = data[len(snapshotMagic):]

	if data[0] != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, data[0])
	}
	ct := compress.Type(data[1])
	if !ct.Valid() {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptSnapshot, data[1])
	}
	nameLen := int(data[2])
	data = data[3:]
	if len(data) < nameLen {
		return nil, fmt.Errorf("%w: truncated header", ErrCorruptSnapshot)
	}
	codecName := string(data[:nameLen])
	data = data[nameLen:]

	c, ok := codec.ByName(codecName)
	if !ok {
		if f.opts.codec.Name() != codecName {
			return nil, fmt.Errorf("%w: unknown codec %q", ErrCorruptSnapshot, codecName)
		}
		c = f.opts.codec
	}

	raw, err := compress.Unblock(data, ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	var payload snapshotPayload[V]
	if err := c.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if payload.Name != f.name {
		return nil, fmt.Errorf("%w: snapshot of field %q loaded into %q", ErrCorruptSnapshot, payload.Name, f.name)
	}

	ix := valueindex.New[V]()
	for i, g := range payload.Groups {
		if isNaN(g.Value) {
			return nil, fmt.Errorf("%w: NaN value", ErrCorruptSnapshot)
		}
		if i > 0 && !cmp.Less(payload.Groups[i-1].Value, g.Value) {
			return nil, fmt.Errorf("%w: values out of order", ErrCorruptSnapshot)
		}

		docs := roaring.New()
		if err := docs.UnmarshalBinary(g.Docs); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
		}
		if docs.IsEmpty() {
			return nil, fmt.Errorf("%w: empty group", ErrCorruptSnapshot)
		}

		it := docs.Iterator()
		for it.HasNext() {
			docid := it.Next()
			if !ix.Insert(docid, g.Value) {
				return nil, fmt.Errorf("%w: document %d in more than one group", ErrCorruptSnapshot, docid)
			}
		}
	}
	return ix, nil
}
