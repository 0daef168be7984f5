// Package fieldsort provides an embedded field index that sorts document
// sets by a per-document value, choosing the sort algorithm adaptively.
//
// A FieldIndex maps each document (a uint32 docid) to one ordered value
// (any cmp.Ordered type) and keeps the inverse mapping from every distinct
// value to a Roaring bitmap of documents. Given a candidate set, typically
// the result of a query, Sort returns the candidates ordered by their value.
//
// # Quick Start
//
//	ctx := context.Background()
//	title := fieldsort.New[string]("title")
//	_ = title.Index(1, "a")
//	_ = title.Index(2, "b")
//	_ = title.Index(3, "b")
//	_ = title.Index(4, "c")
//
//	ids, _ := title.SortSlice(ctx, docset.NewBitmap(1, 2, 3, 4))
//	// ids == [1 2 3 4]
//
//	ids, _ = title.SortSlice(ctx, docset.NewBitmap(1, 2, 3, 4),
//	    fieldsort.WithReverse(), fieldsort.WithLimit(2))
//	// ids == [4 3]
//
// # Sort Strategies
//
// Three algorithms are available (see package strategy):
//
//   - ScanForward walks the index in ascending value order and keeps the
//     candidates it meets. Ascending only. Results stream incrementally.
//   - NBest keeps the best limit candidates in a bounded heap. Requires a limit.
//   - FullSort sorts all candidates by value.
//
// By default the algorithm is chosen from the number of candidates, the
// number of indexed documents and the limit. WithStrategy and
// WithStrategyName force one.
//
// # Ordering
//
// Candidates without a value are skipped. Documents sharing a value are
// ordered by docid: ascending sorts return them in ascending docid order,
// descending sorts in descending docid order. Every algorithm produces the
// same sequence for the same input.
//
// # Queries
//
// Apply builds candidate sets from the field itself:
//
//	cheap := price.Apply(fieldsort.AtMost(9.99))
//	ids, _ := title.SortSlice(ctx, cheap, fieldsort.WithLimit(20))
//
// # Persistence
//
// A Catalog groups fields and snapshots them to any blobstore.Store
// (local disk, memory, S3, MinIO):
//
//	cat := fieldsort.NewCatalog()
//	_ = cat.Register(title)
//	_ = cat.Save(ctx, blobstore.NewLocalStore("./snapshots"))
//
// Snapshots are compressed with LZ4 by default (see WithCompression) and
// encoded with codec.Default (see WithCodec).
//
// # Thread Safety
//
// FieldIndex and Catalog are safe for concurrent use. Sort sequences take
// the read lock only while they read the index and never while the caller's
// loop body runs, so the loop body may update the index. The order of the
// remaining results is then undefined; collect first with SortSlice when
// that matters.
package fieldsort
