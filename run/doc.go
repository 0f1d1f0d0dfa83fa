// Package run persists sorted runs and reads them back through cursors.
//
// A run is written once in ascending order, read once, then deleted. Runs live
// in a Storage (see storage/local and storage/memory) and are encoded with one
// of the formats text, sstable or cbor, optionally wrapped in zstd or s2
// compression.
//
// Cursor is the pull-based view the merger works with: Peek returns the head,
// Advance consumes it and loads the next record, Exhausted reports the end.
// A cursor releases its run (closes and deletes it) exactly once, either when
// it runs dry or when Close is called on an abort path.
//
// Basic usage:
//
//	h, err := run.WriteAll(ctx, store, "run-000000.txt", run.DefaultOptions(), 1, 2, 2, 7)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c, err := run.OpenCursor(ctx, store, h, run.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//	for !c.Exhausted() {
//	    fmt.Println(c.Peek())
//	    c.Advance()
//	}
//	if err := c.Err(); err != nil {
//	    log.Fatal(err)
//	}
package run
