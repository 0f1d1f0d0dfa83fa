// Package sstable implements the binary sorted run format. A table is an
// immutable, ordered sequence of records written in one sequential pass.
//
// The format includes:
//   - A header with magic number and version
//   - A sequence of tagged records in non-decreasing order
//   - A trailer with the record count and a footer magic number
//
// Key features:
//   - Immutable: Once closed, a table is never modified
//   - Sorted: The writer rejects out-of-order records with ErrWriteError
//   - Sequential: No seeking, so tables can sit behind a compressor
//   - Verified: The reader checks ordering and the trailer count
//
// Basic usage:
//
//	writer, err := sstable.OpenWriter(file, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range sorted {
//	    if err := writer.Write(rec); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	writer.Close()
//
//	reader, err := sstable.OpenReader(file, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    rec, err := reader.Read()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// File Format:
//   - Header (16 bytes):
//   - Magic number (8 bytes, "SSTB" in hex)
//   - Format version (8 bytes)
//   - Records:
//   - Tag 0x01 (1 byte) followed by the value (8 bytes, little endian)
//   - Trailer (17 bytes):
//   - Tag 0x00 (1 byte)
//   - Record count (8 bytes)
//   - Magic number (8 bytes, "ENDB" in hex)
package sstable
