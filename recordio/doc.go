// Package recordio implements the record codecs used for input files, sorted
// runs and the merged stream.
//
// Three encodings are provided:
//   - Text: one canonical decimal number per line. This is also the input format.
//   - CBOR: one CBOR integer data item per record.
//   - Binary primitives (BinaryWriter, BinaryReader) used by the sstable package.
//
// Every reader implements Reader and returns io.EOF at the end of the stream.
// Every writer implements Writer. Malformed text surfaces as *record.ParseError
// carrying the offending line number.
//
// Basic usage:
//
//	var buf bytes.Buffer
//	w := recordio.NewTextWriter(&buf)
//	if err := recordio.WriteRecords(w, 3, 1, 2); err != nil {
//	    log.Fatal(err)
//	}
//
//	for rec, err := range recordio.Seq(recordio.NewTextReader(&buf)) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(rec)
//	}
package recordio
