// Package record defines the value type flowing through the duplicate finder:
// a signed 64-bit integer read from one line of decimal text.
//
// Records are written and reported in their canonical decimal form, so
// "007" and "7" are the same record. They are always ordered numerically,
// never lexically: "9" orders before "10".
//
// Compare is the one ordering function of the module. The chunk sorter uses it
// to order in-memory chunks and the merger uses it to order run cursors.
//
// Basic usage:
//
//	r, err := record.ParseString("144")
//	if err != nil {
//	    var pe *record.ParseError
//	    if errors.As(err, &pe) {
//	        log.Fatalf("bad input on line %d", pe.Line)
//	    }
//	}
//	fmt.Println(r.String())
package record
