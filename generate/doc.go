// Package generate writes files of numbers for trying out and testing the
// duplicate search.
//
//   - Random draws values between 1 and 9999999.
//   - Sequential counts down from a maximum and appends chosen duplicates.
//   - Lines writes values verbatim.
//
// File wraps any of them with a buffered, truncating file writer:
//
//	err := generate.File("numbers.txt", func(w io.Writer) error {
//	    return generate.Random(w, 100000, nil)
//	})
package generate
