// Package selftest runs the built in end to end checks.
//
// Two scenarios are generated: a small hand written set and a large set
// counting down from 200000 with a few values appended again. Both must
// report exactly 8, 9, 144, 325, 438 and 9999. Each scenario yields two
// cases, one for the size of the report and one for its content and order,
// printed as
//
//	Test Case A (Correct array size, small number set): Passed
package selftest
