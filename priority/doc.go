// Package priority implements a generic binary heap. The ordering is
// determined by a user-provided comparison function that defines the priority
// relationship between values.
//
// Key features:
//   - Generic implementation supporting any element type
//   - O(log n) push and pop
//   - O(1) peek operations
//
// Basic usage:
//
//	// Create a min-heap
//	h := priority.NewHeap(func(a, b int) bool {
//	    return a < b
//	})
//
//	h.Push(5)
//	h.Push(3)
//	h.Push(7)
//
//	// Get highest priority item
//	if v, ok := h.Peek(); ok {
//	    fmt.Printf("Highest priority: %d\n", v)
//	}
//
//	// Remove and return highest priority item
//	for h.Len() > 0 {
//	    v, _ := h.Pop()
//	    fmt.Println(v)
//	}
//
// The heap keeps items in an array where each parent has higher priority
// than its children (as determined by the less function). The less function
// should return true if a has higher priority than b.
package priority
