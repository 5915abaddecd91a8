// Package service coordinates admission, matching, and trade emission.
// It owns the book through a single writer goroutine fed by an ordered
// unbounded inbox, which gives the same serialization guarantee as a
// mutex around "insert + match" without the lock.
package service
