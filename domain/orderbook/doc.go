// Package orderbook implements the in-memory matching core for a
// single instrument. It maintains two red-black trees of FIFO price
// levels (bids and asks) and drains crossed state under strict
// price/time priority: best price matches first, equal prices match in
// construction-sequence order.
//
// The package holds no locks and starts no goroutines. Serialization
// of admissions is the caller's job; the service layer owns both sides
// through a single writer goroutine.
package orderbook
