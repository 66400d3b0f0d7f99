// Package words supplies random English search terms.
//
// The default corpus is embedded in the binary and loaded once, on first
// use. A Corpus is immutable after loading, so one instance is shared by
// every virtual user without locking.
package words
