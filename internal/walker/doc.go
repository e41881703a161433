// Package walker answers typed relation queries against model elements.
//
// The Walker is the only component that calls the relation methods of
// model.Element. It normalizes nil and invalid sources to empty results,
// keeps the repository's native order unless a sorted variant is used,
// and passes repository failures through unchanged.
package walker
