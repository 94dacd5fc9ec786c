// Package domain defines the core business entities for teatrofeed.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies beyond text handling and defines the
// fundamental types:
//
//   - RawEvent: A per-source event record before deduplication
//   - CanonicalEvent: The merged representation of one real-world event
//   - FeedDocument: The published feed artifact
//   - RunRecord: The outcome of one aggregation run
//
// It also carries the pure identity functions the pipeline is built on:
// Normalise, Fingerprint and Similarity. Equal inputs always produce
// equal outputs; this determinism is what lets two independently-scraped
// strings collide.
//
// # Import Rules
//
//   - Can Import: Standard library and golang.org/x/text only
//   - Cannot Import: Any internal/ package, any adapter dependency
package domain
