// Package services implements the driving port interfaces.
// Services contain the core business logic: the bucketing matcher, the
// merge policy and the aggregation pipeline that orchestrates calls to
// driven ports (fetchers and stores).
//
// Everything here is pure Go over in-memory collections; the only I/O
// happens through the ports.
package services
