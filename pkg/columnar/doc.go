// Package columnar groups structured columns into tables and snapshots them.
//
// # Overview
//
// A Table is the minimal frame handed to persistence: an ordered set of
// named structured.Buffer columns that all have the same number of rows.
// Each column keeps its own layout, so one table can mix Bernoulli,
// log-normal and categorical columns.
//
// # Snapshots
//
// EncodeSnapshot writes a table as raw little-endian records plus a JSON
// header naming each column's canonical dtype, compressed with any algorithm
// from the compression package. DecodeSnapshot resolves dtype names through
// a structured.Registry, so the registry must know every dtype that appears
// in the snapshot:
//
//	reg := structured.NewRegistry()
//	if err := dist.RegisterBuiltins(reg); err != nil {
//	    return err
//	}
//	table, err := columnar.DecodeSnapshot(f, reg)
//
// Snapshots are lossless, including NaN payloads.
//
// # Thread Safety
//
// The table's column set is guarded by a lock. The buffers themselves are
// not: concurrent writes to a column must be serialized by the caller.
package columnar
