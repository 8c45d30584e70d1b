/*
Package reloc builds relocatable, zero-copy archives from in-memory values.

An archive is a flat little-endian byte buffer. Every reference inside it is
stored as a signed offset from the referencing field's own position, so the
buffer can be moved, mapped or copied without fixups:

	+----------------------+  payloads, written first (strings, word arrays,
	| nested payloads      |  entry and bucket arrays)
	+----------------------+
	| nested records       |  fixed-size records of inner values
	+----------------------+
	| root record          |  last Shape.Size bytes of the buffer
	+----------------------+

Values are archived through an Adapter in two phases:

 1. Serialize writes whatever the value points to and returns a resolver
    holding the positions it wrote at. It is the only fallible phase.
 2. Resolve receives the final position of the record itself and writes the
    record bytes (relative offsets, lengths) into a caller-provided slot.

The split exists because a record's offsets depend on two positions that are
never known together during a single top-down pass: the payload is written
before the record, but the record's address is decided by its parent.

Scalar conventions:

	archived usize   uint32 LE   lengths, counts
	archived isize   int32  LE   relative offsets (target - field position)

Archives are bounded by sink.MaxArchiveSize so that no offset can overflow.

The concrete adapters live in pkg/asmap (pairs archived as a hash map) and
pkg/asbitvec (bit vectors archived as word arrays).
*/
package reloc
