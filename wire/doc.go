// Package wire implements the binary encoding used by the Kafka request/response
// protocol.
//
// The package is deliberately independent of any transport. It knows how to turn
// a message declaration into bytes and back, for a given protocol version and wire
// mode, and nothing else.
//
// # Wire Modes
//
// Every message can be encoded in one of two modes:
//
//   - Standard: strings carry an int16 length, byte blobs and arrays an int32
//     length, and -1 denotes null.
//   - Compact (also called "flexible"): lengths are unsigned varints holding
//     length+1, so 0 denotes null and 1 denotes empty. Every structure ends with a
//     tagged field buffer.
//
// Fixed width integers are big-endian in both modes.
//
// # Declaring Messages
//
// A message is a Go struct implementing Schema. Fields returns the ordered field
// table, binding pointers into the struct:
//
//	type HeartbeatRequest struct {
//	    GroupID         string
//	    GenerationID    int32
//	    MemberID        string
//	    GroupInstanceID *string
//	    Tags            wire.TaggedFields
//	}
//
//	func (r *HeartbeatRequest) Fields() []wire.Field {
//	    return []wire.Field{
//	        wire.F("group_id", wire.String(&r.GroupID)),
//	        wire.F("generation_id", wire.Int32(&r.GenerationID)),
//	        wire.F("member_id", wire.String(&r.MemberID)),
//	        wire.F("group_instance_id", wire.NullableString(&r.GroupInstanceID)).Since(3),
//	        wire.Tagged(&r.Tags),
//	    }
//	}
//
// The order of the table is the wire order. A single walker (Encode and Decode)
// applies the table for every version and both modes: a field whose version range
// excludes the active version is neither written nor read, and the tagged buffer is
// only present in compact mode.
//
// Fields that must be supplied whenever their version range is active are declared
// with Versioned and Opt. Encoding such a field while it is unset is a programming
// error and panics with a *SchemaError.
//
// # Errors
//
// Decoding failures are reported as *DecodeError values carrying the dotted field
// path. They wrap ErrTruncatedInput when the buffer ends before a declared length,
// and ErrInvalidEncoding for malformed content (invalid UTF-8, an out of range
// varint, an unknown enum value or a null where null is not allowed).
//
//	err := wire.Unmarshal(body, &resp, version, compact)
//	if errors.Is(err, wire.ErrTruncatedInput) {
//	    // the frame was shorter than its content
//	}
package wire
