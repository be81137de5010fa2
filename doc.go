// Package evidence implements a self-describing, encrypted record codec for
// forensic and telemetry evidence exchanged between a producer and a
// collector over an untrusted channel or file.
//
// # Overview
//
// A Record turns an in-memory event (an Info field map plus type-specific
// content) into a length-framed, block-cipher-encrypted byte sequence, and
// parses such a sequence back into fields and content.
//
//	registry := evidence.NewDefaultRegistry()
//
//	rec := evidence.NewRecord(key, registry, evidence.Info{
//	    evidence.FieldDeviceID: "host1",
//	    evidence.FieldContent:  [][]byte{[]byte("ping")},
//	})
//	if err := rec.Generate("device"); err != nil {
//	    return err
//	}
//
//	parsed := evidence.NewRecord(key, registry, nil)
//	if err := parsed.Deserialize(rec.Binary()); err != nil {
//	    return err
//	}
//
// A Record is driven exactly once, by Generate or by Deserialize. The key
// and the Registry are read-only and may be shared by any number of records
// on any number of goroutines.
//
// # Record Format
//
// All integers are unsigned 32-bit little-endian:
//
//	record   := u32(headerSealedLen) headerSealed chunk*
//	header   := u32(version) u32(typeId) u32(timeHigh) u32(timeLow)
//	            u32(deviceLen) u32(userLen) u32(sourceLen) u32(addlLen)
//	            device user source additional
//	chunk    := u32(trueLen) sealed(AlignedLength(trueLen) bytes)
//
// The version is always VersionID (2008121901). The acquired time is a
// Windows filetime: 100ns ticks since 1601-01-01 split into two words.
// Identifiers are UTF-16LE.
//
// # Block Alignment
//
// Regions are padded with FillerByte to a multiple of 16 bytes and sealed by
// an EncryptionProvider that adds no padding of its own. The true length of
// every region travels in cleartext next to it, because filler cannot be
// told apart from data once encrypted.
//
// # Record Types
//
// Each record is bound to one TypeBehavior looked up in a Registry, by name
// when generating and by wire id when parsing. A behavior may add a
// type-specific header, decode it back, and produce content chunks. The
// default registry holds the device, call and info types.
//
// # Security Considerations
//
// The format carries no authentication tag. A record opened with the wrong
// key usually fails the version check, but integrity is never verified.
package evidence
