// Package manifest encodes and decodes the persisted record of one chunk
// split run: an ordered list of (content key, size, level) triples
// sufficient to reconstruct the hash tree built by package tree.
//
// The wire format is hand-written on top of
// google.golang.org/protobuf/encoding/protowire rather than generated from
// a .proto file: one repeated message field (tag 1) of entries, each with
// a byte-string key (tag 1), a varint size (tag 2) and a varint level
// (tag 3). This keeps the dependency genuinely exercised without requiring
// a protoc run to produce generated code.
package manifest

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Entry is one chunk record: its content key, its original byte length,
// and its fan-out level as assigned by split.Chunk.Level.
type Entry struct {
	Key   []byte
	Size  uint64
	Level uint32
}

const (
	fieldEntries    = protowire.Number(1)
	fieldEntryKey   = protowire.Number(1)
	fieldEntrySize  = protowire.Number(2)
	fieldEntryLevel = protowire.Number(3)
)

// Encode serializes entries into the manifest wire format.
func Encode(entries []Entry) []byte {
	var out []byte
	for _, e := range entries {
		msg := encodeEntry(e)
		out = protowire.AppendTag(out, fieldEntries, protowire.BytesType)
		out = protowire.AppendBytes(out, msg)
	}
	return out
}

func encodeEntry(e Entry) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldEntryKey, protowire.BytesType)
	b = protowire.AppendBytes(b, e.Key)
	b = protowire.AppendTag(b, fieldEntrySize, protowire.VarintType)
	b = protowire.AppendVarint(b, e.Size)
	b = protowire.AppendTag(b, fieldEntryLevel, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Level))
	return b
}

// Decode parses the manifest wire format produced by Encode. Unknown
// fields within an entry are skipped, so additions are forward-compatible.
func Decode(data []byte) ([]Entry, error) {
	var entries []Entry
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		if num != fieldEntries || typ != protowire.BytesType {
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			data = data[m:]
			continue
		}
		msg, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		e, err := decodeEntry(msg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Entry{}, protowire.ParseError(n)
		}
		data = data[n:]
		switch num {
		case fieldEntryKey:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return Entry{}, protowire.ParseError(n)
			}
			e.Key = append([]byte(nil), v...)
			data = data[n:]
		case fieldEntrySize:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Entry{}, protowire.ParseError(n)
			}
			e.Size = v
			data = data[n:]
		case fieldEntryLevel:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Entry{}, protowire.ParseError(n)
			}
			e.Level = uint32(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return Entry{}, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return e, nil
}

// TotalSize sums the Size field of every entry, the total byte length of
// the original input the manifest describes.
func TotalSize(entries []Entry) uint64 {
	var total uint64
	for _, e := range entries {
		total += e.Size
	}
	return total
}
