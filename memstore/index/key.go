// Package index implements the unique and multi index flavours over
// Value keys, plus a patricia-trie prefix index for string-valued
// attributes, mirroring the teacher's storage/index.go contract (Build/
// Drop/point-lookup) generalized to FactorDB's Value universe.
package index

import (
	"encoding/binary"
	"math"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/value"
)

// tag bytes distinguish variants so e.g. String("1") and Int(1) never
// collide in the encoded key space.
const (
	tagUnit byte = iota
	tagBoolFalse
	tagBoolTrue
	tagNumeric
	tagString
	tagBytes
	tagList
	tagMap
	tagID
)

// Key returns a canonical byte-string encoding of v suitable for use as a
// Go map key. Numeric values (Int/UInt/Float) that compare equal under
// value.Value.Compare encode identically, so e.g. Int(10) and UInt(10)
// collide in the same index bucket the way spec §8 scenario 2 requires
// ("Select(test/int==10) returns both").
func Key(v value.Value) string {
	buf := make([]byte, 0, 16)
	switch x := v.(type) {
	case value.Unit:
		return string(tagUnit)
	case value.Bool:
		if x {
			return string(tagBoolTrue)
		}
		return string(tagBoolFalse)
	case value.Int:
		return numericKey(float64(x), int64(x), true)
	case value.UInt:
		return numericKey(float64(x), int64(x), true)
	case value.Float:
		return numericKey(float64(x), 0, false)
	case value.String:
		buf = append(buf, tagString)
		return string(append(buf, x...))
	case value.Bytes:
		buf = append(buf, tagBytes)
		return string(append(buf, x...))
	case value.List:
		buf = append(buf, tagList)
		for _, item := range x {
			k := Key(item)
			var lenBuf [8]byte
			binary.BigEndian.PutUint64(lenBuf[:], uint64(len(k)))
			buf = append(buf, lenBuf[:]...)
			buf = append(buf, k...)
		}
		return string(buf)
	case value.Map:
		buf = append(buf, tagMap)
		for _, e := range x {
			buf = append(buf, Key(e.Key)...)
			buf = append(buf, 0)
			buf = append(buf, Key(e.Val)...)
		}
		return string(buf)
	case value.IdVal:
		buf = append(buf, tagID)
		return string(append(buf, id.Id(x).Bytes()...))
	default:
		return string(tagUnit)
	}
}

// numericKey encodes a numeric value so that Int/UInt/Float values with
// the same mathematical value share a key whenever that value is exactly
// representable as an int64 (the common case for indexed equality
// lookups); otherwise it falls back to the float64 bit pattern.
func numericKey(f float64, asInt int64, isIntLike bool) string {
	buf := make([]byte, 9)
	buf[0] = tagNumeric
	if isIntLike || (f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64) {
		if isIntLike {
			binary.BigEndian.PutUint64(buf[1:], uint64(asInt)+(1<<63))
		} else {
			binary.BigEndian.PutUint64(buf[1:], uint64(int64(f))+(1<<63))
		}
		return string(buf)
	}
	bits := math.Float64bits(f)
	if f < 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	binary.BigEndian.PutUint64(buf[1:], bits)
	return string(buf)
}
