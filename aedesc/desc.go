// Package aedesc implements the binary object-specifier protocol: building
// nested specifier records from resolved step chains, the flattened wire
// framing handed to the transport, and decoding reply descriptors into
// structured values.
package aedesc

import (
	"encoding/binary"
	"fmt"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/fourcc"
)

// Descriptor is one node of a descriptor tree: a four-byte type code with
// either a scalar payload or an auxiliary descriptor list. List descriptors
// keep their elements in Aux; record-like descriptors keep alternating
// key/value entries there.
type Descriptor struct {
	Type fourcc.Code
	Data []byte
	Aux  []Descriptor
}

func scalar(t fourcc.Code, data []byte) Descriptor {
	return Descriptor{Type: t, Data: data}
}

func keyword(code fourcc.Code) Descriptor {
	b := code.Bytes()
	return Descriptor{Type: typeKeyword, Data: b[:]}
}

func typeDesc(code fourcc.Code) Descriptor {
	b := code.Bytes()
	return Descriptor{Type: typeType, Data: b[:]}
}

func enumDesc(code fourcc.Code) Descriptor {
	b := code.Bytes()
	return Descriptor{Type: typeEnumerated, Data: b[:]}
}

// record builds a record-like descriptor from key/value pairs
func record(t fourcc.Code, pairs ...Descriptor) Descriptor {
	return Descriptor{Type: t, Aux: pairs}
}

func int32Desc(n int32) Descriptor {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(n))

	return scalar(typeSInt32, data)
}

func int64Desc(n int64) Descriptor {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, uint64(n))

	return scalar(typeSInt64, data)
}

func intDesc(n int64) Descriptor {
	if n >= -1<<31 && n < 1<<31 {
		return int32Desc(int32(n))
	}

	return int64Desc(n)
}

func textDesc(s string) Descriptor {
	return scalar(typeUTF8Text, []byte(s))
}

func ordinalDesc(code fourcc.Code) Descriptor {
	b := code.Bytes()
	return scalar(typeAbsoluteOrdinal, b[:])
}

func nullDesc() Descriptor {
	return Descriptor{Type: typeNull}
}

// Wire framing: each descriptor is its type code, a form octet (0 scalar,
// 1 aggregate), then either a big-endian length-prefixed payload or a
// big-endian count-prefixed run of framed children.
const (
	formScalar    = 0x00
	formAggregate = 0x01
)

// Flatten serializes a descriptor tree into the wire form the transport
// delivers to the target process
func Flatten(d Descriptor) []byte {
	return appendFlattened(nil, d)
}

func appendFlattened(buf []byte, d Descriptor) []byte {
	code := d.Type.Bytes()
	buf = append(buf, code[:]...)

	if len(d.Aux) == 0 {
		buf = append(buf, formScalar)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(d.Data)))
		buf = append(buf, d.Data...)

		return buf
	}

	buf = append(buf, formAggregate)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(d.Aux)))

	for _, child := range d.Aux {
		buf = appendFlattened(buf, child)
	}

	return buf
}

// Unflatten parses a wire payload back into a descriptor tree
func Unflatten(data []byte) (Descriptor, error) {
	d, rest, err := unflattenOne(data)
	if err != nil {
		return Descriptor{}, err
	}

	if len(rest) != 0 {
		return Descriptor{}, fmt.Errorf("%w: %d trailing bytes", osaquery.ErrTruncatedDescriptor, len(rest))
	}

	return d, nil
}

func unflattenOne(data []byte) (Descriptor, []byte, error) {
	if len(data) < 9 {
		return Descriptor{}, nil, fmt.Errorf("%w: header needs 9 bytes, have %d", osaquery.ErrTruncatedDescriptor, len(data))
	}

	d := Descriptor{Type: fourcc.FromBytes([4]byte(data[:4]))}
	form := data[4]
	size := binary.BigEndian.Uint32(data[5:9])
	rest := data[9:]

	if form == formScalar {
		if uint32(len(rest)) < size {
			return Descriptor{}, nil, fmt.Errorf("%w: payload needs %d bytes, have %d", osaquery.ErrTruncatedDescriptor, size, len(rest))
		}

		d.Data = append([]byte(nil), rest[:size]...)

		return d, rest[size:], nil
	}

	for range size {
		var (
			child Descriptor
			err   error
		)

		child, rest, err = unflattenOne(rest)
		if err != nil {
			return Descriptor{}, nil, err
		}

		d.Aux = append(d.Aux, child)
	}

	return d, rest, nil
}

// Field looks up a record entry by key, scanning the alternating key/value
// run. The second return reports whether the key was present.
func (d Descriptor) Field(key fourcc.Code) (Descriptor, bool) {
	for i := 0; i+1 < len(d.Aux); i += 2 {
		entry := d.Aux[i]
		if len(entry.Data) == 4 && fourcc.FromBytes([4]byte(entry.Data)) == key {
			return d.Aux[i+1], true
		}
	}

	return Descriptor{}, false
}
