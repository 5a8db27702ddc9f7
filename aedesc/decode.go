package aedesc

import (
	"encoding/binary"
	"math"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/osaquery/osaquery/fourcc"
)

// longDateTimeEpoch is the protocol's date origin
var longDateTimeEpoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// Decode turns a reply descriptor into a structured value. It never fails:
// unknown type codes fall back to a string coercion attempt and finally to a
// bracketed rendering of the raw type code, so vendor-specific protocol
// extensions pass through instead of erroring.
func Decode(d Descriptor) Value {
	switch d.Type {
	case typeNull, typeMissingValue:
		return Null()

	case typeSInt16:
		if len(d.Data) < 2 {
			return fallback(d)
		}

		return Int(int64(int16(binary.LittleEndian.Uint16(d.Data))))

	case typeSInt32:
		if len(d.Data) < 4 {
			return fallback(d)
		}

		return Int(int64(int32(binary.LittleEndian.Uint32(d.Data))))

	case typeSInt64:
		if len(d.Data) < 8 {
			return fallback(d)
		}

		return Int(int64(binary.LittleEndian.Uint64(d.Data)))

	case typeUInt32:
		if len(d.Data) < 4 {
			return fallback(d)
		}

		return Int(int64(binary.LittleEndian.Uint32(d.Data)))

	case typeFloat32:
		if len(d.Data) < 4 {
			return fallback(d)
		}

		bits := binary.LittleEndian.Uint32(d.Data)

		return Float(float64(math.Float32frombits(bits)))

	case typeFloat64:
		if len(d.Data) < 8 {
			return fallback(d)
		}

		return Float(math.Float64frombits(binary.LittleEndian.Uint64(d.Data)))

	case typeUTF8Text:
		return String(string(d.Data))

	case typeUnicodeText:
		return String(decodeUTF16(d.Data))

	case typeLegacyText:
		return String(decodeMacRoman(d.Data))

	case typeBoolean:
		return Bool(len(d.Data) > 0 && d.Data[0] != 0)

	case typeTrue:
		return Bool(true)

	case typeFalse:
		return Bool(false)

	case typeLongDateTime:
		if len(d.Data) < 8 {
			return fallback(d)
		}

		seconds := int64(binary.LittleEndian.Uint64(d.Data))

		return Date(longDateTimeEpoch.Add(time.Duration(seconds) * time.Second))

	case typeAEList:
		return decodeList(d)

	case typeAERecord, typeObjectSpecifier:
		return decodeRecord(d)

	case typeType, typeEnumerated, typeKeyword, typeProperty, typeAbsoluteOrdinal:
		// type and enumerator codes decode to their four-character display
		// form rather than a numeric value
		if len(d.Data) == 4 {
			return String(fourcc.FromBytes([4]byte(d.Data)).String())
		}

		return fallback(d)

	default:
		return fallback(d)
	}
}

// decodeList recurses per element. The protocol indexes lists 1-based; the
// explicit zero-count check avoids an off-by-one on the lower bound.
func decodeList(d Descriptor) Value {
	count := len(d.Aux)
	if count == 0 {
		return List()
	}

	items := make([]Value, 0, count)
	for i := 1; i <= count; i++ {
		items = append(items, Decode(d.Aux[i-1]))
	}

	return List(items...)
}

// decodeRecord recurses per key/value pair, decoding each field's four-byte
// key into its display string form. A trailing unpaired entry is dropped.
func decodeRecord(d Descriptor) Value {
	fields := make([]Field, 0, len(d.Aux)/2)

	for i := 0; i+1 < len(d.Aux); i += 2 {
		key := d.Aux[i]

		display := key.Type.String()
		if len(key.Data) == 4 {
			display = fourcc.FromBytes([4]byte(key.Data)).String()
		}

		fields = append(fields, Field{Key: display, Value: Decode(d.Aux[i+1])})
	}

	return Value{Kind: KindRecord, Record: fields}
}

// fallback coerces unknown payloads to a string when they are valid UTF-8,
// otherwise renders the raw type code bracketed
func fallback(d Descriptor) Value {
	if len(d.Data) > 0 && utf8.Valid(d.Data) {
		return String(string(d.Data))
	}

	return String("«" + d.Type.String() + "»")
}

func decodeUTF16(data []byte) string {
	// honor a BOM when present, default to little-endian
	order := binary.ByteOrder(binary.LittleEndian)

	if len(data) >= 2 {
		switch {
		case data[0] == 0xfe && data[1] == 0xff:
			order = binary.BigEndian
			data = data[2:]
		case data[0] == 0xff && data[1] == 0xfe:
			data = data[2:]
		}
	}

	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, order.Uint16(data[i:]))
	}

	return string(utf16.Decode(units))
}

func decodeMacRoman(data []byte) string {
	runes := make([]rune, 0, len(data))
	for _, b := range data {
		runes = append(runes, charmap.Macintosh.DecodeByte(b))
	}

	return string(runes)
}
