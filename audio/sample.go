// Package audio implements the audio reader chain: sample buffer
// primitives and the monotone transformations (format, channel, rate,
// volume) that bridge a track supplier's decoded output to a node's
// negotiated output format (§4.1).
package audio

import (
	"encoding/binary"
	"math"

	"github.com/zsiec/playcore/format"
)

// fullScale returns the positive and negative full-scale magnitudes used to
// normalize a sample of the given kind to a canonical signed range. The
// negative full scale is clamped to match the positive one (e.g. int16's
// -32768 is never used as a divisor) so that float 1.0 round-trips exactly
// and no asymmetric overflow occurs in either direction.
func fullScale(k format.SampleKind) float64 {
	switch k {
	case format.Int32:
		return 0x7FFFFFFF
	case format.Int16:
		return 32767
	case format.Uint8, format.Int8:
		return 127
	default: // Float32
		return 1
	}
}

// clampNormalized clamps a canonical sample value to [-1, 1].
func clampNormalized(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// ReadNormalized reads one sample of the given kind, byte order, at buf[0:],
// and returns it normalized to a canonical [-1, 1] range.
func ReadNormalized(k format.SampleKind, order format.ByteOrder, buf []byte) float64 {
	scale := fullScale(k)
	switch k {
	case format.Float32:
		var bits uint32
		if order == format.BigEndian {
			bits = binary.BigEndian.Uint32(buf)
		} else {
			bits = binary.LittleEndian.Uint32(buf)
		}
		return clampNormalized(float64(math.Float32frombits(bits)))
	case format.Int32:
		var u uint32
		if order == format.BigEndian {
			u = binary.BigEndian.Uint32(buf)
		} else {
			u = binary.LittleEndian.Uint32(buf)
		}
		v := int32(u)
		return clampNormalized(float64(v) / scale)
	case format.Int16:
		var u uint16
		if order == format.BigEndian {
			u = binary.BigEndian.Uint16(buf)
		} else {
			u = binary.LittleEndian.Uint16(buf)
		}
		v := int16(u)
		return clampNormalized(float64(v) / scale)
	case format.Uint8:
		return clampNormalized((float64(buf[0]) - 128) / scale)
	case format.Int8:
		return clampNormalized(float64(int8(buf[0])) / scale)
	default:
		return 0
	}
}

// WriteNormalized writes a canonical [-1, 1] sample value into buf[0:] in
// the given sample kind and byte order.
func WriteNormalized(k format.SampleKind, order format.ByteOrder, v float64, buf []byte) {
	v = clampNormalized(v)
	scale := fullScale(k)
	switch k {
	case format.Float32:
		bits := math.Float32bits(float32(v))
		if order == format.BigEndian {
			binary.BigEndian.PutUint32(buf, bits)
		} else {
			binary.LittleEndian.PutUint32(buf, bits)
		}
	case format.Int32:
		iv := roundSigned(v * scale)
		if iv > 0x7FFFFFFF {
			iv = 0x7FFFFFFF
		}
		if iv < -0x7FFFFFFF {
			iv = -0x7FFFFFFF
		}
		if order == format.BigEndian {
			binary.BigEndian.PutUint32(buf, uint32(int32(iv)))
		} else {
			binary.LittleEndian.PutUint32(buf, uint32(int32(iv)))
		}
	case format.Int16:
		iv := roundSigned(v * scale)
		if iv > 32767 {
			iv = 32767
		}
		if iv < -32767 {
			iv = -32767
		}
		if order == format.BigEndian {
			binary.BigEndian.PutUint16(buf, uint16(int16(iv)))
		} else {
			binary.LittleEndian.PutUint16(buf, uint16(int16(iv)))
		}
	case format.Uint8:
		iv := roundSigned(v*scale) + 128
		if iv > 255 {
			iv = 255
		}
		if iv < 0 {
			iv = 0
		}
		buf[0] = byte(iv)
	case format.Int8:
		iv := roundSigned(v * scale)
		if iv > 127 {
			iv = 127
		}
		if iv < -127 {
			iv = -127
		}
		buf[0] = byte(int8(iv))
	}
}

// roundSigned rounds half-away-from-zero, matching the spec's "rounding
// (add 0.5 / 0.0 depending on sign handling)" for integer sample writes.
func roundSigned(v float64) int64 {
	if v >= 0 {
		return int64(v + 0.5)
	}
	return int64(v - 0.5)
}

// MidValue returns the silence (mid-scale) byte pattern for one sample of
// the given kind/order: 0.0 for signed/float kinds, the re-centered
// midpoint (128) for uint8.
func MidValue(k format.SampleKind, order format.ByteOrder, buf []byte) {
	if k == format.Uint8 {
		buf[0] = 128
		return
	}
	WriteNormalized(k, order, 0, buf)
}
