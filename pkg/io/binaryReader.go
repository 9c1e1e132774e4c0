package io

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
)

// MaxArraySize is a maximum size of an array which can be decoded.
// It is taken from https://github.com/neo-project/neo/blob/master/neo/IO/Helper.cs#L130
const MaxArraySize = 0x1000000

// BinReader is a convenient wrapper around an io.Reader and err object.
// Used to simplify error handling when reading into a struct with many fields.
type BinReader struct {
	r   io.Reader
	Err error
}

// NewBinReaderFromIO makes a BinReader from io.Reader.
func NewBinReaderFromIO(ior io.Reader) *BinReader {
	return &BinReader{r: ior}
}

// NewBinReaderFromBuf makes a BinReader from byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	r := bytes.NewReader(b)
	return NewBinReaderFromIO(r)
}

// ReadU64LE reads a little-endian uint64 value from the underlying io.Reader.
func (r *BinReader) ReadU64LE() uint64 {
	var v uint64
	r.ReadLE(&v)
	return v
}

// ReadU32LE reads a little-endian uint32 value from the underlying io.Reader.
func (r *BinReader) ReadU32LE() uint32 {
	var v uint32
	r.ReadLE(&v)
	return v
}

// ReadU16LE reads a little-endian uint16 value from the underlying io.Reader.
func (r *BinReader) ReadU16LE() uint16 {
	var v uint16
	r.ReadLE(&v)
	return v
}

// ReadU16BE reads a big-endian uint16 value from the underlying io.Reader.
func (r *BinReader) ReadU16BE() uint16 {
	var v uint16
	r.ReadBE(&v)
	return v
}

// ReadB reads a byte from the underlying io.Reader.
func (r *BinReader) ReadB() byte {
	var v uint8
	r.ReadLE(&v)
	return v
}

// ReadBool reads a boolean value from the underlying io.Reader encoded as
// a byte with values of 0 or 1.
func (r *BinReader) ReadBool() bool {
	return r.ReadB() != 0
}

// ReadLE reads from the underlying io.Reader
// into the interface v in little-endian format.
func (r *BinReader) ReadLE(v interface{}) {
	if r.Err != nil {
		return
	}
	r.Err = binary.Read(r.r, binary.LittleEndian, v)
}

// ReadArray reads array into value which must be
// a pointer to a slice.
func (r *BinReader) ReadArray(t interface{}, maxSize ...int) {
	value := reflect.ValueOf(t)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Slice {
		panic(value.Type().String() + " is not a pointer to a slice")
	}

	if r.Err != nil {
		return
	}

	sliceType := value.Elem().Type()
	elemType := sliceType.Elem()
	isPtr := elemType.Kind() == reflect.Ptr

	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}

	lu := r.ReadVarUint()
	if lu > uint64(ms) {
		r.Err = fmt.Errorf("array is too big (%d)", lu)
		return
	}

	l := int(lu)
	arr := reflect.MakeSlice(sliceType, l, l)

	for i := 0; i < l; i++ {
		var elem reflect.Value
		if isPtr {
			elem = reflect.New(elemType.Elem())
			arr.Index(i).Set(elem)
		} else {
			elem = arr.Index(i).Addr()
		}

		el, ok := elem.Interface().(decodable)
		if !ok {
			panic(elemType.String() + "is not decodable")
		}

		el.DecodeBinary(r)
	}

	value.Elem().Set(arr)
}

// ReadArray reads a slice of T from r. It is a generic-based version of
// [BinReader.ReadArray] which works much faster.
func ReadArray[T Serializable](r *BinReader, maxSize ...int) []T {
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}

	lu := r.ReadVarUint()
	if lu > uint64(ms) {
		r.Err = fmt.Errorf("array is too big (%d)", lu)
		return nil
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()
	isPtr := typ.Kind() == reflect.Ptr

	arr := make([]T, lu)
	for i := range arr {
		if isPtr {
			arr[i] = reflect.New(typ.Elem()).Interface().(T)
		}
		arr[i].DecodeBinary(r)
		if r.Err != nil {
			return nil
		}
	}
	return arr
}

// ReadBE reads from the underlying io.Reader
// into the interface v in big-endian format.
func (r *BinReader) ReadBE(v interface{}) {
	if r.Err != nil {
		return
	}
	r.Err = binary.Read(r.r, binary.BigEndian, v)
}

// ReadVarUint reads a variable-length-encoded integer from the
// underlying reader.
func (r *BinReader) ReadVarUint() uint64 {
	if r.Err != nil {
		return 0
	}

	b := r.ReadB()

	if b == 0xfd {
		return uint64(r.ReadU16LE())
	}
	if b == 0xfe {
		return uint64(r.ReadU32LE())
	}
	if b == 0xff {
		return r.ReadU64LE()
	}

	return uint64(b)
}

// ReadBytes reads exactly len(buf) bytes from the underlying reader into buf.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}
	_, r.Err = io.ReadFull(r.r, buf)
}

// ReadVarBytes reads the next set of bytes from the underlying reader.
// ReadVarUint() is used to determine how large that slice is. An optional
// maxSize argument caps the maximum allowed length (MaxArraySize by default).
func (r *BinReader) ReadVarBytes(maxSize ...int) []byte {
	n := r.ReadVarUint()
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}
	if n > uint64(ms) {
		if r.Err == nil {
			r.Err = fmt.Errorf("byte-slice is too big (%d)", n)
		}
		return nil
	}
	b := make([]byte, n)
	r.ReadBytes(b)
	return b
}

// ReadString calls ReadVarBytes and casts the results as a string. An
// optional maxSize argument caps the maximum allowed length.
func (r *BinReader) ReadString(maxSize ...int) string {
	b := r.ReadVarBytes(maxSize...)
	return string(b)
}

// Error returns the current error, if any.
func (r *BinReader) Error() error {
	return r.Err
}

// SetError allows an error to be injected explicitly, short-circuiting
// subsequent reads.
func (r *BinReader) SetError(err error) {
	r.Err = err
}
