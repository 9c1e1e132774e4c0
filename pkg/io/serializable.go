package io

// Serializable defines the binary encoding/decoding interface. Implementors
// report errors via the BinWriter/BinReader's Err field rather than a
// direct return value, so that long chains of Read/Write calls can be
// checked once at the end.
type Serializable interface {
	EncodeBinary(*BinWriter)
	DecodeBinary(*BinReader)
}

// encodable is the reflection counterpart of Serializable's write half,
// used by the generic-unaware BinWriter.WriteArray.
type encodable interface {
	EncodeBinary(*BinWriter)
}

// decodable is the reflection counterpart of Serializable's read half,
// used by the generic-unaware BinReader.ReadArray.
type decodable interface {
	DecodeBinary(*BinReader)
}
