package shader

import (
	"fmt"
)

const (
	// WordSize is the size in bytes of one SPIR-V instruction word.
	WordSize = 4
	// Magic is the first word of every SPIR-V module.
	Magic uint32 = 0x07230203

	headerWords = 5
)

// BytesToCode packs a little-endian SPIR-V byte stream into instruction words,
// checking that it is a whole number of words and starts with a SPIR-V header.
func BytesToCode(b []byte) ([]uint32, error) {
	if len(b) == 0 {
		return nil, &ModuleLoadError{Reason: "empty binary"}
	}
	if len(b)%WordSize != 0 {
		return nil, &ModuleLoadError{Reason: fmt.Sprintf("binary length %d is not a multiple of %d", len(b), WordSize)}
	}
	if len(b) < headerWords*WordSize {
		return nil, &ModuleLoadError{Reason: fmt.Sprintf("binary length %d is shorter than the SPIR-V header", len(b))}
	}

	byteCode := make([]uint32, len(b)/WordSize)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * WordSize
		byteCode[i] = uint32(b[byteIndex]) |
			uint32(b[byteIndex+1])<<8 |
			uint32(b[byteIndex+2])<<16 |
			uint32(b[byteIndex+3])<<24
	}

	if byteCode[0] != Magic {
		return nil, &ModuleLoadError{Reason: fmt.Sprintf("bad magic number 0x%08x", byteCode[0])}
	}

	return byteCode, nil
}

// CodeToBytes is the inverse of BytesToCode.
func CodeToBytes(code []uint32) []byte {
	b := make([]byte, len(code)*WordSize)
	for i, word := range code {
		b[i*WordSize] = byte(word)
		b[i*WordSize+1] = byte(word >> 8)
		b[i*WordSize+2] = byte(word >> 16)
		b[i*WordSize+3] = byte(word >> 24)
	}
	return b
}
