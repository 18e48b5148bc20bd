package supernote

import (
	"bytes"
	"encoding/binary"
	"io"
	"unicode/utf8"
)

var endianess = binary.LittleEndian

const (
	// Size of the length prefix in front of every block.
	lengthFieldSize = 4
	// Size of the footer address stored at the end of the file.
	addressSize = 4
)

// readBlock reads the length-prefixed block stored at the given address:
// a 4-byte little-endian length followed by that many raw bytes.
// Address 0 is the null address; it yields no bytes and touches no I/O.
func readBlock(r io.ReadSeeker, address int64) ([]byte, error) {
	if address == 0 {
		return nil, nil
	}

	_, err := r.Seek(address, io.SeekStart)
	if err != nil {
		return nil, err
	}

	var length uint32
	err = binary.Read(r, endianess, &length)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, NewMalformedContainer("no length field at address %v", address)
		}
		return nil, err
	}

	if length == 0 {
		return []byte{}, nil
	}

	// Copy instead of a ReadFull into a pre-sized buffer: a corrupt
	// length field must not dictate the allocation size.
	var body bytes.Buffer
	n, err := io.CopyN(&body, r, int64(length))
	if err != nil {
		if err == io.EOF {
			return nil, NewMalformedContainer("block at address %v: expected %v bytes, got %v", address, length, n)
		}
		return nil, err
	}

	return body.Bytes(), nil
}

// readFooterAddress reads the footer block address stored in the final
// four bytes of the file.
func readFooterAddress(r io.ReadSeeker) (int64, error) {
	_, err := r.Seek(-addressSize, io.SeekEnd)
	if err != nil {
		return 0, NewMalformedContainer("file too small to hold a footer address")
	}

	var address uint32
	err = binary.Read(r, endianess, &address)
	if err != nil {
		return 0, err
	}

	return int64(address), nil
}

// decodeBlock turns the metadata block at the given address into params.
// Returns empty params if address is the null address.
func decodeBlock(r io.ReadSeeker, address int64) (Params, error) {
	if address == 0 {
		return newParams(), nil
	}

	data, err := readBlock(r, address)
	if err != nil {
		return Params{}, err
	}
	if !utf8.Valid(data) {
		return Params{}, NewMalformedContainer("block at address %v is not valid text", address)
	}

	return extractParameters(string(data)), nil
}
