// Package image implements the Pendragon binary image codec: the exact
// wire format that bridges the assembler and the virtual machine.
package image

import (
	"bytes"
	"encoding/binary"
	"io"
)

// MachineName is the only accepted machine-name field value.
const MachineName = "Pendragon"

// maxProgramName is the longest program name the writer will emit; longer
// names are silently truncated.
const maxProgramName = 32

// Version is a major.minor.revision triple, encoded as major(1B) +
// minor(1B) + revision(2B). The revision halfword is written high-byte
// first on the wire — the one field in the format that is not
// little-endian, called out explicitly because every other multi-byte
// field in this codec is.
type Version struct {
	Major    byte
	Minor    byte
	Revision uint16
}

// HeaderVersion is the only header version this codec understands.
var HeaderVersion = Version{Major: 1, Minor: 0, Revision: 0}

// MachineVersion is the only machine version this codec understands.
var MachineVersion = Version{Major: 1, Minor: 0, Revision: 0}

func (v Version) encode() [4]byte {
	var b [4]byte
	b[0] = v.Major
	b[1] = v.Minor
	b[2] = byte(v.Revision >> 8)
	b[3] = byte(v.Revision)
	return b
}

func decodeVersion(b [4]byte) Version {
	return Version{
		Major:    b[0],
		Minor:    b[1],
		Revision: uint16(b[2])<<8 | uint16(b[3]),
	}
}

// Header is the fixed preamble of a binary image.
type Header struct {
	HeaderSize     uint16
	HeaderVersion  Version
	MachineName    string
	MachineVersion Version
	ProgramName    string
}

// Image is a fully decoded binary image: its header plus the raw data and
// code segment bytes.
type Image struct {
	Header Header
	Data   []byte
	Code   []byte
}

// Write assembles a binary image from a program name and the data/code
// segment bytes, in the exact layout of spec.md section 3, and writes it
// to w. The program name is truncated to 32 bytes if longer.
func Write(w io.Writer, programName string, data, code []byte) error {
	if len(programName) > maxProgramName {
		programName = programName[:maxProgramName]
	}

	var body bytes.Buffer

	hv := HeaderVersion.encode()
	body.Write(hv[:])

	body.WriteByte(byte(len(MachineName)))
	body.WriteString(MachineName)

	mv := MachineVersion.encode()
	body.Write(mv[:])

	var nameLen [2]byte
	binary.LittleEndian.PutUint16(nameLen[:], uint16(len(programName)))
	body.Write(nameLen[:])
	body.WriteString(programName)

	headerSize := uint16(2 + body.Len())

	var out bytes.Buffer
	var sizeField [2]byte
	binary.LittleEndian.PutUint16(sizeField[:], headerSize)
	out.Write(sizeField[:])
	out.Write(body.Bytes())

	var dataLen [4]byte
	binary.LittleEndian.PutUint32(dataLen[:], uint32(len(data)))
	out.Write(dataLen[:])
	out.Write(data)

	var codeLen [4]byte
	binary.LittleEndian.PutUint32(codeLen[:], uint32(len(code)))
	out.Write(codeLen[:])
	out.Write(code)

	_, err := w.Write(out.Bytes())
	return err
}

// reader tracks remaining bytes so every field read can be bounds-checked
// before consuming it.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) need(n int) error {
	if len(r.buf)-r.pos < n {
		return newError(ErrorTruncatedImage, "need %d more bytes at offset %d, have %d", n, r.pos, len(r.buf)-r.pos)
	}
	return nil
}

func (r *reader) byte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) version() (Version, error) {
	b, err := r.bytes(4)
	if err != nil {
		return Version{}, err
	}
	return decodeVersion([4]byte(b)), nil
}

// Read parses a binary image from r, validating every field as it goes.
func Read(r io.Reader) (*Image, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rd := &reader{buf: raw}

	headerSize, err := rd.u16()
	if err != nil {
		return nil, err
	}

	hv, err := rd.version()
	if err != nil {
		return nil, err
	}
	if hv != HeaderVersion {
		return nil, newError(ErrorUnsupportedHeaderVersion, "got %d.%d.%d, want %d.%d.%d",
			hv.Major, hv.Minor, hv.Revision, HeaderVersion.Major, HeaderVersion.Minor, HeaderVersion.Revision)
	}

	nameLen, err := rd.byte()
	if err != nil {
		return nil, err
	}
	nameBytes, err := rd.bytes(int(nameLen))
	if err != nil {
		return nil, err
	}
	machineName := string(nameBytes)
	if machineName != MachineName {
		return nil, newError(ErrorWrongMachine, "got %q, want %q", machineName, MachineName)
	}

	mv, err := rd.version()
	if err != nil {
		return nil, err
	}
	if mv != MachineVersion {
		return nil, newError(ErrorWrongMachineVersion, "got %d.%d.%d, want %d.%d.%d",
			mv.Major, mv.Minor, mv.Revision, MachineVersion.Major, MachineVersion.Minor, MachineVersion.Revision)
	}

	progLen, err := rd.u16()
	if err != nil {
		return nil, err
	}
	progBytes, err := rd.bytes(int(progLen))
	if err != nil {
		return nil, err
	}

	dataLen, err := rd.u32()
	if err != nil {
		return nil, err
	}
	dataBytes, err := rd.bytes(int(dataLen))
	if err != nil {
		return nil, err
	}

	codeLen, err := rd.u32()
	if err != nil {
		return nil, err
	}
	codeBytes, err := rd.bytes(int(codeLen))
	if err != nil {
		return nil, err
	}

	data := append([]byte(nil), dataBytes...)
	code := append([]byte(nil), codeBytes...)

	return &Image{
		Header: Header{
			HeaderSize:     headerSize,
			HeaderVersion:  hv,
			MachineName:    machineName,
			MachineVersion: mv,
			ProgramName:    string(progBytes),
		},
		Data: data,
		Code: code,
	}, nil
}
