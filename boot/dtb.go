package boot

import (
	"encoding/binary"
	"errors"

	"github.com/joeycumines/go-kernelcore/mm"
)

const (
	fdtMagic      = 0xd00dfeed
	fdtBeginNode  = 0x00000001
	fdtEndNode    = 0x00000002
	fdtProp       = 0x00000003
	fdtNop        = 0x00000004
	fdtEnd        = 0x00000009
)

type fdtHeader struct {
	Magic            uint32
	TotalSize        uint32
	OffDtStruct      uint32
	OffDtStrings     uint32
	OffMemRsvmap     uint32
	Version          uint32
	LastCompVersion  uint32
	BootCpuidPhys    uint32
	SizeDtStrings    uint32
	SizeDtStruct     uint32
}

var (
	errBadMagic  = errors.New("boot: flattened device tree has a bad magic number")
	errTruncated = errors.New("boot: flattened device tree is truncated")
	errBadToken  = errors.New("boot: flattened device tree structure block has an unrecognized token")
)

func parseHeader(blob []byte) (fdtHeader, error) {
	if len(blob) < 40 {
		return fdtHeader{}, errTruncated
	}
	be := binary.BigEndian
	h := fdtHeader{
		Magic:           be.Uint32(blob[0:4]),
		TotalSize:       be.Uint32(blob[4:8]),
		OffDtStruct:     be.Uint32(blob[8:12]),
		OffDtStrings:    be.Uint32(blob[12:16]),
		OffMemRsvmap:    be.Uint32(blob[16:20]),
		Version:         be.Uint32(blob[20:24]),
		LastCompVersion: be.Uint32(blob[24:28]),
		BootCpuidPhys:   be.Uint32(blob[28:32]),
		SizeDtStrings:   be.Uint32(blob[32:36]),
		SizeDtStruct:    be.Uint32(blob[36:40]),
	}
	if h.Magic != fdtMagic {
		return fdtHeader{}, errBadMagic
	}
	if uint64(h.TotalSize) > uint64(len(blob)) {
		return fdtHeader{}, errTruncated
	}
	return h, nil
}

func align4(n uint32) uint32 { return (n + 3) &^ 3 }

func cString(strings []byte, off uint32) string {
	end := off
	for end < uint32(len(strings)) && strings[end] != 0 {
		end++
	}
	return string(strings[off:end])
}

// memoryLayout walks the structure block looking for a node whose
// name is "memory" or starts with "memory@", and returns the (addr,
// size) pair from its "reg" property — the minimal slice of the DTB
// v17 grammar (FDT_BEGIN_NODE/FDT_END_NODE/FDT_PROP/FDT_NOP/FDT_END
// tokens over a structure block plus a strings block) this kernel
// core needs to discover usable RAM at boot.
func memoryLayout(blob []byte) (mm.PhysicalLayout, error) {
	h, err := parseHeader(blob)
	if err != nil {
		return mm.PhysicalLayout{}, err
	}

	strings := blob[h.OffDtStrings : h.OffDtStrings+h.SizeDtStrings]
	structBlock := blob[h.OffDtStruct : h.OffDtStruct+h.SizeDtStruct]
	be := binary.BigEndian

	var inMemoryNode bool
	var depth int
	var memoryDepth int
	off := uint32(0)
	for off+4 <= uint32(len(structBlock)) {
		token := be.Uint32(structBlock[off : off+4])
		off += 4
		switch token {
		case fdtBeginNode:
			nameEnd := off
			for nameEnd < uint32(len(structBlock)) && structBlock[nameEnd] != 0 {
				nameEnd++
			}
			name := string(structBlock[off:nameEnd])
			off = align4(nameEnd + 1)
			depth++
			if !inMemoryNode && (name == "memory" || hasMemoryPrefix(name)) {
				inMemoryNode = true
				memoryDepth = depth
			}
		case fdtEndNode:
			if inMemoryNode && depth == memoryDepth {
				inMemoryNode = false
			}
			depth--
		case fdtProp:
			if off+8 > uint32(len(structBlock)) {
				return mm.PhysicalLayout{}, errTruncated
			}
			length := be.Uint32(structBlock[off : off+4])
			nameOff := be.Uint32(structBlock[off+4 : off+8])
			off += 8
			if off+length > uint32(len(structBlock)) {
				return mm.PhysicalLayout{}, errTruncated
			}
			value := structBlock[off : off+length]
			off = align4(off + length)

			if inMemoryNode && cString(strings, nameOff) == "reg" && len(value) >= 16 {
				addr := be.Uint64(value[0:8])
				size := be.Uint64(value[8:16])
				return mm.PhysicalLayout{Base: addr, Size: size}, nil
			}
		case fdtNop:
		case fdtEnd:
			return mm.PhysicalLayout{}, errors.New("boot: no memory node with a reg property found")
		default:
			return mm.PhysicalLayout{}, errBadToken
		}
	}
	return mm.PhysicalLayout{}, errors.New("boot: no memory node with a reg property found")
}

func hasMemoryPrefix(name string) bool {
	const prefix = "memory@"
	return len(name) > len(prefix) && name[:len(prefix)] == prefix
}
