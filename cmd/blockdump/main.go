// blockdump decodes a hex dump of a server packet and prints it as YAML.
//
// Accepts S_OPCODE_UPDATE_OBJECT (0xA9) and S_OPCODE_DESTROY_OBJECT (0xAA)
// payloads, opcode byte included. Whitespace in the dump is ignored, so
// captures pasted from a packet log work as-is.
//
// Usage:
//
//	go run ./cmd/blockdump capture.hex
//	xxd -p capture.bin | go run ./cmd/blockdump
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/update"
)

// ---------------------------------------------------------------------------
// YAML views
// ---------------------------------------------------------------------------

type packetView struct {
	Map    uint16      `yaml:"map"`
	Blocks []blockView `yaml:"blocks"`
}

type blockView struct {
	Type       string                 `yaml:"type"`
	GUID       string                 `yaml:"guid,omitempty"`
	TypeID     string                 `yaml:"type_id,omitempty"`
	Movement   *movementView          `yaml:"movement,omitempty"`
	BlockCount int                    `yaml:"block_count,omitempty"`
	Fields     map[int]string         `yaml:"fields,omitempty"`
	Dynamic    map[int]map[int]uint32 `yaml:"dynamic,omitempty"`
	OutOfRange []string               `yaml:"out_of_range,omitempty"`
}

type movementView struct {
	Flags     string     `yaml:"flags"`
	Living    bool       `yaml:"living,omitempty"`
	MoveFlags string     `yaml:"move_flags,omitempty"`
	Position  [4]float32 `yaml:"position,flow"`
	Spline    bool       `yaml:"spline,omitempty"`
	Transport string     `yaml:"transport,omitempty"`
	Target    string     `yaml:"target,omitempty"`
	Rotation  int64      `yaml:"rotation,omitempty"`
	VehicleID uint32     `yaml:"vehicle_id,omitempty"`
}

type destroyView struct {
	GUID    string `yaml:"destroy"`
	OnDeath bool   `yaml:"on_death"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "blockdump: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, out io.Writer) error {
	in := stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	data, err := decodeHex(string(raw))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("empty input")
	}

	var view any
	switch data[0] {
	case packet.S_OPCODE_UPDATE_OBJECT:
		p, err := update.Decode(data)
		if err != nil {
			return err
		}
		view = toPacketView(p)
	case packet.S_OPCODE_DESTROY_OBJECT:
		guid, onDeath, err := update.DecodeDestroy(data)
		if err != nil {
			return err
		}
		view = destroyView{GUID: guidHex(guid), OnDeath: onDeath}
	default:
		return fmt.Errorf("unsupported opcode 0x%02X", data[0])
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return err
	}
	return enc.Close()
}

func decodeHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

func guidHex(g object.GUID) string {
	return fmt.Sprintf("0x%016X", uint64(g))
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func toPacketView(p *update.Packet) packetView {
	pv := packetView{Map: p.MapID}
	for _, b := range p.Blocks {
		bv := blockView{Type: b.Type.String()}
		if b.Type == update.TypeOutOfRange {
			for _, g := range b.OutOfRange {
				bv.OutOfRange = append(bv.OutOfRange, guidHex(g))
			}
			pv.Blocks = append(pv.Blocks, bv)
			continue
		}
		bv.GUID = guidHex(b.GUID)
		if b.Type != update.TypeValues {
			bv.TypeID = b.TypeID.String()
		}
		bv.BlockCount = b.BlockCount
		if len(b.Fields) > 0 {
			bv.Fields = make(map[int]string, len(b.Fields))
			for i, v := range b.Fields {
				bv.Fields[i] = fmt.Sprintf("0x%08X", v)
			}
		}
		if len(b.Dynamic) > 0 {
			bv.Dynamic = b.Dynamic
		}
		if m := b.Movement; m != nil {
			mv := &movementView{
				Flags:     fmt.Sprintf("0x%04X", uint32(m.Flags)),
				Living:    m.Living,
				Position:  [4]float32{m.Position.X, m.Position.Y, m.Position.Z, m.Position.O},
				Spline:    m.Spline != nil,
				Rotation:  m.Rotation,
				VehicleID: m.VehicleID,
			}
			if m.Living {
				mv.MoveFlags = fmt.Sprintf("0x%08X", uint32(m.MoveFlags))
			}
			if !m.TransportGUID.IsEmpty() {
				mv.Transport = guidHex(m.TransportGUID)
			}
			if !m.Target.IsEmpty() {
				mv.Target = guidHex(m.Target)
			}
			if !m.Living {
				mv.Position = [4]float32{m.Stationary.X, m.Stationary.Y, m.Stationary.Z, m.Stationary.O}
			}
			bv.Movement = mv
		}
		pv.Blocks = append(pv.Blocks, bv)
	}
	return pv
}
