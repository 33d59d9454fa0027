package update

import (
	"errors"
	"fmt"

	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/object/movement"
)

var (
	ErrBadOpcode    = errors.New("update: not an update packet")
	ErrUnknownBlock = errors.New("update: unknown block type")
)

// Packet is a decoded S_OPCODE_UPDATE_OBJECT.
type Packet struct {
	MapID  uint16
	Blocks []*DecodedBlock
}

// DecodedBlock is one block read back from the wire.
type DecodedBlock struct {
	Type   Type
	GUID   object.GUID
	TypeID object.TypeID

	// Set for create blocks only.
	Movement *Movement

	BlockCount int
	Fields     map[int]uint32
	// Dynamic maps table index to its non-zero slots. A table sent as
	// empty is present with no slots.
	Dynamic map[int]map[int]uint32

	// Set for OUT_OF_RANGE blocks only.
	OutOfRange []object.GUID
}

// Movement is the decoded movement section of a create block.
type Movement struct {
	Flags object.UpdateFlag

	Living        bool
	MoveFlags     movement.Flags
	ExtraFlags    movement.ExtraFlags
	Position      movement.Position
	Speeds        movement.Speeds
	Spline        *movement.Spline
	TransportGUID object.GUID
	Transport     movement.Position

	Stationary   movement.Position
	Rotation     int64
	Target       object.GUID
	Frames       []uint32
	VehicleID    uint32
	WorldEffect  uint32
	AreaTrigger  bool
	PolygonSize  int
	PathLength   int
	ElapsedTime  uint32
	TransportNow uint32
}

// Decode parses a full update packet including its opcode byte.
func Decode(data []byte) (*Packet, error) {
	r := packet.NewReader(data)
	if r.Opcode() != packet.S_OPCODE_UPDATE_OBJECT {
		return nil, ErrBadOpcode
	}
	p := &Packet{MapID: r.ReadH()}
	n := r.ReadDU()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	for i := uint32(0); i < n; i++ {
		b, err := DecodeBlock(r)
		if err != nil {
			return nil, fmt.Errorf("decode block %d: %w", i, err)
		}
		p.Blocks = append(p.Blocks, b)
	}
	return p, nil
}

// DecodeBlock reads one block from r.
func DecodeBlock(r *packet.Reader) (*DecodedBlock, error) {
	b := &DecodedBlock{Type: Type(r.ReadC())}
	switch b.Type {
	case TypeOutOfRange:
		n := r.ReadDU()
		for i := uint32(0); i < n && r.Err() == nil; i++ {
			b.OutOfRange = append(b.OutOfRange, object.GUID(r.ReadPackedGUID()))
		}
		return b, r.Err()
	case TypeValues:
		b.GUID = object.GUID(r.ReadPackedGUID())
	case TypeCreateObject, TypeCreateObject2:
		b.GUID = object.GUID(r.ReadPackedGUID())
		b.TypeID = object.TypeID(r.ReadC())
		d := readMovement(r)
		b.Movement = d.summary()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownBlock, b.Type)
	}

	b.BlockCount = int(r.ReadC())
	blocks := make([]uint32, b.BlockCount)
	for i := range blocks {
		blocks[i] = r.ReadDU()
	}
	b.Fields = make(map[int]uint32)
	for bi, m := range blocks {
		for bit := 0; bit < 32; bit++ {
			if m&(1<<uint(bit)) != 0 {
				b.Fields[bi*32+bit] = r.ReadDU()
			}
		}
	}
	b.Dynamic = readDynamic(r)
	return b, r.Err()
}

func readDynamic(r *packet.Reader) map[int]map[int]uint32 {
	out := make(map[int]map[int]uint32)
	if r.ReadC() == 0 {
		return out
	}
	tables := r.ReadDU()
	for t := 0; t < 32; t++ {
		if tables&(1<<uint(t)) == 0 {
			continue
		}
		slots := make(map[int]uint32)
		out[t] = slots
		if r.ReadC() == 0 {
			continue
		}
		m := r.ReadDU()
		for s := 0; s < 32; s++ {
			if m&(1<<uint(s)) != 0 {
				slots[s] = r.ReadDU()
			}
		}
	}
	return out
}

func (d *movementDescriptor) summary() *Movement {
	m := &Movement{
		Flags:        d.flags,
		Stationary:   d.stationary,
		Rotation:     d.rotation,
		Target:       object.GUID(d.target),
		Frames:       d.frames,
		VehicleID:    d.vehicleID,
		WorldEffect:  d.worldEffect,
		TransportNow: d.transportTime,
	}
	if l := d.living; l != nil {
		m.Living = true
		m.MoveFlags = l.flags
		m.ExtraFlags = l.extra
		m.Position = l.pos
		m.Speeds = l.speeds
		m.Spline = l.spline
		if t := l.transport; t != nil {
			m.TransportGUID = object.GUID(t.guid)
			m.Transport = t.offset
		}
	}
	if t := d.goTransport; t != nil {
		m.TransportGUID = object.GUID(t.guid)
		m.Transport = t.offset
	}
	if a := d.areaTrigger; a != nil {
		m.AreaTrigger = true
		m.PolygonSize = len(a.vertices)
		m.PathLength = len(a.path)
		m.ElapsedTime = a.elapsed
	}
	return m
}

// Presence bits the decoder keeps between the bit pass and the value pass.
type transportPresence struct {
	mask       [8]bool
	prevMove   bool
	vehicleRec bool
}

type livingPresence struct {
	mask         [8]bool
	moveIndex    bool
	splinePoints int
	splineFacing movement.FacingType
	transport    transportPresence
}

type areaTriggerPresence struct {
	scale, moveCurve, morphCurve, facingCurve, scaleCurve bool
}

type movementPresence struct {
	at         areaTriggerPresence
	living     livingPresence
	goTrans    transportPresence
	targetMask [8]bool
}

func (d *movementDescriptor) setIf(f object.UpdateFlag, on bool) {
	if on {
		d.flags |= f
	}
}

// readMovement mirrors writeBits followed by writeValues.
func readMovement(r *packet.Reader) *movementDescriptor {
	d := &movementDescriptor{}
	var p movementPresence

	r.ReadBit()
	d.setIf(object.UpdateFlagAreaTrigger, r.ReadBit())
	r.ReadBit()
	d.setIf(object.UpdateFlagTransport, r.ReadBit())
	d.setIf(object.UpdateFlagHasWorldEffectID, r.ReadBit())
	d.setIf(object.UpdateFlagSelf, r.ReadBit())
	r.ReadBit()
	d.setIf(object.UpdateFlagHasTarget, r.ReadBit())
	if n := r.ReadCount(22, 4); n > 0 {
		d.frames = make([]uint32, n)
	}
	for i := 0; i < 4; i++ {
		r.ReadBit()
	}
	d.setIf(object.UpdateFlagStationaryPosition, r.ReadBit())
	r.ReadBit()
	d.setIf(object.UpdateFlagLiving, r.ReadBit())
	d.setIf(object.UpdateFlagAnimKits, r.ReadBit())
	d.setIf(object.UpdateFlagVehicle, r.ReadBit())
	d.setIf(object.UpdateFlagGOTransportPosition, r.ReadBit())
	r.ReadBit()
	d.setIf(object.UpdateFlagRotation, r.ReadBit())

	if d.has(object.UpdateFlagAreaTrigger) {
		d.areaTrigger = readAreaTriggerBits(r, &p.at)
	}
	if d.has(object.UpdateFlagLiving) {
		d.living = readLivingBits(r, &p.living)
	}
	if d.has(object.UpdateFlagGOTransportPosition) {
		t := &transportPart{}
		r.ReadGuidMask(&p.goTrans.mask, goTransMaskA...)
		p.goTrans.vehicleRec = r.ReadBit()
		r.ReadGuidMask(&p.goTrans.mask, goTransMaskB...)
		p.goTrans.prevMove = r.ReadBit()
		r.ReadGuidMask(&p.goTrans.mask, goTransMaskC...)
		d.goTransport = t
	}
	if d.has(object.UpdateFlagHasTarget) {
		r.ReadGuidMask(&p.targetMask, targetMask...)
	}
	if d.has(object.UpdateFlagAnimKits) {
		r.ReadBit()
		r.ReadBit()
		r.ReadBit()
	}

	for i := range d.frames {
		d.frames[i] = r.ReadDU()
	}
	if a := d.areaTrigger; a != nil {
		a.readValues(r, &p.at)
	}
	if l := d.living; l != nil {
		l.readValues(r, &p.living)
	}
	if d.has(object.UpdateFlagStationaryPosition) {
		d.stationary.X = r.ReadF()
		d.stationary.Z = r.ReadF()
		d.stationary.Y = r.ReadF()
		d.stationary.O = r.ReadF()
	}
	if t := d.goTransport; t != nil {
		if p.goTrans.prevMove {
			t.prevMoveTime = r.ReadDU()
		}
		m := &p.goTrans.mask
		r.ReadGuidBytes(m, &t.guid, 4, 2, 7, 3)
		t.time = r.ReadDU()
		t.offset.Y = r.ReadF()
		r.ReadGuidBytes(m, &t.guid, 1)
		t.offset.Z = r.ReadF()
		t.seat = int8(r.ReadC())
		if p.goTrans.vehicleRec {
			t.vehicleRecID = r.ReadDU()
		}
		r.ReadGuidBytes(m, &t.guid, 6)
		t.offset.O = r.ReadF()
		r.ReadGuidBytes(m, &t.guid, 5, 0)
		t.offset.X = r.ReadF()
	}
	if d.has(object.UpdateFlagRotation) {
		d.rotation = int64(r.ReadQ())
	}
	if d.has(object.UpdateFlagHasTarget) {
		r.ReadGuidBytes(&p.targetMask, &d.target, targetBytes...)
	}
	if d.has(object.UpdateFlagTransport) {
		d.transportTime = r.ReadDU()
	}
	if d.has(object.UpdateFlagVehicle) {
		d.vehicleID = r.ReadDU()
		d.vehicleO = r.ReadF()
	}
	if d.has(object.UpdateFlagHasWorldEffectID) {
		d.worldEffect = r.ReadDU()
	}
	if l := d.living; l != nil && l.spline != nil {
		l.spline.ReadFacingData(r)
	}
	return d
}

func readAreaTriggerBits(r *packet.Reader, p *areaTriggerPresence) *areaTriggerPart {
	a := &areaTriggerPart{}
	if r.ReadBit() {
		a.vertices = make([][2]float32, r.ReadCount(21, 8))
		a.targets = make([][2]float32, r.ReadCount(21, 8))
	}
	a.absoluteOrientation = r.ReadBit()
	a.followsTerrain = r.ReadBit()
	p.scale = r.ReadBit()
	moving := r.ReadBit()
	a.faceMovementDir = r.ReadBit()
	a.attached = r.ReadBit()
	p.scaleCurve = r.ReadBit()
	p.morphCurve = r.ReadBit()
	if moving {
		a.path = make([][3]float32, r.ReadCount(20, 12))
	}
	p.facingCurve = r.ReadBit()
	a.dynamicShape = r.ReadBit()
	p.moveCurve = r.ReadBit()
	a.cylinder = r.ReadBit()
	return a
}

func (a *areaTriggerPart) readValues(r *packet.Reader, p *areaTriggerPresence) {
	if a.cylinder {
		a.height = r.ReadF()
		a.float4 = r.ReadF()
		a.float5 = r.ReadF()
		a.radius = r.ReadF()
		a.radiusTarget = r.ReadF()
		a.heightTarget = r.ReadF()
	}
	if len(a.vertices) > 0 {
		a.heightTarget = r.ReadF()
		for i := range a.vertices {
			a.vertices[i][1] = r.ReadF()
			a.vertices[i][0] = r.ReadF()
		}
		a.height = r.ReadF()
		for i := range a.targets {
			a.targets[i][0] = r.ReadF()
			a.targets[i][1] = r.ReadF()
		}
	}
	if p.moveCurve {
		a.moveCurve = r.ReadDU()
	}
	if p.morphCurve {
		a.morphCurve = r.ReadDU()
	}
	if p.scale {
		a.visualScale = r.ReadF()
		a.visualScaleTarget = r.ReadF()
	}
	for i := range a.path {
		a.path[i] = [3]float32{r.ReadF(), r.ReadF(), r.ReadF()}
	}
	a.elapsed = r.ReadDU()
	if p.facingCurve {
		a.facingCurve = r.ReadDU()
	}
	if p.scaleCurve {
		a.scaleCurve = r.ReadDU()
	}
}

func readLivingBits(r *packet.Reader, p *livingPresence) *livingPart {
	l := &livingPart{}
	r.ReadGuidMask(&p.mask, livingMaskA...)
	r.ReadBits(19)
	r.ReadGuidMask(&p.mask, livingMaskB...)
	l.hasOrientation = !r.ReadBit()
	r.ReadGuidMask(&p.mask, livingMaskC...)
	r.ReadBits(22)
	hasSpline := r.ReadBit()
	l.hasPitch = !r.ReadBit()
	if hasSpline {
		p.splinePoints, p.splineFacing = movement.ReadCreateBits(r)
		l.spline = &movement.Spline{}
	}
	p.moveIndex = !r.ReadBit()
	r.ReadGuidMask(&p.mask, livingMaskD...)
	l.remoteTimeValid = r.ReadBit()
	if !r.ReadBit() {
		l.flags = movement.Flags(r.ReadBits(30))
	}
	l.hasSpline = r.ReadBit()
	l.heightChangeFailed = r.ReadBit()
	r.ReadGuidMask(&p.mask, livingMaskE...)
	l.hasMoveTime = !r.ReadBit()
	r.ReadGuidMask(&p.mask, livingMaskF...)
	if r.ReadBit() {
		t := &transportPart{}
		r.ReadGuidMask(&p.transport.mask, transMaskA...)
		p.transport.prevMove = r.ReadBit()
		r.ReadGuidMask(&p.transport.mask, transMaskB...)
		p.transport.vehicleRec = r.ReadBit()
		l.transport = t
	}
	r.ReadGuidMask(&p.mask, livingMaskG...)
	l.hasFall = r.ReadBit()
	if l.hasFall {
		l.fall.HasDirection = r.ReadBit()
	}
	hasExtra := !r.ReadBit()
	l.hasStepUp = !r.ReadBit()
	if hasExtra {
		l.extra = movement.ExtraFlags(r.ReadBits(13))
	}
	return l
}

func (l *livingPart) readValues(r *packet.Reader, p *livingPresence) {
	s := &l.speeds
	m := &p.mask
	l.pos.Y = r.ReadF()
	if l.spline != nil {
		l.spline = movement.ReadCreateData(r, p.splinePoints, p.splineFacing)
	}
	s[movement.SpeedFlight] = r.ReadF()
	s[movement.SpeedRun] = r.ReadF()
	r.ReadGuidBytes(m, &l.guid, 4)
	s[movement.SpeedWalk] = r.ReadF()
	if l.hasFall {
		if l.fall.HasDirection {
			l.fall.XYSpeed = r.ReadF()
			l.fall.CosAngle = r.ReadF()
			l.fall.SinAngle = r.ReadF()
		}
		l.fall.Time = r.ReadDU()
		l.fall.JumpVelocity = r.ReadF()
	}
	if t := l.transport; t != nil {
		tm := &p.transport.mask
		r.ReadGuidBytes(tm, &t.guid, 5)
		t.seat = int8(r.ReadC())
		r.ReadGuidBytes(tm, &t.guid, 2)
		t.offset.O = r.ReadF()
		r.ReadGuidBytes(tm, &t.guid, 4, 7)
		if p.transport.prevMove {
			t.prevMoveTime = r.ReadDU()
		}
		t.time = r.ReadDU()
		t.offset.Y = r.ReadF()
		r.ReadGuidBytes(tm, &t.guid, 3, 6)
		t.offset.X = r.ReadF()
		r.ReadGuidBytes(tm, &t.guid, 0)
		if p.transport.vehicleRec {
			t.vehicleRecID = r.ReadDU()
		}
		r.ReadGuidBytes(tm, &t.guid, 1)
		t.offset.Z = r.ReadF()
	}
	r.ReadGuidBytes(m, &l.guid, 5)
	if l.hasMoveTime {
		l.moveTime = r.ReadDU()
	}
	if p.moveIndex {
		l.moveIndex = r.ReadDU()
	}
	r.ReadGuidBytes(m, &l.guid, 1)
	s[movement.SpeedSwimBack] = r.ReadF()
	s[movement.SpeedFlightBack] = r.ReadF()
	r.ReadGuidBytes(m, &l.guid, 6)
	s[movement.SpeedTurnRate] = r.ReadF()
	l.pos.X = r.ReadF()
	if l.hasOrientation {
		l.pos.O = r.ReadF()
	}
	s[movement.SpeedPitchRate] = r.ReadF()
	s[movement.SpeedSwim] = r.ReadF()
	if l.hasPitch {
		l.pitch = r.ReadF()
	}
	r.ReadGuidBytes(m, &l.guid, 3)
	if l.hasStepUp {
		l.stepUp = r.ReadF()
	}
	s[movement.SpeedRunBack] = r.ReadF()
	r.ReadGuidBytes(m, &l.guid, 7, 2)
	l.pos.Z = r.ReadF()
	r.ReadGuidBytes(m, &l.guid, 0)
}

// DecodeDestroy reads a packet built by BuildDestroyPacket.
func DecodeDestroy(data []byte) (guid object.GUID, onDeath bool, err error) {
	r := packet.NewReader(data)
	if r.Opcode() != packet.S_OPCODE_DESTROY_OBJECT {
		return 0, false, ErrBadOpcode
	}
	var mask [8]bool
	var g uint64
	r.ReadGuidMask(&mask, 7, 2, 6, 3, 1, 4)
	onDeath = r.ReadBit()
	r.ReadGuidMask(&mask, 5, 0)
	r.ReadGuidBytes(&mask, &g, 4, 3, 2, 7, 0, 1, 6, 5)
	if err := r.Err(); err != nil {
		return 0, false, fmt.Errorf("decode destroy: %w", err)
	}
	return object.GUID(g), onDeath, nil
}
