package update

import (
	"math"

	"github.com/l1jgo/replicore/internal/net/packet"
	"github.com/l1jgo/replicore/internal/object"
	"github.com/l1jgo/replicore/internal/object/movement"
)

// movementDescriptor is the movement section of one create block. It is
// filled once from the object; writeBits and writeValues both read only
// the descriptor, so every presence bit has exactly one matching value.
type movementDescriptor struct {
	flags object.UpdateFlag

	frames      []uint32
	areaTrigger *areaTriggerPart
	living      *livingPart
	stationary  movement.Position
	goTransport *transportPart
	rotation    int64
	target      uint64

	transportTime uint32
	vehicleID     uint32
	vehicleO      float32
	worldEffect   uint32
}

type transportPart struct {
	guid         uint64
	offset       movement.Position
	seat         int8
	time         uint32
	prevMoveTime uint32
	vehicleRecID uint32
}

type livingPart struct {
	guid           uint64
	flags          movement.Flags
	extra          movement.ExtraFlags
	pos            movement.Position
	hasOrientation bool
	speeds         movement.Speeds
	spline         *movement.Spline

	hasPitch bool
	pitch    float32

	moveIndex          uint32
	remoteTimeValid    bool
	hasSpline          bool
	heightChangeFailed bool
	hasMoveTime        bool
	moveTime           uint32

	transport *transportPart

	hasFall bool
	fall    movement.FallInfo

	hasStepUp bool
	stepUp    float32
}

type areaTriggerPart struct {
	vertices [][2]float32
	targets  [][2]float32

	absoluteOrientation bool
	followsTerrain      bool
	faceMovementDir     bool
	attached            bool
	dynamicShape        bool

	cylinder     bool
	height       float32
	heightTarget float32
	radius       float32
	radiusTarget float32
	float4       float32
	float5       float32

	visualScale       float32
	visualScaleTarget float32
	path              [][3]float32

	moveCurve, morphCurve, facingCurve, scaleCurve uint32
	elapsed                                        uint32
}

// Guid byte orders of the living and transport sub-blocks.
var (
	livingMaskA = []int{4, 1}
	livingMaskB = []int{5}
	livingMaskC = []int{7}
	livingMaskD = []int{3}
	livingMaskE = []int{2}
	livingMaskF = []int{0}
	livingMaskG = []int{6}

	transMaskA = []int{4, 7, 3, 1, 6}
	transMaskB = []int{2, 0, 5}

	goTransMaskA = []int{0, 7}
	goTransMaskB = []int{1}
	goTransMaskC = []int{6, 5, 4, 3, 2}

	targetMask  = []int{5, 4, 6, 0, 1, 7, 2, 3}
	targetBytes = []int{4, 6, 3, 0, 7, 1, 2, 5}
)

func fuzzyZero(f float32) bool { return math.Abs(float64(f)) < 1e-5 }

// describeMovement snapshots the movement state of ent under flags.
func describeMovement(ent object.Entity, flags object.UpdateFlag, now uint32) *movementDescriptor {
	o := ent.Base()
	d := &movementDescriptor{flags: flags}
	w := o.ToWorld()

	if g := o.ToGameObject(); g != nil && g.ManualAnim && g.GoType() == object.GameObjectTypeTransport {
		for _, f := range g.TransportFrames {
			if f != 0 {
				d.frames = append(d.frames, f)
			}
		}
	}

	if flags&object.UpdateFlagAreaTrigger != 0 {
		if at := o.ToAreaTrigger(); at != nil {
			d.areaTrigger = describeAreaTrigger(&at.Shape)
		} else {
			d.flags &^= object.UpdateFlagAreaTrigger
		}
	}
	if flags&object.UpdateFlagLiving != 0 {
		if u := o.ToUnit(); u != nil {
			d.living = describeLiving(u, now)
		} else {
			d.flags &^= object.UpdateFlagLiving
		}
	}
	if w == nil {
		d.flags &^= object.UpdateFlagStationaryPosition | object.UpdateFlagGOTransportPosition
	} else {
		d.stationary = w.Position()
		if flags&object.UpdateFlagGOTransportPosition != 0 {
			d.goTransport = describeTransport(&w.Movement)
		}
	}
	if flags&object.UpdateFlagRotation != 0 {
		if g := o.ToGameObject(); g != nil {
			d.rotation = g.Rotation()
		} else {
			d.flags &^= object.UpdateFlagRotation
		}
	}
	if flags&object.UpdateFlagHasTarget != 0 {
		if u := o.ToUnit(); u != nil && u.Victim() != nil {
			d.target = uint64(u.Victim().GUID())
		} else {
			d.flags &^= object.UpdateFlagHasTarget
		}
	}
	if flags&object.UpdateFlagTransport != 0 {
		d.transportTime = now
	}
	if flags&object.UpdateFlagVehicle != 0 {
		if u := o.ToUnit(); u != nil {
			d.vehicleID = u.VehicleID()
			d.vehicleO = u.Orientation()
		} else {
			d.flags &^= object.UpdateFlagVehicle
		}
	}
	if flags&object.UpdateFlagHasWorldEffectID != 0 {
		if g := o.ToGameObject(); g != nil {
			d.worldEffect = g.WorldEffectID
		}
	}
	return d
}

func describeTransport(m *movement.Info) *transportPart {
	t := m.Transport
	return &transportPart{
		guid:         t.GUID,
		offset:       t.Offset,
		seat:         t.Seat,
		time:         t.Time,
		prevMoveTime: t.PrevMoveTime,
		vehicleRecID: t.VehicleRecID,
	}
}

func describeLiving(u *object.Unit, now uint32) *livingPart {
	m := &u.Movement
	l := &livingPart{
		guid:               uint64(u.GUID()),
		flags:              m.WireFlags(u.IsCreature()),
		extra:              m.ExtraFlags,
		pos:                u.Position(),
		hasOrientation:     !fuzzyZero(u.Orientation()),
		speeds:             u.Speeds,
		hasPitch:           m.HasPitch,
		pitch:              movement.NormalizePitch(m.Pitch),
		moveIndex:          m.MoveIndex,
		remoteTimeValid:    m.RemoteTimeValid,
		hasSpline:          m.HasSpline,
		heightChangeFailed: m.HeightChangeFailed,
		hasMoveTime:        m.HasMoveTime,
		moveTime:           now,
		hasFall:            m.HasFall,
		fall:               m.Fall,
		hasStepUp:          m.HasStepUp,
		stepUp:             m.StepUpStartHeight,
	}
	if u.IsSplineEnabled() {
		l.spline = u.Spline
	}
	if m.HasTransport() {
		l.transport = describeTransport(m)
	}
	return l
}

func describeAreaTrigger(s *object.AreaTriggerShape) *areaTriggerPart {
	a := &areaTriggerPart{
		absoluteOrientation: s.AbsoluteOrientation,
		followsTerrain:      s.FollowsTerrain,
		faceMovementDir:     s.FaceMovementDir,
		attached:            s.Attached,
		dynamicShape:        s.DynamicShape,
		cylinder:            s.Cylinder,
		height:              s.Height,
		heightTarget:        s.HeightTarget,
		radius:              s.Radius,
		radiusTarget:        s.RadiusTarget,
		float4:              s.Float4,
		float5:              s.Float5,
		visualScale:         s.VisualScale,
		visualScaleTarget:   s.VisualScaleTarget,
		moveCurve:           s.MoveCurveID,
		morphCurve:          s.MorphCurveID,
		facingCurve:         s.FacingCurveID,
		scaleCurve:          s.ScaleCurveID,
		elapsed:             s.ElapsedTime,
	}
	if s.IsPolygon() {
		a.vertices = s.PolygonPoints
		if s.Polygon > 1 {
			a.targets = s.PolygonPoints
		}
	}
	if s.IsMoving() {
		a.path = s.Path
	}
	if a.elapsed == 0 {
		a.elapsed = 1
	}
	return a
}

func (d *movementDescriptor) has(f object.UpdateFlag) bool { return d.flags&f != 0 }

// writeBits writes the bit-packed header of the movement section.
func (d *movementDescriptor) writeBits(w *packet.Writer) {
	w.WriteBit(false)
	w.WriteBit(d.has(object.UpdateFlagAreaTrigger))
	w.WriteBit(false)
	w.WriteBit(d.has(object.UpdateFlagTransport))
	w.WriteBit(d.has(object.UpdateFlagHasWorldEffectID))
	w.WriteBit(d.has(object.UpdateFlagSelf))
	w.WriteBit(false)
	w.WriteBit(d.has(object.UpdateFlagHasTarget))
	w.WriteBits(uint32(len(d.frames)), 22)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(false)
	w.WriteBit(d.has(object.UpdateFlagStationaryPosition))
	w.WriteBit(false)
	w.WriteBit(d.has(object.UpdateFlagLiving))
	w.WriteBit(d.has(object.UpdateFlagAnimKits))
	w.WriteBit(d.has(object.UpdateFlagVehicle))
	w.WriteBit(d.has(object.UpdateFlagGOTransportPosition))
	w.WriteBit(false)
	w.WriteBit(d.has(object.UpdateFlagRotation))

	if a := d.areaTrigger; a != nil {
		a.writeBits(w)
	}
	if l := d.living; l != nil {
		l.writeBits(w)
	}
	if t := d.goTransport; t != nil {
		w.WriteGuidMask(t.guid, goTransMaskA...)
		w.WriteBit(t.vehicleRecID != 0)
		w.WriteGuidMask(t.guid, goTransMaskB...)
		w.WriteBit(t.prevMoveTime != 0)
		w.WriteGuidMask(t.guid, goTransMaskC...)
	}
	if d.has(object.UpdateFlagHasTarget) {
		w.WriteGuidMask(d.target, targetMask...)
	}
	if d.has(object.UpdateFlagAnimKits) {
		// no anim kit 3, 1 or 2
		w.WriteBit(true)
		w.WriteBit(true)
		w.WriteBit(true)
	}
	w.FlushBits()
}

func (a *areaTriggerPart) writeBits(w *packet.Writer) {
	w.WriteBit(len(a.vertices) > 0)
	if len(a.vertices) > 0 {
		w.WriteBits(uint32(len(a.vertices)), 21)
		w.WriteBits(uint32(len(a.targets)), 21)
	}
	w.WriteBit(a.absoluteOrientation)
	w.WriteBit(a.followsTerrain)
	w.WriteBit(a.visualScale != 0)
	w.WriteBit(len(a.path) > 0)
	w.WriteBit(a.faceMovementDir)
	w.WriteBit(a.attached)
	w.WriteBit(a.scaleCurve != 0)
	w.WriteBit(a.morphCurve != 0)
	if len(a.path) > 0 {
		w.WriteBits(uint32(len(a.path)), 20)
	}
	w.WriteBit(a.facingCurve != 0)
	w.WriteBit(a.dynamicShape)
	w.WriteBit(a.moveCurve != 0)
	w.WriteBit(a.cylinder)
}

func (l *livingPart) writeBits(w *packet.Writer) {
	w.WriteGuidMask(l.guid, livingMaskA...)
	w.WriteBits(0, 19) // movement forces
	w.WriteGuidMask(l.guid, livingMaskB...)
	w.WriteBit(!l.hasOrientation)
	w.WriteGuidMask(l.guid, livingMaskC...)
	w.WriteBits(0, 22) // removed forces
	w.WriteBit(l.spline != nil)
	w.WriteBit(!l.hasPitch)
	if l.spline != nil {
		l.spline.WriteCreateBits(w)
	}
	w.WriteBit(l.moveIndex == 0)
	w.WriteGuidMask(l.guid, livingMaskD...)
	w.WriteBit(l.remoteTimeValid)
	w.WriteBit(l.flags == 0)
	if l.flags != 0 {
		w.WriteBits(uint32(l.flags), 30)
	}
	w.WriteBit(l.hasSpline)
	w.WriteBit(l.heightChangeFailed)
	w.WriteGuidMask(l.guid, livingMaskE...)
	w.WriteBit(!l.hasMoveTime)
	w.WriteGuidMask(l.guid, livingMaskF...)
	w.WriteBit(l.transport != nil)
	if t := l.transport; t != nil {
		w.WriteGuidMask(t.guid, transMaskA...)
		w.WriteBit(t.prevMoveTime != 0)
		w.WriteGuidMask(t.guid, transMaskB...)
		w.WriteBit(t.vehicleRecID != 0)
	}
	w.WriteGuidMask(l.guid, livingMaskG...)
	w.WriteBit(l.hasFall)
	if l.hasFall {
		w.WriteBit(l.fall.HasDirection)
	}
	w.WriteBit(l.extra == 0)
	w.WriteBit(!l.hasStepUp)
	if l.extra != 0 {
		w.WriteBits(uint32(l.extra), 13)
	}
}

// writeValues writes the byte-aligned part of the movement section.
func (d *movementDescriptor) writeValues(w *packet.Writer) {
	for _, f := range d.frames {
		w.WriteDU(f)
	}
	if a := d.areaTrigger; a != nil {
		a.writeValues(w)
	}
	if l := d.living; l != nil {
		l.writeValues(w)
	}
	if d.has(object.UpdateFlagStationaryPosition) {
		p := d.stationary
		w.WriteF(p.X)
		w.WriteF(p.Z)
		w.WriteF(p.Y)
		w.WriteF(movement.NormalizeOrientation(p.O))
	}
	if t := d.goTransport; t != nil {
		if t.prevMoveTime != 0 {
			w.WriteDU(t.prevMoveTime)
		}
		w.WriteGuidBytes(t.guid, 4, 2, 7, 3)
		w.WriteDU(t.time)
		w.WriteF(t.offset.Y)
		w.WriteGuidBytes(t.guid, 1)
		w.WriteF(t.offset.Z)
		w.WriteC(byte(t.seat))
		if t.vehicleRecID != 0 {
			w.WriteDU(t.vehicleRecID)
		}
		w.WriteGuidBytes(t.guid, 6)
		w.WriteF(movement.NormalizeOrientation(t.offset.O))
		w.WriteGuidBytes(t.guid, 5, 0)
		w.WriteF(t.offset.X)
	}
	if d.has(object.UpdateFlagRotation) {
		w.WriteQ(uint64(d.rotation))
	}
	if d.has(object.UpdateFlagHasTarget) {
		w.WriteGuidBytes(d.target, targetBytes...)
	}
	if d.has(object.UpdateFlagTransport) {
		w.WriteDU(d.transportTime)
	}
	if d.has(object.UpdateFlagVehicle) {
		w.WriteDU(d.vehicleID)
		w.WriteF(d.vehicleO)
	}
	if d.has(object.UpdateFlagHasWorldEffectID) {
		w.WriteDU(d.worldEffect)
	}
	if l := d.living; l != nil && l.spline != nil {
		l.spline.WriteFacingData(w)
	}
}

func (a *areaTriggerPart) writeValues(w *packet.Writer) {
	if a.cylinder {
		w.WriteF(a.height)
		w.WriteF(a.float4)
		w.WriteF(a.float5)
		w.WriteF(a.radius)
		w.WriteF(a.radiusTarget)
		w.WriteF(a.heightTarget)
	}
	if len(a.vertices) > 0 {
		w.WriteF(a.heightTarget)
		for _, p := range a.vertices {
			w.WriteF(p[1])
			w.WriteF(p[0])
		}
		w.WriteF(a.height)
		for _, p := range a.targets {
			w.WriteF(p[0])
			w.WriteF(p[1])
		}
	}
	if a.moveCurve != 0 {
		w.WriteDU(a.moveCurve)
	}
	if a.morphCurve != 0 {
		w.WriteDU(a.morphCurve)
	}
	if a.visualScale != 0 {
		w.WriteF(a.visualScale)
		w.WriteF(a.visualScaleTarget)
	}
	for _, p := range a.path {
		w.WriteF(p[0])
		w.WriteF(p[1])
		w.WriteF(p[2])
	}
	w.WriteDU(a.elapsed)
	if a.facingCurve != 0 {
		w.WriteDU(a.facingCurve)
	}
	if a.scaleCurve != 0 {
		w.WriteDU(a.scaleCurve)
	}
}

func (l *livingPart) writeValues(w *packet.Writer) {
	s := &l.speeds
	w.WriteF(l.pos.Y)
	if l.spline != nil {
		l.spline.WriteCreateData(w)
	}
	w.WriteF(s[movement.SpeedFlight])
	w.WriteF(s[movement.SpeedRun])
	w.WriteGuidBytes(l.guid, 4)
	w.WriteF(s[movement.SpeedWalk])
	if l.hasFall {
		if l.fall.HasDirection {
			w.WriteF(l.fall.XYSpeed)
			w.WriteF(l.fall.CosAngle)
			w.WriteF(l.fall.SinAngle)
		}
		w.WriteDU(l.fall.Time)
		w.WriteF(l.fall.JumpVelocity)
	}
	if t := l.transport; t != nil {
		w.WriteGuidBytes(t.guid, 5)
		w.WriteC(byte(t.seat))
		w.WriteGuidBytes(t.guid, 2)
		w.WriteF(movement.NormalizeOrientation(t.offset.O))
		w.WriteGuidBytes(t.guid, 4, 7)
		if t.prevMoveTime != 0 {
			w.WriteDU(t.prevMoveTime)
		}
		w.WriteDU(t.time)
		w.WriteF(t.offset.Y)
		w.WriteGuidBytes(t.guid, 3, 6)
		w.WriteF(t.offset.X)
		w.WriteGuidBytes(t.guid, 0)
		if t.vehicleRecID != 0 {
			w.WriteDU(t.vehicleRecID)
		}
		w.WriteGuidBytes(t.guid, 1)
		w.WriteF(t.offset.Z)
	}
	w.WriteGuidBytes(l.guid, 5)
	if l.hasMoveTime {
		w.WriteDU(l.moveTime)
	}
	if l.moveIndex != 0 {
		w.WriteDU(l.moveIndex)
	}
	w.WriteGuidBytes(l.guid, 1)
	w.WriteF(s[movement.SpeedSwimBack])
	w.WriteF(s[movement.SpeedFlightBack])
	w.WriteGuidBytes(l.guid, 6)
	w.WriteF(s[movement.SpeedTurnRate])
	w.WriteF(l.pos.X)
	if l.hasOrientation {
		w.WriteF(movement.NormalizeOrientation(l.pos.O))
	}
	w.WriteF(s[movement.SpeedPitchRate])
	w.WriteF(s[movement.SpeedSwim])
	if l.hasPitch {
		w.WriteF(l.pitch)
	}
	w.WriteGuidBytes(l.guid, 3)
	if l.hasStepUp {
		w.WriteF(l.stepUp)
	}
	w.WriteF(s[movement.SpeedRunBack])
	w.WriteGuidBytes(l.guid, 7, 2)
	w.WriteF(l.pos.Z)
	w.WriteGuidBytes(l.guid, 0)
}
