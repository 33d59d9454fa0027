// Package movement holds the movement state that the create block
// serializes for living objects. Physics and path integration live
// elsewhere; this is only the snapshot they leave behind.
package movement

import "math"

// Flags are the 30 wire bits of a living object's movement state.
type Flags uint32

const (
	FlagNone         Flags = 0x00000000
	FlagForward      Flags = 0x00000001
	FlagBackward     Flags = 0x00000002
	FlagStrafeLeft   Flags = 0x00000004
	FlagStrafeRight  Flags = 0x00000008
	FlagLeft         Flags = 0x00000010
	FlagRight        Flags = 0x00000020
	FlagPitchUp      Flags = 0x00000040
	FlagPitchDown    Flags = 0x00000080
	FlagWalking      Flags = 0x00000100
	FlagDisableGrav  Flags = 0x00000200
	FlagRoot         Flags = 0x00000400
	FlagFalling      Flags = 0x00000800
	FlagFallingFar   Flags = 0x00001000
	FlagPendingStop  Flags = 0x00002000
	FlagAscending    Flags = 0x00004000
	FlagDescending   Flags = 0x00008000
	FlagSwimming     Flags = 0x00100000
	FlagCanFly       Flags = 0x00800000
	FlagFlying       Flags = 0x01000000
	FlagFallingSlow  Flags = 0x04000000
	FlagHover        Flags = 0x08000000
	FlagWaterWalking Flags = 0x10000000

	// Bits a creature may carry in a create block. Anything else makes the
	// client drop the packet.
	FlagMaskCreatureAllowed = FlagForward | FlagDisableGrav | FlagRoot | FlagSwimming |
		FlagCanFly | FlagWaterWalking | FlagFallingSlow | FlagHover
)

// ExtraFlags are the 13 wire bits of secondary movement state.
type ExtraFlags uint16

const (
	ExtraNoStrafe             ExtraFlags = 0x0001
	ExtraNoJumping            ExtraFlags = 0x0002
	ExtraFullSpeedTurning     ExtraFlags = 0x0004
	ExtraFullSpeedPitching    ExtraFlags = 0x0008
	ExtraAlwaysAllowPitching  ExtraFlags = 0x0010
	ExtraInterpolatedMovement ExtraFlags = 0x0400
	ExtraInterpolatedTurning  ExtraFlags = 0x0800
	ExtraInterpolatedPitching ExtraFlags = 0x1000
)

// Position is a point plus facing.
type Position struct {
	X, Y, Z, O float32
}

// NormalizeOrientation maps o into [0, 2π).
func NormalizeOrientation(o float32) float32 {
	if o < 0 {
		mod := float32(math.Mod(float64(-o), 2*math.Pi))
		return float32(2*math.Pi) - mod
	}
	return float32(math.Mod(float64(o), 2*math.Pi))
}

// NormalizePitch maps p into [-π, π].
func NormalizePitch(p float32) float32 {
	if p > -math.Pi && p < math.Pi {
		return p
	}
	return NormalizeOrientation(p+math.Pi) - math.Pi
}

// SpeedType indexes a Speeds table.
type SpeedType int

const (
	SpeedWalk SpeedType = iota
	SpeedRun
	SpeedRunBack
	SpeedSwim
	SpeedSwimBack
	SpeedTurnRate
	SpeedFlight
	SpeedFlightBack
	SpeedPitchRate
	MaxSpeedType
)

// Speeds are per movement type rates in yards (or radians) per second.
type Speeds [MaxSpeedType]float32

// BaseSpeeds are the rates of an unmodified unit.
var BaseSpeeds = Speeds{2.5, 7.0, 4.5, 4.722222, 2.5, math.Pi, 7.0, 4.5, math.Pi}

// TransportInfo attaches an object to a moving transport.
type TransportInfo struct {
	GUID         uint64
	Offset       Position
	Seat         int8
	Time         uint32
	PrevMoveTime uint32 // sent only when non-zero
	VehicleRecID uint32 // sent only when non-zero
}

// FallInfo describes an in-progress fall or jump.
type FallInfo struct {
	Time         uint32
	JumpVelocity float32
	HasDirection bool
	SinAngle     float32
	CosAngle     float32
	XYSpeed      float32
}

// Info is the full movement snapshot of a living or attached object.
type Info struct {
	Flags      Flags
	ExtraFlags ExtraFlags

	Transport TransportInfo

	HasPitch bool
	Pitch    float32

	HasFall bool
	Fall    FallInfo

	HasStepUp         bool
	StepUpStartHeight float32

	HasMoveTime        bool
	MoveIndex          uint32
	RemoteTimeValid    bool
	HasSpline          bool
	HeightChangeFailed bool
}

func (m *Info) HasTransport() bool { return m.Transport.GUID != 0 }

func (m *Info) AddFlag(f Flags)      { m.Flags |= f }
func (m *Info) RemoveFlag(f Flags)   { m.Flags &^= f }
func (m *Info) HasFlag(f Flags) bool { return m.Flags&f != 0 }

// ClearTransport detaches the object.
func (m *Info) ClearTransport() { m.Transport = TransportInfo{} }

// WireFlags returns the movement flags as they may appear in a create block.
func (m *Info) WireFlags(creature bool) Flags {
	f := m.Flags
	if creature {
		return f & FlagMaskCreatureAllowed
	}
	if f&(FlagFlying|FlagCanFly) != 0 {
		f &^= FlagFalling | FlagFallingFar | FlagFallingSlow
	}
	if m.ExtraFlags&ExtraInterpolatedTurning == 0 {
		f &^= FlagFalling
	}
	return f
}
