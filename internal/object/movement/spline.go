package movement

import "github.com/l1jgo/replicore/internal/net/packet"

// FacingType selects what a moving spline keeps facing.
type FacingType uint8

const (
	FacingNone FacingType = iota
	FacingAngle
	FacingTarget
	FacingPoint
)

// Spline is an active path a unit is following. The path generator fills
// it in; the create block only snapshots it.
type Spline struct {
	ID       uint32
	Flags    uint32
	Duration int32
	Elapsed  int32
	Points   []Position

	Facing       FacingType
	FacingAngle  float32
	FacingTarget uint64
	FacingPoint  Position
}

// Finalized reports whether the unit has reached the end of the path.
func (s *Spline) Finalized() bool {
	return s == nil || s.Elapsed >= s.Duration
}

// WriteCreateBits writes the bit-packed header. Its counterpart is WriteCreateData.
func (s *Spline) WriteCreateBits(w *packet.Writer) {
	w.WriteBits(uint32(len(s.Points)), 20)
	w.WriteBits(uint32(s.Facing), 2)
}

func (s *Spline) WriteCreateData(w *packet.Writer) {
	w.WriteDU(s.ID)
	w.WriteD(s.Duration)
	w.WriteD(s.Elapsed)
	w.WriteDU(s.Flags)
	for _, p := range s.Points {
		w.WriteF(p.X)
		w.WriteF(p.Y)
		w.WriteF(p.Z)
	}
}

// WriteFacingData trails the whole movement block.
func (s *Spline) WriteFacingData(w *packet.Writer) {
	switch s.Facing {
	case FacingAngle:
		w.WriteF(s.FacingAngle)
	case FacingTarget:
		w.WriteQ(s.FacingTarget)
	case FacingPoint:
		w.WriteF(s.FacingPoint.X)
		w.WriteF(s.FacingPoint.Y)
		w.WriteF(s.FacingPoint.Z)
	}
}

// ReadCreateBits is the decoder side of WriteCreateBits.
func ReadCreateBits(r *packet.Reader) (points int, facing FacingType) {
	points = r.ReadCount(20, 12)
	facing = FacingType(r.ReadBits(2))
	return points, facing
}

// ReadCreateData is the decoder side of WriteCreateData.
func ReadCreateData(r *packet.Reader, points int, facing FacingType) *Spline {
	s := &Spline{Facing: facing}
	s.ID = r.ReadDU()
	s.Duration = r.ReadD()
	s.Elapsed = r.ReadD()
	s.Flags = r.ReadDU()
	for i := 0; i < points && r.Err() == nil; i++ {
		s.Points = append(s.Points, Position{X: r.ReadF(), Y: r.ReadF(), Z: r.ReadF()})
	}
	return s
}

// ReadFacingData is the decoder side of WriteFacingData.
func (s *Spline) ReadFacingData(r *packet.Reader) {
	switch s.Facing {
	case FacingAngle:
		s.FacingAngle = r.ReadF()
	case FacingTarget:
		s.FacingTarget = r.ReadQ()
	case FacingPoint:
		s.FacingPoint = Position{X: r.ReadF(), Y: r.ReadF(), Z: r.ReadF()}
	}
}
