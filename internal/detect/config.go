package detect

// Distances in yards.
const (
	DefaultVisibilityDistance     float32 = 90
	DefaultInstanceVisibility     float32 = 170
	DefaultBattlegroundVisibility float32 = 533.333
	MaxVisibilityDistance         float32 = 533.333
	SightRangeUnit                float32 = 50
	DefaultMaxStealthDetectRange  float32 = 30
	stealthBaseDetection          int32   = 30
	stealthDetectionPerLevel      int32   = 5
	stealthRangePerPoint          float32 = 0.3
	totalStealthTypes                     = 2
	totalInvisibilityTypes                = 32
)

// GroupVisibility selects who may see a player's ghost and always detect
// a stealthed player.
type GroupVisibility int

const (
	GroupVisibilityGroup GroupVisibility = iota // same party sub-group
	GroupVisibilityRaid                         // same group of any size
	GroupVisibilityTeam                         // same team
)

// Config tunes sight distances. Zone overrides win over map overrides,
// which win over the default.
type Config struct {
	DefaultVisibility     float32
	MaxStealthDetectRange float32
	GroupVisibility       GroupVisibility
	MapVisibility         map[uint32]float32
	ZoneVisibility        map[uint32]float32
}

// DefaultConfig returns the stock distances.
func DefaultConfig() Config {
	return Config{
		DefaultVisibility:     DefaultVisibilityDistance,
		MaxStealthDetectRange: DefaultMaxStealthDetectRange,
		GroupVisibility:       GroupVisibilityGroup,
	}
}

// visibilityFor resolves the broadcast radius at a map and zone.
func (c *Config) visibilityFor(mapID, zoneID uint32) float32 {
	if d, ok := c.ZoneVisibility[zoneID]; ok && zoneID != 0 {
		return d
	}
	if d, ok := c.MapVisibility[mapID]; ok {
		return d
	}
	if c.DefaultVisibility > 0 {
		return c.DefaultVisibility
	}
	return DefaultVisibilityDistance
}
