package stance

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/wrenchworks/stancekit/spatialmath"
)

// ContactConfigJSON is the persisted form of a contact: shape points, friction
// and pose. Derived friction cone matrices are never persisted; they are
// recomputed when the contact is rebuilt.
type ContactConfigJSON struct {
	Shape    [][2]float64 `json:"shape"`
	Friction float64      `json:"friction"`
	Pos      [3]float64   `json:"pos"`
	RPY      [3]float64   `json:"rpy"`
}

// COMConfigJSON is the persisted form of the COM target.
type COMConfigJSON struct {
	Pos  [3]float64 `json:"pos"`
	Mass float64    `json:"mass,omitempty"`
}

// StanceConfigJSON represents all supported fields in a stance JSON file. Every
// contact role is optional; an absent field means the role is not engaged.
type StanceConfigJSON struct {
	COM       *COMConfigJSON     `json:"com,omitempty"`
	LeftFoot  *ContactConfigJSON `json:"left_foot,omitempty"`
	RightFoot *ContactConfigJSON `json:"right_foot,omitempty"`
	LeftHand  *ContactConfigJSON `json:"left_hand,omitempty"`
	RightHand *ContactConfigJSON `json:"right_hand,omitempty"`
}

func (cfg *ContactConfigJSON) parseContact() (*Contact, error) {
	shape := make([]r2.Point, 0, len(cfg.Shape))
	for _, p := range cfg.Shape {
		shape = append(shape, r2.Point{X: p[0], Y: p[1]})
	}
	pose := spatialmath.NewPose(
		r3.Vector{X: cfg.Pos[0], Y: cfg.Pos[1], Z: cfg.Pos[2]},
		&spatialmath.EulerAngles{Roll: cfg.RPY[0], Pitch: cfg.RPY[1], Yaw: cfg.RPY[2]},
	)
	return NewContact(shape, cfg.Friction, pose)
}

func contactConfig(c *Contact) *ContactConfigJSON {
	cfg := &ContactConfigJSON{Friction: c.Friction()}
	for _, p := range c.Shape() {
		cfg.Shape = append(cfg.Shape, [2]float64{p.X, p.Y})
	}
	pt := c.Pose().Point()
	cfg.Pos = [3]float64{pt.X, pt.Y, pt.Z}
	ea := c.Pose().Rotation().EulerAngles()
	cfg.RPY = [3]float64{ea.Roll, ea.Pitch, ea.Yaw}
	return cfg
}

// ParseConfig converts the config into a Stance, rebuilding every engaged
// contact's friction cone. Errors across roles are aggregated so a bad file
// reports all of its problems at once.
func (cfg *StanceConfigJSON) ParseConfig() (*Stance, error) {
	var com PointMass
	if cfg.COM != nil {
		com = PointMass{
			Position: r3.Vector{X: cfg.COM.Pos[0], Y: cfg.COM.Pos[1], Z: cfg.COM.Pos[2]},
			Mass:     cfg.COM.Mass,
		}
	}
	s := NewStance(com)

	var err error
	for role, contactCfg := range map[ContactRole]*ContactConfigJSON{
		LeftFoot:  cfg.LeftFoot,
		RightFoot: cfg.RightFoot,
		LeftHand:  cfg.LeftHand,
		RightHand: cfg.RightHand,
	} {
		if contactCfg == nil {
			continue
		}
		contact, contactErr := contactCfg.parseContact()
		if contactErr != nil {
			err = multierr.Append(err, errors.Wrapf(contactErr, "contact %q", role))
			continue
		}
		s.SetContact(role, contact)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Config snapshots the stance's persistable state: shape, friction and pose per
// engaged contact plus the COM target.
func (s *Stance) Config() *StanceConfigJSON {
	cfg := &StanceConfigJSON{
		COM: &COMConfigJSON{
			Pos:  [3]float64{s.COM.Position.X, s.COM.Position.Y, s.COM.Position.Z},
			Mass: s.COM.Mass,
		},
	}
	if c, ok := s.Contact(LeftFoot); ok {
		cfg.LeftFoot = contactConfig(c)
	}
	if c, ok := s.Contact(RightFoot); ok {
		cfg.RightFoot = contactConfig(c)
	}
	if c, ok := s.Contact(LeftHand); ok {
		cfg.LeftHand = contactConfig(c)
	}
	if c, ok := s.Contact(RightHand); ok {
		cfg.RightHand = contactConfig(c)
	}
	return cfg
}

// UnmarshalStanceJSON parses the given JSON data into a Stance.
func UnmarshalStanceJSON(jsonData []byte) (*Stance, error) {
	cfg := &StanceConfigJSON{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal stance json")
	}
	return cfg.ParseConfig()
}

// ParseStanceJSONFile reads a given file and parses the contained stance.
func ParseStanceJSONFile(filename string) (*Stance, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read stance json file")
	}
	return UnmarshalStanceJSON(jsonData)
}

// SaveJSONFile writes the stance's persistable state to a JSON file. Saving
// then loading reproduces the same contact set and COM target.
func (s *Stance) SaveJSONFile(filename string) error {
	data, err := json.MarshalIndent(s.Config(), "", "    ")
	if err != nil {
		return err
	}
	//nolint:gosec
	return os.WriteFile(filename, data, 0o644)
}
