package stance

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/wrenchworks/stancekit/polytope"
	"github.com/wrenchworks/stancekit/spatialmath"
)

// ContactRole names one of the fixed end-effector slots a contact can be
// assigned to.
type ContactRole int

// The supported contact roles, in the deterministic order used when stacking
// per-contact systems.
const (
	LeftFoot ContactRole = iota
	RightFoot
	LeftHand
	RightHand
	numRoles
)

func (r ContactRole) String() string {
	switch r {
	case LeftFoot:
		return "left_foot"
	case RightFoot:
		return "right_foot"
	case LeftHand:
		return "left_hand"
	case RightHand:
		return "right_hand"
	default:
		return "unknown"
	}
}

// Roles returns all contact roles in stacking order.
func Roles() []ContactRole {
	return []ContactRole{LeftFoot, RightFoot, LeftHand, RightHand}
}

// ContactSet maps each contact role to an optional engaged Contact. Role
// absence is explicit: a role without a contact simply takes no part in any
// aggregate computation.
type ContactSet struct {
	contacts [numRoles]*Contact
}

// NewContactSet returns a set with no roles engaged.
func NewContactSet() *ContactSet {
	return &ContactSet{}
}

// SetContact engages (or, with nil, releases) the contact for a role.
func (cs *ContactSet) SetContact(role ContactRole, c *Contact) {
	cs.contacts[role] = c
}

// Contact returns the contact engaged for the role, if any.
func (cs *ContactSet) Contact(role ContactRole) (*Contact, bool) {
	c := cs.contacts[role]
	return c, c != nil
}

// Engaged returns the roles with a contact engaged, in stacking order.
func (cs *ContactSet) Engaged() []ContactRole {
	var engaged []ContactRole
	for _, role := range Roles() {
		if cs.contacts[role] != nil {
			engaged = append(engaged, role)
		}
	}
	return engaged
}

// Contacts returns the engaged contacts in stacking order.
func (cs *ContactSet) Contacts() []*Contact {
	var contacts []*Contact
	for _, role := range Roles() {
		if c := cs.contacts[role]; c != nil {
			contacts = append(contacts, c)
		}
	}
	return contacts
}

// NumContacts returns the number of engaged contacts.
func (cs *ContactSet) NumContacts() int {
	return len(cs.Contacts())
}

// WrenchSpan stacks the world-frame friction cone generators of every engaged
// contact about the reference point ref.
func (cs *ContactSet) WrenchSpan(ref r3.Vector) (*mat.Dense, error) {
	contacts := cs.Contacts()
	if len(contacts) == 0 {
		return nil, ErrInsufficientContacts
	}
	total := 0
	spans := make([]*mat.Dense, 0, len(contacts))
	for _, c := range contacts {
		s := c.WorldWrenchSpan(ref)
		_, n := s.Dims()
		total += n
		spans = append(spans, s)
	}
	out := mat.NewDense(6, total, nil)
	col := 0
	for _, s := range spans {
		_, n := s.Dims()
		out.Slice(0, 6, col, col+n).(*mat.Dense).Copy(s)
		col += n
	}
	return out, nil
}

// WrenchInequalities computes the contact wrench cone of the whole set about
// the reference point ref: the matrix A such that A*w <= 0 exactly when the net
// wrench w is transmissible through some distribution of contact forces.
func (cs *ContactSet) WrenchInequalities(ref r3.Vector) (*mat.Dense, error) {
	span, err := cs.WrenchSpan(ref)
	if err != nil {
		return nil, err
	}
	faces, err := polytope.FaceOfSpan(span)
	if err != nil {
		return nil, errors.Wrap(ErrDegenerateGeometry, err.Error())
	}
	return faces, nil
}

// GraspMatrix maps the stacked local contact wrenches to a single net wrench
// about the reference point ref, one 6x6 transport block per engaged contact.
func (cs *ContactSet) GraspMatrix(ref r3.Vector) (*mat.Dense, error) {
	contacts := cs.Contacts()
	if len(contacts) == 0 {
		return nil, ErrInsufficientContacts
	}
	g := mat.NewDense(6, 6*len(contacts), nil)
	for i, c := range contacts {
		g.Slice(0, 6, 6*i, 6*i+6).(*mat.Dense).Copy(c.GraspMatrix(ref))
	}
	return g, nil
}

// WrenchInequalitiesBlockDiag stacks the per-contact local cone half-spaces
// into one block diagonal system over the stacked local wrench variables.
func (cs *ContactSet) WrenchInequalitiesBlockDiag() (*mat.Dense, error) {
	contacts := cs.Contacts()
	if len(contacts) == 0 {
		return nil, ErrInsufficientContacts
	}
	rows := 0
	for _, c := range contacts {
		r, _ := c.WrenchInequalities().Dims()
		rows += r
	}
	f := mat.NewDense(rows, 6*len(contacts), nil)
	row := 0
	for i, c := range contacts {
		fi := c.WrenchInequalities()
		r, _ := fi.Dims()
		f.Slice(row, row+r, 6*i, 6*i+6).(*mat.Dense).Copy(fi)
		row += r
	}
	return f, nil
}

// FindSupportingWrenches distributes the target net wrench (expressed about
// ref) among the engaged contacts so that every per-contact wrench satisfies
// its own friction cone. It returns one feasible assignment, each wrench in the
// world frame about its own contact point, or ErrInfeasible when the target is
// outside the aggregate feasible set.
func (cs *ContactSet) FindSupportingWrenches(
	target spatialmath.Wrench,
	ref r3.Vector,
) (map[ContactRole]spatialmath.Wrench, error) {
	contacts := cs.Contacts()
	if len(contacts) == 0 {
		return nil, ErrInsufficientContacts
	}
	fBlock, err := cs.WrenchInequalitiesBlockDiag()
	if err != nil {
		return nil, err
	}
	grasp, err := cs.GraspMatrix(ref)
	if err != nil {
		return nil, err
	}

	nVar := 6 * len(contacts)
	fRows, _ := fBlock.Dims()
	x, err := polytope.SolveLP(make([]float64, nVar), fBlock, make([]float64, fRows), grasp, target.Slice())
	if err != nil {
		if errors.Is(err, polytope.ErrLPInfeasible) {
			return nil, errors.Wrap(ErrInfeasible, err.Error())
		}
		return nil, err
	}

	out := make(map[ContactRole]spatialmath.Wrench, len(contacts))
	i := 0
	for _, role := range Roles() {
		c := cs.contacts[role]
		if c == nil {
			continue
		}
		local := spatialmath.NewWrenchFromSlice(x[6*i : 6*i+6])
		rot := c.Pose().Rotation()
		out[role] = spatialmath.Wrench{
			Force:  rot.Mul(local.Force),
			Torque: rot.Mul(local.Torque),
		}
		i++
	}
	return out, nil
}
