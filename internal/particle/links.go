package particle

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// linkState returns the unit vector from p toward q and the distance between
// them. A zero distance yields a zero direction.
func linkState(p, q r3.Vector) (r3.Vector, float64) {
	d := q.Sub(p)
	return d.Normalize(), d.Norm()
}

// Cable keeps two particles from separating further than MaxLength.
type Cable struct {
	A, B        Handle
	MaxLength   float64
	Restitution float64
}

func NewCable(a *Arena, p, q Handle, maxLength, restitution float64) (*Cable, error) {
	if err := a.check(p, q); err != nil {
		return nil, err
	}
	if maxLength < 0 {
		return nil, fmt.Errorf("%w: cable length %g is negative", dynamo.ErrInvalidArgument, maxLength)
	}
	return &Cable{A: p, B: q, MaxLength: maxLength, Restitution: restitution}, nil
}

func (c *Cable) AddContact(a *Arena, dst []Contact) int {
	if len(dst) == 0 {
		return 0
	}
	n, length := linkState(a.Get(c.A).Position, a.Get(c.B).Position)
	if length < c.MaxLength {
		return 0
	}
	dst[0] = Contact{A: c.A, B: c.B, Normal: n, Penetration: length - c.MaxLength, Restitution: c.Restitution}
	return 1
}

// Rod holds two particles at exactly Length apart. Rods never bounce.
type Rod struct {
	A, B   Handle
	Length float64
}

func NewRod(a *Arena, p, q Handle, length float64) (*Rod, error) {
	if err := a.check(p, q); err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: rod length %g is negative", dynamo.ErrInvalidArgument, length)
	}
	return &Rod{A: p, B: q, Length: length}, nil
}

func (r *Rod) AddContact(a *Arena, dst []Contact) int {
	if len(dst) == 0 {
		return 0
	}
	n, length := linkState(a.Get(r.A).Position, a.Get(r.B).Position)
	c, ok := rodContact(n, length, r.Length)
	if !ok {
		return 0
	}
	c.A, c.B = r.A, r.B
	dst[0] = c
	return 1
}

// rodContact builds the contact for a rod whose A end sees its partner along
// n at distance length. A stretched rod pulls A toward the partner and a
// compressed one pushes it away.
func rodContact(n r3.Vector, length, rest float64) (Contact, bool) {
	if math.Abs(length-rest) < dynamo.Epsilon {
		return Contact{}, false
	}
	if length > rest {
		return Contact{Normal: n, Penetration: length - rest, Rigid: true}, true
	}
	return Contact{Normal: n.Mul(-1), Penetration: rest - length, Rigid: true}, true
}

// AnchoredCable tethers a particle to a world-space point.
type AnchoredCable struct {
	P           Handle
	anchor      *r3.Vector
	MaxLength   float64
	Restitution float64
}

func NewAnchoredCable(a *Arena, p Handle, anchor *r3.Vector, maxLength, restitution float64) (*AnchoredCable, error) {
	if err := a.check(p); err != nil {
		return nil, err
	}
	if anchor == nil {
		return nil, fmt.Errorf("%w: anchored cable needs an anchor", dynamo.ErrInvalidArgument)
	}
	return &AnchoredCable{P: p, anchor: anchor, MaxLength: maxLength, Restitution: restitution}, nil
}

func (c *AnchoredCable) Anchor() r3.Vector { return *c.anchor }

func (c *AnchoredCable) SetAnchor(anchor r3.Vector) { *c.anchor = anchor }

func (c *AnchoredCable) AddContact(a *Arena, dst []Contact) int {
	if len(dst) == 0 {
		return 0
	}
	n, length := linkState(a.Get(c.P).Position, *c.anchor)
	if length < c.MaxLength {
		return 0
	}
	dst[0] = Contact{A: c.P, B: None, Normal: n, Penetration: length - c.MaxLength, Restitution: c.Restitution}
	return 1
}

// AnchoredRod holds a particle at a fixed distance from a world-space point.
type AnchoredRod struct {
	P      Handle
	anchor *r3.Vector
	Length float64
}

func NewAnchoredRod(a *Arena, p Handle, anchor *r3.Vector, length float64) (*AnchoredRod, error) {
	if err := a.check(p); err != nil {
		return nil, err
	}
	if anchor == nil {
		return nil, fmt.Errorf("%w: anchored rod needs an anchor", dynamo.ErrInvalidArgument)
	}
	return &AnchoredRod{P: p, anchor: anchor, Length: length}, nil
}

func (r *AnchoredRod) Anchor() r3.Vector { return *r.anchor }

func (r *AnchoredRod) SetAnchor(anchor r3.Vector) { *r.anchor = anchor }

func (r *AnchoredRod) AddContact(a *Arena, dst []Contact) int {
	if len(dst) == 0 {
		return 0
	}
	n, length := linkState(a.Get(r.P).Position, *r.anchor)
	c, ok := rodContact(n, length, r.Length)
	if !ok {
		return 0
	}
	c.A, c.B = r.P, None
	dst[0] = c
	return 1
}
