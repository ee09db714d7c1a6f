package force

import "slices"

// Names under which the standard forces are registered.
const (
	NameLink      = "link"
	NameCollision = "collision"
	NameRadial    = "radial"
	NameAngular   = "angular"
	NameSector    = "sector"
	NameSibling   = "sibling"
	NameFloating  = "floating"
	NameRepulsion = "level1Repulsion"
)

// Composer is an ordered, named collection of forces.
type Composer struct {
	names  []string
	forces []Force
}

// NewComposer returns an empty composer.
func NewComposer() *Composer { return &Composer{} }

// Register adds f under name. Registering an existing name replaces the
// force in place and keeps its position.
func (c *Composer) Register(name string, f Force) *Composer {
	if i := slices.Index(c.names, name); i >= 0 {
		c.forces[i] = f
		return c
	}
	c.names = append(c.names, name)
	c.forces = append(c.forces, f)
	return c
}

// Remove drops the force registered under name, if any.
func (c *Composer) Remove(name string) {
	if i := slices.Index(c.names, name); i >= 0 {
		c.names = slices.Delete(c.names, i, i+1)
		c.forces = slices.Delete(c.forces, i, i+1)
	}
}

// Get returns the force registered under name.
func (c *Composer) Get(name string) (Force, bool) {
	if i := slices.Index(c.names, name); i >= 0 {
		return c.forces[i], true
	}
	return nil, false
}

// Names returns the registered names in application order.
func (c *Composer) Names() []string { return slices.Clone(c.names) }

// Apply runs every force once, in registration order.
func (c *Composer) Apply(ctx *Context, alpha float64) {
	for _, f := range c.forces {
		f.Apply(ctx, alpha)
	}
}

// Config holds the tunable inputs of the standard force set.
type Config struct {
	RadialStrength  float64
	CollisionRadius float64
	AvatarSize      float64
}

// Standard returns the full force set in the order the map applies it.
func Standard(cfg Config) *Composer {
	return NewComposer().
		Register(NameLink, NewLink()).
		Register(NameCollision, NewCollide(cfg.CollisionRadius)).
		Register(NameRadial, NewRadial(cfg.RadialStrength, cfg.AvatarSize/2+50)).
		Register(NameAngular, NewAngular()).
		Register(NameSector, NewSector()).
		Register(NameSibling, NewSibling()).
		Register(NameFloating, NewFloating()).
		Register(NameRepulsion, NewRepulsion())
}
