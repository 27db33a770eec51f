package area

import (
	"fmt"

	"github.com/redhaven/colony/internal/domain/geom"
	"github.com/redhaven/colony/internal/domain/player"
)

// Rock is an inert obstacle. It blocks movement; interacting with it only
// names it.
type Rock struct {
	Label  string    `json:"name" yaml:"name"`
	HitBox geom.Rect `json:"hit_box" yaml:"hit_box"`
	Radius float64   `json:"interaction_radius" yaml:"interaction_radius"`

	sprite string
}

// NewRock places a rock that can be inspected from radius away.
func NewRock(name string, hitBox geom.Rect, radius float64) *Rock {
	return &Rock{Label: name, HitBox: hitBox, Radius: radius}
}

func (r *Rock) Kind() Kind                 { return KindRock }
func (r *Rock) Name() string               { return r.Label }
func (r *Rock) CollisionArea() geom.Rect   { return r.HitBox }
func (r *Rock) InteractionArea() geom.Rect { return r.HitBox.Pad(r.Radius) }

func (r *Rock) Interact(*player.Player) (Outcome, error) {
	return Outcome{Action: "inspect"}, nil
}

func (r *Rock) Render() Drawable {
	return Drawable{Position: r.HitBox.Origin(), Sprite: r.sprite}
}

func (r *Rock) Attach(assets Assets) error {
	key := "rocks/" + r.Label
	ref, ok := assets.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrAssetMissing, key)
	}
	r.sprite = ref
	return nil
}

// Equal compares persisted fields.
func (r *Rock) Equal(o *Rock) bool {
	return r.Label == o.Label && r.HitBox == o.HitBox && r.Radius == o.Radius
}
