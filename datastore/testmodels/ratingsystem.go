package testmodels

import (
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/recordstore/entity"
	"github.com/suparena/recordstore/registry"
	"github.com/suparena/recordstore/storagemodels"
)

type RatingSystem struct {
	entity.Base

	// Timestamp when the rating system was created.
	// Defaults to the time of the first save.
	CreatedAt *strfmt.DateTime

	// A description of the rating system.
	Description *string

	// Name of the rating system.
	// Required: true
	Name *string

	// site Url
	SiteURL *string

	// Number of rated players.
	Players *int64
}

// NewRatingSystem returns a rating system carrying only its id.
func NewRatingSystem(id storagemodels.ID) *RatingSystem {
	return &RatingSystem{Base: entity.NewBase(id)}
}

func init() {
	registry.RegisterFactory[*RatingSystem](NewRatingSystem)

	registry.MustRegister(
		registry.Attribute[*RatingSystem]{
			Source:   "name",
			Stored:   "Name",
			Required: true,
			Get:      func(r *RatingSystem) (any, bool) { return deref(r.Name) },
			Set:      setString(func(r *RatingSystem) **string { return &r.Name }),
		},
		registry.Attribute[*RatingSystem]{
			Source: "description",
			Stored: "Description",
			Get:    func(r *RatingSystem) (any, bool) { return deref(r.Description) },
			Set:    setString(func(r *RatingSystem) **string { return &r.Description }),
		},
		registry.Attribute[*RatingSystem]{
			Source: "siteURL",
			Stored: "SiteUrl",
			Get:    func(r *RatingSystem) (any, bool) { return deref(r.SiteURL) },
			Set:    setString(func(r *RatingSystem) **string { return &r.SiteURL }),
		},
		registry.Attribute[*RatingSystem]{
			Source: "createdAt",
			Stored: "CreatedAt",
			Default: registry.Producer(func() any {
				return strfmt.DateTime(time.Now().UTC()).String()
			}),
			Get: func(r *RatingSystem) (any, bool) {
				if r.CreatedAt == nil {
					return nil, false
				}
				return r.CreatedAt.String(), true
			},
			Set: func(r *RatingSystem, v any) error {
				dt, err := entity.AsDateTime(v)
				if err != nil {
					return err
				}
				r.CreatedAt = &dt
				return nil
			},
		},
		registry.Attribute[*RatingSystem]{
			Source:  "players",
			Stored:  "Players",
			Default: registry.Constant(int64(0)),
			Get:     func(r *RatingSystem) (any, bool) { return deref(r.Players) },
			Set:     setInt(func(r *RatingSystem) **int64 { return &r.Players }),
		},
	)
}
