package evento

import (
	"errors"
	"time"
)

type Evento struct {
	ID               string    `json:"id"`
	Nombre           string    `json:"nombre"`
	Descripcion      string    `json:"descripcion,omitempty"`
	Lugar            string    `json:"lugar"`
	FechaInicio      time.Time `json:"fechaInicio"`
	FechaFinal       time.Time `json:"fechaFinal"`
	OrganizadorID    string    `json:"organizadorId"`
	NumeroAsistentes int       `json:"numeroAsistentes"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// optional fields are pointers, nil means "not filtered on"
type Filter struct {
	Lugar         *string
	OrganizadorID *string
	Desde         *time.Time
	Hasta         *time.Time
}

var ErrNotFound = errors.New("evento not found")

// booking conflicts surfaced by the create flow
var ErrLugarOcupado = errors.New("venue already booked in this date/time range")
var ErrOrganizadorOcupado = errors.New("organizer already has an event in this date/time range")

// numeroAsistentes is server-computed, so it is absent here on purpose.
type CreateEventoRequest struct {
	Nombre        string    `json:"nombre" binding:"required,min=3,max=120"`
	Descripcion   string    `json:"descripcion" binding:"omitempty,max=1000"`
	Lugar         string    `json:"lugar" binding:"required,min=2,max=120"`
	FechaInicio   time.Time `json:"fechaInicio" binding:"required"`
	FechaFinal    time.Time `json:"fechaFinal" binding:"required"`
	OrganizadorID string    `json:"organizadorId" binding:"required,uuid"`
}

// partial patch, nil fields are left untouched
type PatchEventoRequest struct {
	Nombre        *string    `json:"nombre" binding:"omitempty,min=3,max=120"`
	Descripcion   *string    `json:"descripcion" binding:"omitempty,max=1000"`
	Lugar         *string    `json:"lugar" binding:"omitempty,min=2,max=120"`
	FechaInicio   *time.Time `json:"fechaInicio" binding:"omitempty"`
	FechaFinal    *time.Time `json:"fechaFinal" binding:"omitempty"`
	OrganizadorID *string    `json:"organizadorId" binding:"omitempty,uuid"`
}

// full overwrite payload for PUT
type ReplaceEventoRequest struct {
	Nombre        string    `json:"nombre" binding:"required,min=3,max=120"`
	Descripcion   string    `json:"descripcion" binding:"omitempty,max=1000"`
	Lugar         string    `json:"lugar" binding:"required,min=2,max=120"`
	FechaInicio   time.Time `json:"fechaInicio" binding:"required"`
	FechaFinal    time.Time `json:"fechaFinal" binding:"required"`
	OrganizadorID string    `json:"organizadorId" binding:"required,uuid"`
}

// IsEmpty reports whether a patch carries no fields at all.
func (p PatchEventoRequest) IsEmpty() bool {
	return p.Nombre == nil &&
		p.Descripcion == nil &&
		p.Lugar == nil &&
		p.FechaInicio == nil &&
		p.FechaFinal == nil &&
		p.OrganizadorID == nil
}

// Overlaps implements the closed-interval booking test used by the conflict
// checks: existing.fechaInicio <= new.fechaFinal AND existing.fechaFinal >= new.fechaInicio.
// Touching boundaries count as overlapping.
func (e Evento) Overlaps(inicio, final time.Time) bool {
	return !e.FechaInicio.After(final) && !e.FechaFinal.Before(inicio)
}
