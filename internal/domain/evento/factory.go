package evento

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateEventoRequest) Evento {
	now := time.Now().UTC()

	return Evento{
		ID:            uuid.NewString(),
		Nombre:        req.Nombre,
		Descripcion:   req.Descripcion,
		Lugar:         req.Lugar,
		FechaInicio:   req.FechaInicio,
		FechaFinal:    req.FechaFinal,
		OrganizadorID: req.OrganizadorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ApplyPatch copies the non-nil patch fields onto e and bumps updatedAt.
func ApplyPatch(e Evento, p PatchEventoRequest) Evento {
	if p.Nombre != nil {
		e.Nombre = *p.Nombre
	}
	if p.Descripcion != nil {
		e.Descripcion = *p.Descripcion
	}
	if p.Lugar != nil {
		e.Lugar = *p.Lugar
	}
	if p.FechaInicio != nil {
		e.FechaInicio = *p.FechaInicio
	}
	if p.FechaFinal != nil {
		e.FechaFinal = *p.FechaFinal
	}
	if p.OrganizadorID != nil {
		e.OrganizadorID = *p.OrganizadorID
	}
	e.UpdatedAt = time.Now().UTC()

	return e
}

// ApplyReplace overwrites every client-settable field, keeping the stored
// id and createdAt.
func ApplyReplace(e Evento, req ReplaceEventoRequest) Evento {
	e.Nombre = req.Nombre
	e.Descripcion = req.Descripcion
	e.Lugar = req.Lugar
	e.FechaInicio = req.FechaInicio
	e.FechaFinal = req.FechaFinal
	e.OrganizadorID = req.OrganizadorID
	e.UpdatedAt = time.Now().UTC()

	return e
}

// Matches reports whether the evento satisfies every set filter field.
func (f Filter) Matches(e Evento) bool {
	if f.Lugar != nil && e.Lugar != *f.Lugar {
		return false
	}
	if f.OrganizadorID != nil && e.OrganizadorID != *f.OrganizadorID {
		return false
	}
	if f.Desde != nil && e.FechaInicio.Before(*f.Desde) {
		return false
	}
	if f.Hasta != nil && e.FechaInicio.After(*f.Hasta) {
		return false
	}
	return true
}
