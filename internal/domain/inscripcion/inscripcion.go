package inscripcion

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Inscripcion struct {
	ID        string    `json:"id"`
	EventoID  string    `json:"eventoId"`
	Nombre    string    `json:"nombre"`
	Correo    string    `json:"correo"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("inscripcion not found")

type CreateInscripcionRequest struct {
	EventoID string `json:"-"`
	Nombre   string `json:"nombre" binding:"required,min=2,max=120"`
	Correo   string `json:"correo" binding:"required,email"`
}

// factory to build an Inscripcion from the incoming DTO
func NewFromCreateRequest(req CreateInscripcionRequest) Inscripcion {
	now := time.Now().UTC()

	return Inscripcion{
		ID:        uuid.NewString(),
		EventoID:  req.EventoID,
		Nombre:    req.Nombre,
		Correo:    req.Correo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
