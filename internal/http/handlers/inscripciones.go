package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eventosapp/eventos-api/internal/config"
	"github.com/eventosapp/eventos-api/internal/domain/evento"
	"github.com/eventosapp/eventos-api/internal/domain/inscripcion"
	"github.com/gin-gonic/gin"
)

type InscripcionesRepo interface {
	Create(ctx context.Context, req inscripcion.CreateInscripcionRequest) (inscripcion.Inscripcion, error)
	ListByEvento(ctx context.Context, eventoID string) ([]inscripcion.Inscripcion, error)
	Delete(ctx context.Context, id string) error
}

// just enough of the eventos repo to 404 on a missing parent
type EventoGetter interface {
	GetByID(ctx context.Context, id string) (evento.Evento, error)
}

type InscripcionesHandler struct {
	repo    InscripcionesRepo
	eventos EventoGetter
}

func NewInscripcionesHandler(repo InscripcionesRepo, eventos EventoGetter) *InscripcionesHandler {
	return &InscripcionesHandler{repo: repo, eventos: eventos}
}

func (h *InscripcionesHandler) Register(ctx *gin.Context) {
	eventoID, ok := pathID(ctx)
	if !ok {
		return
	}

	var req inscripcion.CreateInscripcionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// URL param is the source of truth
	req.EventoID = eventoID

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	ins, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, evento.ErrNotFound) {
			RespondNotFound(ctx, "Evento not found")
			return
		}
		RespondInternal(ctx, "Could not register for evento")
		return
	}

	ctx.JSON(http.StatusOK, ins)
}

func (h *InscripcionesHandler) ListForEvento(ctx *gin.Context) {
	eventoID, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if _, err := h.eventos.GetByID(cctx, eventoID); err != nil {
		if errors.Is(err, evento.ErrNotFound) {
			RespondNotFound(ctx, "Evento not found")
			return
		}
		RespondInternal(ctx, "Could not list inscripciones")
		return
	}

	inscripciones, err := h.repo.ListByEvento(cctx, eventoID)

	if err != nil {
		RespondInternal(ctx, "Could not list inscripciones")
		return
	}

	ctx.JSON(http.StatusOK, inscripciones)
}

func (h *InscripcionesHandler) Cancel(ctx *gin.Context) {
	if _, ok := pathID(ctx); !ok {
		return
	}

	insID := ctx.Param("inscripcionId")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, insID)

	if err != nil {
		if errors.Is(err, inscripcion.ErrNotFound) {
			RespondNotFound(ctx, "Inscripcion not found")
			return
		}
		RespondInternal(ctx, "Could not cancel inscripcion")
		return
	}

	ctx.Status(http.StatusNoContent)
}
