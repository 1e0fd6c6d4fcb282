package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eventosapp/eventos-api/internal/cache"
	"github.com/eventosapp/eventos-api/internal/config"
	"github.com/eventosapp/eventos-api/internal/domain/evento"
	"github.com/eventosapp/eventos-api/internal/domain/inscripcion"
	"github.com/eventosapp/eventos-api/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventosRepo interface {
	CountOverlappingByLugar(ctx context.Context, lugar string, inicio, final time.Time) (int, error)
	CountOverlappingByOrganizador(ctx context.Context, organizadorID string, inicio, final time.Time) (int, error)
	Create(ctx context.Context, req evento.CreateEventoRequest) (evento.Evento, error)
	Count(ctx context.Context, f evento.Filter) (int, error)
	List(ctx context.Context, f evento.Filter) ([]evento.Evento, error)
	GetByID(ctx context.Context, id string) (evento.Evento, error)
	UpdateAll(ctx context.Context, patch evento.PatchEventoRequest, f evento.Filter) (int, error)
	UpdateByID(ctx context.Context, id string, patch evento.PatchEventoRequest) error
	ReplaceByID(ctx context.Context, id string, req evento.ReplaceEventoRequest) error
	Delete(ctx context.Context, id string) error
}

// the slice of the inscripciones repo the cascade delete needs
type InscripcionesCascader interface {
	ListByEvento(ctx context.Context, eventoID string) ([]inscripcion.Inscripcion, error)
	Delete(ctx context.Context, id string) error
}

type EventosHandler struct {
	repo          EventosRepo
	inscripciones InscripcionesCascader
	cache         cache.Store
	prom          *observability.Prom
}

func NewEventosHandler(repo EventosRepo, inscripciones InscripcionesCascader) *EventosHandler {
	return &EventosHandler{repo: repo, inscripciones: inscripciones}
}

func NewEventosHandlerWithCache(repo EventosRepo, inscripciones InscripcionesCascader, c cache.Store, prom *observability.Prom) *EventosHandler {
	return &EventosHandler{repo: repo, inscripciones: inscripciones, cache: c, prom: prom}
}

// CreateEvento runs the two booking-conflict checks before persisting: venue
// first, then organizer. The checks and the insert are separate statements, so
// two concurrent creates for the same window can both pass; see DESIGN.md.
func (h *EventosHandler) CreateEvento(ctx *gin.Context) {
	var req evento.CreateEventoRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.FechaFinal.Before(req.FechaInicio) {
		RespondBadRequest(ctx, "fechaFinal must not be before fechaInicio", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	n, err := h.repo.CountOverlappingByLugar(cctx, req.Lugar, req.FechaInicio, req.FechaFinal)

	if err != nil {
		RespondInternal(ctx, "Could not create evento")
		return
	}

	if n > 0 {
		h.countConflict("lugar")
		RespondConflict(ctx, "lugar_ocupado", evento.ErrLugarOcupado.Error())
		return
	}

	n, err = h.repo.CountOverlappingByOrganizador(cctx, req.OrganizadorID, req.FechaInicio, req.FechaFinal)

	if err != nil {
		RespondInternal(ctx, "Could not create evento")
		return
	}

	if n > 0 {
		h.countConflict("organizador")
		RespondConflict(ctx, "organizador_ocupado", evento.ErrOrganizadorOcupado.Error())
		return
	}

	created, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create evento")
		return
	}

	h.invalidate(ctx)
	ctx.JSON(http.StatusOK, created)
}

func (h *EventosHandler) CountEventos(ctx *gin.Context) {
	f, ok := parseFilter(ctx)
	if !ok {
		return
	}

	if body, hit := h.cached(ctx); hit {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	total, err := h.repo.Count(cctx, f)

	if err != nil {
		RespondInternal(ctx, "Could not count eventos")
		return
	}

	h.respondCached(ctx, gin.H{"count": total})
}

func (h *EventosHandler) ListEventos(ctx *gin.Context) {
	f, ok := parseFilter(ctx)
	if !ok {
		return
	}

	if body, hit := h.cached(ctx); hit {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	eventos, err := h.repo.List(cctx, f)

	if err != nil {
		RespondInternal(ctx, "Could not list eventos")
		return
	}

	h.respondCached(ctx, eventos)
}

// UpdateAllEventos patches every evento matching the filter and reports how
// many rows were touched. Conflict checks are not re-run here.
func (h *EventosHandler) UpdateAllEventos(ctx *gin.Context) {
	var patch evento.PatchEventoRequest

	if !BindJSON(ctx, &patch) {
		return
	}

	f, ok := parseFilter(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	updated, err := h.repo.UpdateAll(cctx, patch, f)

	if err != nil {
		RespondInternal(ctx, "Could not update eventos")
		return
	}

	h.invalidate(ctx)
	ctx.JSON(http.StatusOK, gin.H{"count": updated})
}

func (h *EventosHandler) GetEventoByID(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, evento.ErrNotFound) {
			RespondNotFound(ctx, "Evento not found")
			return
		}
		RespondInternal(ctx, "Could not fetch evento")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}

func (h *EventosHandler) UpdateEventoByID(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var patch evento.PatchEventoRequest

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.UpdateByID(cctx, id, patch)

	if err != nil {
		if errors.Is(err, evento.ErrNotFound) {
			RespondNotFound(ctx, "Evento not found")
			return
		}
		RespondInternal(ctx, "Could not update evento")
		return
	}

	h.invalidate(ctx)
	ctx.Status(http.StatusNoContent)
}

func (h *EventosHandler) ReplaceEventoByID(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req evento.ReplaceEventoRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.FechaFinal.Before(req.FechaInicio) {
		RespondBadRequest(ctx, "fechaFinal must not be before fechaInicio", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.ReplaceByID(cctx, id, req)

	if err != nil {
		if errors.Is(err, evento.ErrNotFound) {
			RespondNotFound(ctx, "Evento not found")
			return
		}
		RespondInternal(ctx, "Could not replace evento")
		return
	}

	h.invalidate(ctx)
	ctx.Status(http.StatusNoContent)
}

// DeleteEvento removes the evento's inscripciones one by one, then the evento
// itself. The steps are independent deletes with no wrapping transaction, so a
// late failure can leave the cascade partially applied; see DESIGN.md.
func (h *EventosHandler) DeleteEvento(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	inscripciones, err := h.inscripciones.ListByEvento(cctx, id)

	if err != nil {
		RespondInternal(ctx, "Could not delete evento")
		return
	}

	for _, ins := range inscripciones {
		err = h.inscripciones.Delete(cctx, ins.ID)

		if err != nil && !errors.Is(err, inscripcion.ErrNotFound) {
			RespondInternal(ctx, "Could not delete evento")
			return
		}
	}

	err = h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, evento.ErrNotFound) {
			RespondNotFound(ctx, "Evento not found")
			return
		}
		RespondInternal(ctx, "Could not delete evento")
		return
	}

	h.invalidate(ctx)
	ctx.Status(http.StatusNoContent)
}

func (h *EventosHandler) countConflict(kind string) {
	if h.prom != nil {
		h.prom.ConflictsTotal.WithLabelValues(kind).Inc()
	}
}

func (h *EventosHandler) cached(ctx *gin.Context) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	return h.cache.Get(ctx.Request.Context(), cacheKey(ctx))
}

func (h *EventosHandler) respondCached(ctx *gin.Context, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.JSON(http.StatusOK, payload)
		return
	}

	if h.cache != nil {
		h.cache.Set(ctx.Request.Context(), cacheKey(ctx), body)
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *EventosHandler) invalidate(ctx *gin.Context) {
	if h.cache != nil {
		h.cache.Invalidate(ctx.Request.Context())
	}
}

func cacheKey(ctx *gin.Context) string {
	return ctx.Request.URL.RequestURI()
}

func pathID(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		RespondBadRequest(ctx, "id must be a valid UUID", nil)
		return "", false
	}

	return id, true
}

func parseFilter(ctx *gin.Context) (evento.Filter, bool) {
	var f evento.Filter

	if v := ctx.Query("lugar"); v != "" {
		f.Lugar = &v
	}

	if v := ctx.Query("organizadorId"); v != "" {
		f.OrganizadorID = &v
	}

	if v := ctx.Query("desde"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			RespondBadRequest(ctx, "desde must be an RFC3339 timestamp", nil)
			return evento.Filter{}, false
		}
		f.Desde = &t
	}

	if v := ctx.Query("hasta"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			RespondBadRequest(ctx, "hasta must be an RFC3339 timestamp", nil)
			return evento.Filter{}, false
		}
		f.Hasta = &t
	}

	return f, true
}
