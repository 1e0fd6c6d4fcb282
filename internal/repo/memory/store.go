package memory

import (
	"context"
	"sync"
	"time"

	"github.com/eventosapp/eventos-api/internal/domain/evento"
	"github.com/eventosapp/eventos-api/internal/domain/inscripcion"
)

// Store keeps eventos and inscripciones in maps behind one mutex. It backs the
// handler tests and the DB-less dev wiring, mirroring the postgres repos'
// behavior including NotFound mapping and the derived numeroAsistentes.
type Store struct {
	mu            sync.RWMutex
	eventos       map[string]evento.Evento
	inscripciones map[string]inscripcion.Inscripcion
}

func NewStore() *Store {
	return &Store{
		eventos:       make(map[string]evento.Evento),
		inscripciones: make(map[string]inscripcion.Inscripcion),
	}
}

func (s *Store) CountOverlappingByLugar(_ context.Context, lugar string, inicio, final time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, e := range s.eventos {
		if e.Lugar == lugar && e.Overlaps(inicio, final) {
			total++
		}
	}
	return total, nil
}

func (s *Store) CountOverlappingByOrganizador(_ context.Context, organizadorID string, inicio, final time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, e := range s.eventos {
		if e.OrganizadorID == organizadorID && e.Overlaps(inicio, final) {
			total++
		}
	}
	return total, nil
}

func (s *Store) Create(_ context.Context, req evento.CreateEventoRequest) (evento.Evento, error) {
	e := evento.NewFromCreateRequest(req)

	s.mu.Lock()
	s.eventos[e.ID] = e
	s.mu.Unlock()

	return e, nil
}

func (s *Store) Count(_ context.Context, f evento.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, e := range s.eventos {
		if f.Matches(e) {
			total++
		}
	}
	return total, nil
}

func (s *Store) List(_ context.Context, f evento.Filter) ([]evento.Evento, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]evento.Evento, 0, len(s.eventos))
	for _, e := range s.eventos {
		if f.Matches(e) {
			out = append(out, s.withAsistentes(e))
		}
	}
	return out, nil
}

func (s *Store) GetByID(_ context.Context, id string) (evento.Evento, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.eventos[id]
	if !ok {
		return evento.Evento{}, evento.ErrNotFound
	}

	return s.withAsistentes(e), nil
}

func (s *Store) UpdateAll(_ context.Context, patch evento.PatchEventoRequest, f evento.Filter) (int, error) {
	if patch.IsEmpty() {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for id, e := range s.eventos {
		if f.Matches(e) {
			s.eventos[id] = evento.ApplyPatch(e, patch)
			updated++
		}
	}
	return updated, nil
}

func (s *Store) UpdateByID(_ context.Context, id string, patch evento.PatchEventoRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.eventos[id]
	if !ok {
		return evento.ErrNotFound
	}

	s.eventos[id] = evento.ApplyPatch(e, patch)
	return nil
}

func (s *Store) ReplaceByID(_ context.Context, id string, req evento.ReplaceEventoRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.eventos[id]
	if !ok {
		return evento.ErrNotFound
	}

	s.eventos[id] = evento.ApplyReplace(e, req)
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.eventos[id]; !ok {
		return evento.ErrNotFound
	}

	delete(s.eventos, id)
	return nil
}

// inscripciones
//
// The inscripcion methods live on a view type so the method set matches the
// postgres InscripcionesRepo without clashing with the evento CRUD above.

type InscripcionesView struct {
	s *Store
}

func (s *Store) Inscripciones() *InscripcionesView {
	return &InscripcionesView{s: s}
}

func (v *InscripcionesView) Create(ctx context.Context, req inscripcion.CreateInscripcionRequest) (inscripcion.Inscripcion, error) {
	return v.s.createInscripcion(ctx, req)
}

func (v *InscripcionesView) ListByEvento(ctx context.Context, eventoID string) ([]inscripcion.Inscripcion, error) {
	return v.s.ListByEvento(ctx, eventoID)
}

func (v *InscripcionesView) Delete(ctx context.Context, id string) error {
	return v.s.DeleteInscripcion(ctx, id)
}

func (s *Store) createInscripcion(_ context.Context, req inscripcion.CreateInscripcionRequest) (inscripcion.Inscripcion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.eventos[req.EventoID]; !ok {
		return inscripcion.Inscripcion{}, evento.ErrNotFound
	}

	ins := inscripcion.NewFromCreateRequest(req)
	s.inscripciones[ins.ID] = ins

	return ins, nil
}

func (s *Store) ListByEvento(_ context.Context, eventoID string) ([]inscripcion.Inscripcion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]inscripcion.Inscripcion, 0)
	for _, ins := range s.inscripciones {
		if ins.EventoID == eventoID {
			out = append(out, ins)
		}
	}
	return out, nil
}

func (s *Store) DeleteInscripcion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inscripciones[id]; !ok {
		return inscripcion.ErrNotFound
	}

	delete(s.inscripciones, id)
	return nil
}

// caller must hold at least the read lock
func (s *Store) withAsistentes(e evento.Evento) evento.Evento {
	n := 0
	for _, ins := range s.inscripciones {
		if ins.EventoID == e.ID {
			n++
		}
	}
	e.NumeroAsistentes = n
	return e
}
