package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventosapp/eventos-api/internal/domain/evento"
	"github.com/eventosapp/eventos-api/internal/domain/inscripcion"
	"github.com/eventosapp/eventos-api/internal/repo/memory"
	"github.com/google/uuid"
)

func mustCreate(t *testing.T, s *memory.Store, lugar, org string, inicio, final time.Time) evento.Evento {
	t.Helper()

	e, err := s.Create(context.Background(), evento.CreateEventoRequest{
		Nombre:        "Evento de Prueba",
		Lugar:         lugar,
		FechaInicio:   inicio,
		FechaFinal:    final,
		OrganizadorID: org,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return e
}

func TestStore_CountOverlapping(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(hour int) time.Time { return day.Add(time.Duration(hour) * time.Hour) }

	org := uuid.NewString()
	otherOrg := uuid.NewString()

	s := memory.NewStore()
	mustCreate(t, s, "Hall1", org, at(10), at(12))

	tests := []struct {
		name          string
		inicio, final time.Time
		wantLugarHits int // against Hall1
		wantOrgHits   int // against org
	}{
		{"fully_inside", at(10), at(12), 1, 1},
		{"overlap_start", at(9), at(11), 1, 1},
		{"overlap_end", at(11), at(13), 1, 1},
		{"covering", at(9), at(13), 1, 1},
		{"touching_start_boundary", at(8), at(10), 1, 1},
		{"touching_end_boundary", at(12), at(14), 1, 1},
		{"before", at(7), at(9), 0, 0},
		{"after", at(13), at(15), 0, 0},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			n, err := s.CountOverlappingByLugar(ctx, "Hall1", tt.inicio, tt.final)
			if err != nil {
				t.Fatalf("CountOverlappingByLugar: %v", err)
			}
			if n != tt.wantLugarHits {
				t.Fatalf("lugar hits: got %d, want %d", n, tt.wantLugarHits)
			}

			n, err = s.CountOverlappingByOrganizador(ctx, org, tt.inicio, tt.final)
			if err != nil {
				t.Fatalf("CountOverlappingByOrganizador: %v", err)
			}
			if n != tt.wantOrgHits {
				t.Fatalf("organizador hits: got %d, want %d", n, tt.wantOrgHits)
			}
		})
	}

	// a different venue or organizer never collides
	if n, _ := s.CountOverlappingByLugar(ctx, "Hall2", at(10), at(12)); n != 0 {
		t.Fatalf("Hall2 should be free, got %d hits", n)
	}
	if n, _ := s.CountOverlappingByOrganizador(ctx, otherOrg, at(10), at(12)); n != 0 {
		t.Fatalf("other organizer should be free, got %d hits", n)
	}
}

func TestStore_FilterAndCount(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	org1 := uuid.NewString()
	org2 := uuid.NewString()

	s := memory.NewStore()
	mustCreate(t, s, "Hall1", org1, day.Add(10*time.Hour), day.Add(12*time.Hour))
	mustCreate(t, s, "Hall1", org2, day.Add(14*time.Hour), day.Add(16*time.Hour))
	mustCreate(t, s, "Hall2", org1, day.AddDate(0, 0, 1), day.AddDate(0, 0, 1).Add(time.Hour))

	lugar := "Hall1"
	desde := day.Add(13 * time.Hour)

	total, err := s.Count(ctx, evento.Filter{})
	if err != nil || total != 3 {
		t.Fatalf("unfiltered count: got %d (err=%v), want 3", total, err)
	}

	total, err = s.Count(ctx, evento.Filter{Lugar: &lugar})
	if err != nil || total != 2 {
		t.Fatalf("lugar count: got %d (err=%v), want 2", total, err)
	}

	out, err := s.List(ctx, evento.Filter{Lugar: &lugar, Desde: &desde})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("filtered list: got %d eventos, want 1", len(out))
	}

	orgFilter := org1
	out, err = s.List(ctx, evento.Filter{OrganizadorID: &orgFilter})
	if err != nil || len(out) != 2 {
		t.Fatalf("organizador list: got %d (err=%v), want 2", len(out), err)
	}
}

func TestStore_UpdateAndReplace(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	org := uuid.NewString()

	s := memory.NewStore()
	e := mustCreate(t, s, "Hall1", org, now, now.Add(time.Hour))

	lugar := "Hall2"
	updated, err := s.UpdateAll(ctx, evento.PatchEventoRequest{Lugar: &lugar}, evento.Filter{})
	if err != nil || updated != 1 {
		t.Fatalf("UpdateAll: got %d (err=%v), want 1", updated, err)
	}

	got, err := s.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Lugar != "Hall2" {
		t.Fatalf("patch not applied, lugar=%q", got.Lugar)
	}
	if got.Nombre != e.Nombre {
		t.Fatalf("patch touched an unset field, nombre=%q", got.Nombre)
	}

	// empty patch touches nothing
	updated, err = s.UpdateAll(ctx, evento.PatchEventoRequest{}, evento.Filter{})
	if err != nil || updated != 0 {
		t.Fatalf("empty patch: got %d (err=%v), want 0", updated, err)
	}

	err = s.ReplaceByID(ctx, e.ID, evento.ReplaceEventoRequest{
		Nombre:        "Reemplazado",
		Lugar:         "Hall3",
		FechaInicio:   now,
		FechaFinal:    now.Add(2 * time.Hour),
		OrganizadorID: org,
	})
	if err != nil {
		t.Fatalf("ReplaceByID: %v", err)
	}

	got, _ = s.GetByID(ctx, e.ID)
	if got.Nombre != "Reemplazado" || got.Lugar != "Hall3" {
		t.Fatalf("replace not applied: %+v", got)
	}
	if got.ID != e.ID || !got.CreatedAt.Equal(e.CreatedAt) {
		t.Fatalf("replace must keep id and createdAt: %+v", got)
	}
	if got.Descripcion != "" {
		t.Fatalf("replace must overwrite unset fields, descripcion=%q", got.Descripcion)
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	missing := uuid.NewString()

	if _, err := s.GetByID(ctx, missing); !errors.Is(err, evento.ErrNotFound) {
		t.Fatalf("GetByID: got %v, want ErrNotFound", err)
	}
	if err := s.UpdateByID(ctx, missing, evento.PatchEventoRequest{}); !errors.Is(err, evento.ErrNotFound) {
		t.Fatalf("UpdateByID: got %v, want ErrNotFound", err)
	}
	if err := s.ReplaceByID(ctx, missing, evento.ReplaceEventoRequest{}); !errors.Is(err, evento.ErrNotFound) {
		t.Fatalf("ReplaceByID: got %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, missing); !errors.Is(err, evento.ErrNotFound) {
		t.Fatalf("Delete: got %v, want ErrNotFound", err)
	}
	if err := s.Inscripciones().Delete(ctx, missing); !errors.Is(err, inscripcion.ErrNotFound) {
		t.Fatalf("Inscripciones Delete: got %v, want ErrNotFound", err)
	}
	if _, err := s.Inscripciones().Create(ctx, inscripcion.CreateInscripcionRequest{EventoID: missing}); !errors.Is(err, evento.ErrNotFound) {
		t.Fatalf("Inscripciones Create for missing evento: got %v, want ErrNotFound", err)
	}
}

func TestStore_NumeroAsistentes(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	s := memory.NewStore()

	e := mustCreate(t, s, "Hall1", uuid.NewString(), now, now.Add(time.Hour))

	ins := s.Inscripciones()

	for i := 0; i < 3; i++ {
		_, err := ins.Create(ctx, inscripcion.CreateInscripcionRequest{
			EventoID: e.ID,
			Nombre:   "Asistente",
			Correo:   "asistente@example.com",
		})
		if err != nil {
			t.Fatalf("inscripcion create: %v", err)
		}
	}

	got, err := s.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NumeroAsistentes != 3 {
		t.Fatalf("numeroAsistentes: got %d, want 3", got.NumeroAsistentes)
	}
}

func TestStore_CascadeByHand(t *testing.T) {
	// mirrors what the delete handler does: list, delete each, delete evento
	ctx := context.Background()
	now := time.Now().UTC()
	s := memory.NewStore()
	ins := s.Inscripciones()

	e := mustCreate(t, s, "Hall1", uuid.NewString(), now, now.Add(time.Hour))
	other := mustCreate(t, s, "Hall2", uuid.NewString(), now, now.Add(time.Hour))

	for i := 0; i < 2; i++ {
		if _, err := ins.Create(ctx, inscripcion.CreateInscripcionRequest{EventoID: e.ID, Nombre: "A", Correo: "a@example.com"}); err != nil {
			t.Fatalf("create inscripcion: %v", err)
		}
	}
	kept, err := ins.Create(ctx, inscripcion.CreateInscripcionRequest{EventoID: other.ID, Nombre: "B", Correo: "b@example.com"})
	if err != nil {
		t.Fatalf("create inscripcion: %v", err)
	}

	list, err := ins.ListByEvento(ctx, e.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByEvento: got %d (err=%v), want 2", len(list), err)
	}

	for _, i := range list {
		if err := ins.Delete(ctx, i.ID); err != nil {
			t.Fatalf("delete inscripcion: %v", err)
		}
	}
	if err := s.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete evento: %v", err)
	}

	if _, err := s.GetByID(ctx, e.ID); !errors.Is(err, evento.ErrNotFound) {
		t.Fatalf("evento still present after cascade: %v", err)
	}

	list, err = ins.ListByEvento(ctx, e.ID)
	if err != nil || len(list) != 0 {
		t.Fatalf("inscripciones left after cascade: %d (err=%v)", len(list), err)
	}

	// the other evento keeps its inscripcion
	list, err = ins.ListByEvento(ctx, other.ID)
	if err != nil || len(list) != 1 || list[0].ID != kept.ID {
		t.Fatalf("unrelated inscripciones affected: %+v (err=%v)", list, err)
	}
}
