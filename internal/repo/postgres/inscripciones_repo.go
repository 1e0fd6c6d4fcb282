package postgres

import (
	"context"
	"errors"

	"github.com/eventosapp/eventos-api/internal/domain/evento"
	"github.com/eventosapp/eventos-api/internal/domain/inscripcion"
	"github.com/eventosapp/eventos-api/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InscripcionesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewInscripcionesRepo(pool *pgxpool.Pool, prom *observability.Prom) *InscripcionesRepo {
	return &InscripcionesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *InscripcionesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *InscripcionesRepo) Create(ctx context.Context, req inscripcion.CreateInscripcionRequest) (inscripcion.Inscripcion, error) {
	// the event must exist before anyone can register for it
	var dummy string
	err := r.observe("inscripciones.create.check_evento", func() error {
		return r.pool.QueryRow(ctx, `SELECT id FROM eventos WHERE id = $1`, req.EventoID).Scan(&dummy)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inscripcion.Inscripcion{}, evento.ErrNotFound
		}
		return inscripcion.Inscripcion{}, err
	}

	ins := inscripcion.NewFromCreateRequest(req)

	err = r.observe("inscripciones.create", func() error {
		_, execErr := r.pool.Exec(ctx, `
			INSERT INTO inscripciones (id, evento_id, nombre, correo, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, ins.ID, ins.EventoID, ins.Nombre, ins.Correo, ins.CreatedAt, ins.UpdatedAt)
		return execErr
	})

	if err != nil {
		return inscripcion.Inscripcion{}, err
	}

	return ins, nil
}

func (r *InscripcionesRepo) ListByEvento(ctx context.Context, eventoID string) ([]inscripcion.Inscripcion, error) {
	var rows pgx.Rows

	err := r.observe("inscripciones.list_by_evento", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, `
			SELECT id, evento_id, nombre, correo, created_at, updated_at
			FROM inscripciones
			WHERE evento_id = $1
		`, eventoID)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]inscripcion.Inscripcion, 0)

	for rows.Next() {
		var ins inscripcion.Inscripcion

		scanErr := rows.Scan(&ins.ID, &ins.EventoID, &ins.Nombre, &ins.Correo, &ins.CreatedAt, &ins.UpdatedAt)
		if scanErr != nil {
			return nil, scanErr
		}

		out = append(out, ins)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

// Delete removes a single inscripcion by its own id.
func (r *InscripcionesRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("inscripciones.delete", func() error {
		var execErr error
		tag, execErr = r.pool.Exec(ctx, `DELETE FROM inscripciones WHERE id = $1`, id)
		return execErr
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return inscripcion.ErrNotFound
	}

	return nil
}
