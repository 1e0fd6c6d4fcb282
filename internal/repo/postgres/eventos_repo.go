package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eventosapp/eventos-api/internal/domain/evento"
	"github.com/eventosapp/eventos-api/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// numero_asistentes is derived, never stored
const eventoColumns = `id,
	nombre,
	descripcion,
	lugar,
	fecha_inicio,
	fecha_final,
	organizador_id,
	(SELECT COUNT(*) FROM inscripciones i WHERE i.evento_id = e.id) AS numero_asistentes,
	created_at,
	updated_at`

type EventosRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEventosRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventosRepo {
	return &EventosRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *EventosRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// CountOverlappingByLugar counts events at the venue whose [fecha_inicio, fecha_final]
// interval overlaps the given one, boundaries included.
func (r *EventosRepo) CountOverlappingByLugar(ctx context.Context, lugar string, inicio, final time.Time) (int, error) {
	var total int
	err := r.observe("eventos.count_overlapping_lugar", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT COUNT(*)
			FROM eventos
			WHERE lugar = $1
			  AND fecha_inicio <= $3
			  AND fecha_final >= $2
		`, lugar, inicio, final).Scan(&total)
	})
	return total, err
}

func (r *EventosRepo) CountOverlappingByOrganizador(ctx context.Context, organizadorID string, inicio, final time.Time) (int, error) {
	var total int
	err := r.observe("eventos.count_overlapping_organizador", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT COUNT(*)
			FROM eventos
			WHERE organizador_id = $1
			  AND fecha_inicio <= $3
			  AND fecha_final >= $2
		`, organizadorID, inicio, final).Scan(&total)
	})
	return total, err
}

func (r *EventosRepo) Create(ctx context.Context, req evento.CreateEventoRequest) (evento.Evento, error) {
	e := evento.NewFromCreateRequest(req)

	err := r.observe("eventos.create", func() error {
		_, execErr := r.pool.Exec(ctx, `
			INSERT INTO eventos (id, nombre, descripcion, lugar, fecha_inicio, fecha_final, organizador_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, e.ID, e.Nombre, e.Descripcion, e.Lugar, e.FechaInicio, e.FechaFinal, e.OrganizadorID, e.CreatedAt, e.UpdatedAt)
		return execErr
	})

	if err != nil {
		return evento.Evento{}, err
	}

	return e, nil
}

func (r *EventosRepo) Count(ctx context.Context, f evento.Filter) (int, error) {
	conds, args := buildEventoConds(f, 1)

	query := `SELECT COUNT(*) FROM eventos e`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := r.observe("eventos.count", func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(&total)
	})
	return total, err
}

func (r *EventosRepo) List(ctx context.Context, f evento.Filter) ([]evento.Evento, error) {
	conds, args := buildEventoConds(f, 1)

	query := "SELECT " + eventoColumns + " FROM eventos e"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var rows pgx.Rows
	err := r.observe("eventos.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, query, args...)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]evento.Evento, 0)

	for rows.Next() {
		e, scanErr := scanEvento(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, e)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return out, nil
}

func (r *EventosRepo) GetByID(ctx context.Context, id string) (evento.Evento, error) {
	var e evento.Evento

	err := r.observe("eventos.get_by_id", func() error {
		row := r.pool.QueryRow(ctx, "SELECT "+eventoColumns+" FROM eventos e WHERE id = $1", id)
		return row.Scan(
			&e.ID,
			&e.Nombre,
			&e.Descripcion,
			&e.Lugar,
			&e.FechaInicio,
			&e.FechaFinal,
			&e.OrganizadorID,
			&e.NumeroAsistentes,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return evento.Evento{}, evento.ErrNotFound
		}
		return evento.Evento{}, err
	}

	return e, nil
}

// UpdateAll applies the patch to every evento matching the filter and returns
// the number of rows touched. An empty patch touches nothing.
func (r *EventosRepo) UpdateAll(ctx context.Context, patch evento.PatchEventoRequest, f evento.Filter) (int, error) {
	sets, args := buildEventoSets(patch, 1)

	if len(sets) == 0 {
		return 0, nil
	}

	conds, condArgs := buildEventoConds(f, len(args)+1)
	args = append(args, condArgs...)

	query := "UPDATE eventos e SET " + strings.Join(sets, ", ")
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var tag pgconn.CommandTag
	err := r.observe("eventos.update_all", func() error {
		var execErr error
		tag, execErr = r.pool.Exec(ctx, query, args...)
		return execErr
	})

	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}

func (r *EventosRepo) UpdateByID(ctx context.Context, id string, patch evento.PatchEventoRequest) error {
	sets, args := buildEventoSets(patch, 2)
	args = append([]interface{}{id}, args...)

	if len(sets) == 0 {
		// nothing to change, still report whether the row exists
		_, err := r.GetByID(ctx, id)
		return err
	}

	query := "UPDATE eventos e SET " + strings.Join(sets, ", ") + " WHERE id = $1"

	var tag pgconn.CommandTag
	err := r.observe("eventos.update_by_id", func() error {
		var execErr error
		tag, execErr = r.pool.Exec(ctx, query, args...)
		return execErr
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return evento.ErrNotFound
	}

	return nil
}

func (r *EventosRepo) ReplaceByID(ctx context.Context, id string, req evento.ReplaceEventoRequest) error {
	var tag pgconn.CommandTag

	err := r.observe("eventos.replace_by_id", func() error {
		var execErr error
		tag, execErr = r.pool.Exec(ctx, `
			UPDATE eventos
			SET nombre = $2,
			    descripcion = $3,
			    lugar = $4,
			    fecha_inicio = $5,
			    fecha_final = $6,
			    organizador_id = $7,
			    updated_at = NOW()
			WHERE id = $1
		`, id, req.Nombre, req.Descripcion, req.Lugar, req.FechaInicio, req.FechaFinal, req.OrganizadorID)
		return execErr
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return evento.ErrNotFound
	}

	return nil
}

func (r *EventosRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("eventos.delete", func() error {
		var execErr error
		tag, execErr = r.pool.Exec(ctx, `DELETE FROM eventos WHERE id = $1`, id)
		return execErr
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return evento.ErrNotFound
	}

	return nil
}

func scanEvento(rows pgx.Rows) (evento.Evento, error) {
	var e evento.Evento

	err := rows.Scan(
		&e.ID,
		&e.Nombre,
		&e.Descripcion,
		&e.Lugar,
		&e.FechaInicio,
		&e.FechaFinal,
		&e.OrganizadorID,
		&e.NumeroAsistentes,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	return e, err
}

func buildEventoConds(f evento.Filter, argsPosition int) ([]string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Lugar != nil {
		conds = append(conds, fmt.Sprintf("lugar = $%d", argsPosition))
		args = append(args, *f.Lugar)
		argsPosition++
	}

	if f.OrganizadorID != nil {
		conds = append(conds, fmt.Sprintf("organizador_id = $%d", argsPosition))
		args = append(args, *f.OrganizadorID)
		argsPosition++
	}

	if f.Desde != nil {
		conds = append(conds, fmt.Sprintf("fecha_inicio >= $%d", argsPosition))
		args = append(args, *f.Desde)
		argsPosition++
	}

	if f.Hasta != nil {
		conds = append(conds, fmt.Sprintf("fecha_inicio <= $%d", argsPosition))
		args = append(args, *f.Hasta)
		argsPosition++
	}

	return conds, args
}

func buildEventoSets(patch evento.PatchEventoRequest, argsPosition int) ([]string, []interface{}) {
	var sets []string
	var args []interface{}

	add := func(column string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argsPosition))
		args = append(args, val)
		argsPosition++
	}

	if patch.Nombre != nil {
		add("nombre", *patch.Nombre)
	}
	if patch.Descripcion != nil {
		add("descripcion", *patch.Descripcion)
	}
	if patch.Lugar != nil {
		add("lugar", *patch.Lugar)
	}
	if patch.FechaInicio != nil {
		add("fecha_inicio", *patch.FechaInicio)
	}
	if patch.FechaFinal != nil {
		add("fecha_final", *patch.FechaFinal)
	}
	if patch.OrganizadorID != nil {
		add("organizador_id", *patch.OrganizadorID)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = NOW()")
	}

	return sets, args
}
