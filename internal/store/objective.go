package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
)

type objectiveRepo struct {
	db *sql.DB
}

func (r *objectiveRepo) CreateUnit(ctx context.Context, name, description string) (*Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("unit name is required")
	}
	u := &Unit{Name: name, Description: description, CreatedAt: now()}
	id, err := insertID(ctx, r.db, builder.Insert(tableUnits).
		Columns("name", "description", "created_at").
		Values(u.Name, u.Description, u.CreatedAt))
	if err != nil {
		return nil, persistErr("create unit", err)
	}
	u.ID = id
	return u, nil
}

func (r *objectiveRepo) CreateObjective(ctx context.Context, unitID int, text string) (*Objective, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("objective text is required")
	}

	var exists int
	err := queryRow(ctx, r.db, builder.Select("id").From(builder.Table(tableUnits)).
		Where(entsql.EQ("id", unitID))).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("unit", unitID)
	}
	if err != nil {
		return nil, persistErr("lookup unit", err)
	}

	o := &Objective{UnitID: unitID, Text: text, CreatedAt: now()}
	id, err := insertID(ctx, r.db, builder.Insert(tableObjectives).
		Columns("unit_id", "objective_text", "created_at").
		Values(o.UnitID, o.Text, o.CreatedAt))
	if err != nil {
		return nil, persistErr("create objective", err)
	}
	o.ID = id
	return o, nil
}

func (r *objectiveRepo) ObjectiveText(ctx context.Context, id int) (string, error) {
	o, err := r.Objective(ctx, id)
	if err != nil {
		return "", err
	}
	return o.Text, nil
}

func (r *objectiveRepo) Objective(ctx context.Context, id int) (*Objective, error) {
	var o Objective
	err := queryRow(ctx, r.db, builder.Select("id", "unit_id", "objective_text", "created_at").
		From(builder.Table(tableObjectives)).
		Where(entsql.EQ("id", id))).
		Scan(&o.ID, &o.UnitID, &o.Text, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("objective", id)
	}
	if err != nil {
		return nil, persistErr("load objective", err)
	}
	return &o, nil
}

func (r *objectiveRepo) ListObjectives(ctx context.Context, unitID int) ([]Objective, error) {
	sel := builder.Select("id", "unit_id", "objective_text", "created_at").
		From(builder.Table(tableObjectives)).
		OrderBy(entsql.Asc("id"))
	if unitID > 0 {
		sel.Where(entsql.EQ("unit_id", unitID))
	}

	rows, err := queryRows(ctx, r.db, sel)
	if err != nil {
		return nil, persistErr("list objectives", err)
	}
	defer rows.Close()

	var out []Objective
	for rows.Next() {
		var o Objective
		if err := rows.Scan(&o.ID, &o.UnitID, &o.Text, &o.CreatedAt); err != nil {
			return nil, persistErr("scan objective", err)
		}
		out = append(out, o)
	}
	return out, persistErr("list objectives", rows.Err())
}

func (r *objectiveRepo) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := queryRows(ctx, r.db, builder.Select("id", "name", "description", "created_at").
		From(builder.Table(tableUnits)).
		OrderBy(entsql.Asc("id")))
	if err != nil {
		return nil, persistErr("list units", err)
	}
	defer rows.Close()

	var out []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Description, &u.CreatedAt); err != nil {
			return nil, persistErr("scan unit", err)
		}
		out = append(out, u)
	}
	return out, persistErr("list units", rows.Err())
}
