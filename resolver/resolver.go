// Package resolver reads and writes the rows behind generated GraphQL
// fields. Every function runs a single GORM statement (or a load followed by
// a save) bound to the request context.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/syssam/schemagen"
	"github.com/syssam/schemagen/model"
)

// List returns the rows of t matching q as a []*Model.
func List(ctx context.Context, db *gorm.DB, t *model.Table, q Query) (any, error) {
	tx := db.WithContext(ctx)
	for _, f := range q.Filters {
		if _, ok := t.Column(f.Column); !ok {
			return nil, schemagen.NewQueryError(t.Name, "list", fmt.Errorf("unknown column %q", f.Column))
		}
		expr, err := f.Expr()
		if err != nil {
			return nil, schemagen.NewQueryError(t.Name, "list", err)
		}
		tx = tx.Where(expr)
	}
	if o := q.Order; o != nil {
		if _, ok := t.Column(o.Column); !ok {
			return nil, schemagen.NewQueryError(t.Name, "list", fmt.Errorf("unknown order column %q", o.Column))
		}
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: o.Column},
			Desc:   o.Desc,
		})
	}
	if q.Page.Size > 0 {
		tx = tx.Limit(q.Page.Size).Offset(q.Page.Offset())
	}
	rows := t.NewSlice()
	if err := tx.Find(rows.Interface()).Error; err != nil {
		return nil, schemagen.NewQueryError(t.Name, "list", err)
	}
	return rows.Elem().Interface(), nil
}

// Create inserts a new row built from data, keyed by column name, and
// returns it as a *Model. Only the given columns and the ones with a tag
// default are written; the others are left to the database.
func Create(ctx context.Context, db *gorm.DB, t *model.Table, data map[string]any) (any, error) {
	v := t.New()
	if err := assign(ctx, t, v, data, false); err != nil {
		return nil, schemagen.NewMutationError(t.Name, "create", err)
	}
	// GORM swaps zero values for the tag default of their field on insert,
	// so explicit zeros are written back once the row exists.
	zeros := make(map[string]any)
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		_, given := data[c.Name]
		if !given && c.DefaultValue == nil {
			continue
		}
		names = append(names, c.Name)
		if given && !c.PrimaryKey && c.DefaultValue != nil && c.IsZero(ctx, v) {
			zeros[c.Name] = c.Value(ctx, v)
		}
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Omit(clause.Associations)
		if len(names) > 0 {
			insert = insert.Select(names)
		}
		if err := insert.Create(v.Interface()).Error; err != nil {
			return err
		}
		if len(zeros) == 0 {
			return nil
		}
		if err := tx.Model(v.Interface()).UpdateColumns(zeros).Error; err != nil {
			return err
		}
		return assign(ctx, t, v, zeros, true)
	})
	if err != nil {
		return nil, schemagen.NewMutationError(t.Name, "create", err)
	}
	return v.Interface(), nil
}

// Update loads the row addressed by the primary key values in data, sets the
// other given columns and saves it. It returns the updated *Model.
func Update(ctx context.Context, db *gorm.DB, t *model.Table, data map[string]any) (any, error) {
	conds, err := keys(t, data)
	if err != nil {
		return nil, schemagen.NewMutationError(t.Name, "update", err)
	}
	tx := db.WithContext(ctx)
	v := t.New()
	switch err := tx.Where(conds).Take(v.Interface()).Error; {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, schemagen.NewNotFoundErrorWithID(t.Name, keyID(t, data))
	case err != nil:
		return nil, schemagen.NewMutationError(t.Name, "update", err)
	}
	if err := assign(ctx, t, v, data, true); err != nil {
		return nil, schemagen.NewMutationError(t.Name, "update", err)
	}
	if err := tx.Omit(clause.Associations).Save(v.Interface()).Error; err != nil {
		return nil, schemagen.NewMutationError(t.Name, "update", err)
	}
	return v.Interface(), nil
}

// Delete removes the row addressed by the primary key values in data and
// returns the number of deleted rows. Models with a gorm.DeletedAt column
// are soft deleted.
func Delete(ctx context.Context, db *gorm.DB, t *model.Table, data map[string]any) (int64, error) {
	conds, err := keys(t, data)
	if err != nil {
		return 0, schemagen.NewMutationError(t.Name, "delete", err)
	}
	res := db.WithContext(ctx).Where(conds).Delete(t.New().Interface())
	if res.Error != nil {
		return 0, schemagen.NewMutationError(t.Name, "delete", res.Error)
	}
	return res.RowsAffected, nil
}

// Related loads the rows of target linked to parent, a *Model of the table
// declaring rel. It returns a []*Target for list relations and a *Target,
// or nil, otherwise.
func Related(ctx context.Context, db *gorm.DB, rel *model.Relation, target *model.Table, parent any) (any, error) {
	if pv := reflect.ValueOf(parent); !pv.IsValid() || (pv.Kind() == reflect.Ptr && pv.IsNil()) {
		return nil, nil
	}
	assoc := db.WithContext(ctx).Model(parent).Association(rel.FieldName)
	if assoc.Error != nil {
		return nil, schemagen.NewQueryError(target.Name, rel.Name, assoc.Error)
	}
	rows := target.NewSlice()
	if err := assoc.Find(rows.Interface()); err != nil {
		return nil, schemagen.NewQueryError(target.Name, rel.Name, err)
	}
	if rel.Many() {
		return rows.Elem().Interface(), nil
	}
	if rows.Elem().Len() == 0 {
		return nil, nil
	}
	return rows.Elem().Index(0).Interface(), nil
}

// assign sets the columns given in data on v. Primary keys are skipped when
// skipKeys is set.
func assign(ctx context.Context, t *model.Table, v reflect.Value, data map[string]any, skipKeys bool) error {
	for name, x := range data {
		c, ok := t.Column(name)
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}
		if skipKeys && c.PrimaryKey {
			continue
		}
		if err := c.Set(ctx, v, x); err != nil {
			return err
		}
	}
	return nil
}

// keys returns the primary key conditions found in data.
func keys(t *model.Table, data map[string]any) (map[string]any, error) {
	conds := make(map[string]any, len(t.PrimaryKeys))
	for _, pk := range t.PrimaryKeys {
		v, ok := data[pk.Name]
		if !ok || v == nil {
			return nil, fmt.Errorf("missing primary key %q", pk.Name)
		}
		conds[pk.Name] = v
	}
	return conds, nil
}

func keyID(t *model.Table, data map[string]any) any {
	if len(t.PrimaryKeys) == 1 {
		return data[t.PrimaryKey().Name]
	}
	id := make([]any, 0, len(t.PrimaryKeys))
	for _, pk := range t.PrimaryKeys {
		id = append(id, data[pk.Name])
	}
	return id
}
