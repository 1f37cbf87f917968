package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const documentsTable = "documents"

// clock hands out strictly increasing unix-millisecond timestamps so that
// documents written in the same millisecond still list in write order.
type clock struct {
	mu   sync.Mutex
	last int64
}

func (c *clock) now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := time.Now().UnixMilli()
	if n <= c.last {
		n = c.last + 1
	}
	c.last = n
	return n
}

// documentRepo implements DocumentRepo on the documents table using ent's
// dialect-aware SQL builder.
type documentRepo struct {
	drv     dialect.ExecQuerier
	dialect string
	clock   *clock
}

// txDriver is satisfied by *entsql.Driver.
type txDriver interface {
	Tx(ctx context.Context) (dialect.Tx, error)
}

func (r *documentRepo) Get(ctx context.Context, collection, id string) (*Document, error) {
	return getDocument(ctx, r.drv, r.dialect, collection, id)
}

func (r *documentRepo) Set(ctx context.Context, collection, id string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	return upsertDocument(ctx, r.drv, r.dialect, collection, id, b, r.clock.now())
}

func (r *documentRepo) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	txd, ok := r.drv.(txDriver)
	if !ok {
		return r.merge(ctx, r.drv, collection, id, fields)
	}

	tx, err := txd.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin merge %s/%s: %w", collection, id, err)
	}
	if err := r.merge(ctx, tx, collection, id, fields); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge %s/%s: %w", collection, id, err)
	}
	return nil
}

func (r *documentRepo) merge(ctx context.Context, eq dialect.ExecQuerier, collection, id string, fields map[string]any) error {
	current, err := getDocument(ctx, eq, r.dialect, collection, id)
	if err != nil {
		return err
	}

	merged := map[string]json.RawMessage{}
	if current != nil {
		if err := json.Unmarshal(current.Data, &merged); err != nil {
			return fmt.Errorf("decode %s/%s for merge: %w", collection, id, err)
		}
	}
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal field %q: %w", k, err)
		}
		merged[k] = b
	}

	b, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	return upsertDocument(ctx, eq, r.dialect, collection, id, b, r.clock.now())
}

func (r *documentRepo) Create(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if err := r.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (r *documentRepo) Delete(ctx context.Context, collection, id string) error {
	q, args := entsql.Dialect(r.dialect).
		Delete(documentsTable).
		Where(entsql.And(entsql.EQ("collection", collection), entsql.EQ("id", id))).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (r *documentRepo) List(ctx context.Context, collection string, opts ListOpts) ([]*Document, error) {
	order := entsql.Asc
	if opts.Newest {
		order = entsql.Desc
	}

	sel := entsql.Dialect(r.dialect).
		Select("id", "data", "created_at", "updated_at").
		From(entsql.Table(documentsTable)).
		Where(entsql.EQ("collection", collection)).
		OrderBy(order("created_at"), order("id"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	q, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		var (
			id, data         string
			created, updated int64
		)
		if err := rows.Scan(&id, &data, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, &Document{
			Collection: collection,
			ID:         id,
			Data:       json.RawMessage(data),
			CreatedAt:  time.UnixMilli(created).UTC(),
			UpdatedAt:  time.UnixMilli(updated).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

func (r *documentRepo) Count(ctx context.Context, collection string) (int, error) {
	q, args := entsql.Dialect(r.dialect).
		Select(entsql.Count("*")).
		From(entsql.Table(documentsTable)).
		Where(entsql.EQ("collection", collection)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scan count %s: %w", collection, err)
		}
	}
	return n, rows.Err()
}

func getDocument(ctx context.Context, eq dialect.ExecQuerier, d, collection, id string) (*Document, error) {
	q, args := entsql.Dialect(d).
		Select("data", "created_at", "updated_at").
		From(entsql.Table(documentsTable)).
		Where(entsql.And(entsql.EQ("collection", collection), entsql.EQ("id", id))).
		Query()

	rows := &entsql.Rows{}
	if err := eq.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
		}
		return nil, nil
	}

	var (
		data             string
		created, updated int64
	)
	if err := rows.Scan(&data, &created, &updated); err != nil {
		return nil, fmt.Errorf("scan %s/%s: %w", collection, id, err)
	}
	return &Document{
		Collection: collection,
		ID:         id,
		Data:       json.RawMessage(data),
		CreatedAt:  time.UnixMilli(created).UTC(),
		UpdatedAt:  time.UnixMilli(updated).UTC(),
	}, nil
}

// upsertDocument inserts the document or replaces its data, keeping the
// original creation time.
func upsertDocument(ctx context.Context, eq dialect.ExecQuerier, d, collection, id string, data []byte, now int64) error {
	q, args := entsql.Dialect(d).
		Insert(documentsTable).
		Columns("collection", "id", "data", "created_at", "updated_at").
		Values(collection, id, string(data), now, now).
		OnConflict(
			entsql.ConflictColumns("collection", "id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("data")
				u.SetExcluded("updated_at")
			}),
		).
		Query()
	if err := eq.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}
