package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"url-vetting/vetting"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Postgres stores user lists in the user_list_entries table. A domain is
// the primary key, so it can only ever sit on one list.
type Postgres struct {
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Close() { p.Pool.Close() }

// Migrate applies the embedded migrations.
func (p *Postgres) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(p.Pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, r := range results {
		log.Printf("[Store] applied migration %s in %s", r.Source.Path, r.Duration)
	}
	return nil
}

func (p *Postgres) Lists(ctx context.Context) (vetting.UserLists, error) {
	rows, err := p.Pool.Query(ctx, `SELECT domain, list FROM user_list_entries ORDER BY seq`)
	if err != nil {
		return vetting.UserLists{}, err
	}
	defer rows.Close()

	out := vetting.UserLists{Allow: []string{}, Deny: []string{}}
	for rows.Next() {
		var domain, list string
		if err := rows.Scan(&domain, &list); err != nil {
			return vetting.UserLists{}, err
		}
		if vetting.ListName(list) == vetting.ListAllow {
			out.Allow = append(out.Allow, domain)
		} else {
			out.Deny = append(out.Deny, domain)
		}
	}
	return out, rows.Err()
}

// Put moves domain between lists with a single upsert. The sequence is
// bumped on a move so the domain lands at the end of its new list.
func (p *Postgres) Put(ctx context.Context, list vetting.ListName, domain string) (bool, error) {
	tag, err := p.Pool.Exec(ctx, `
        INSERT INTO user_list_entries (domain, list)
        VALUES ($1, $2)
        ON CONFLICT (domain) DO UPDATE
            SET list = EXCLUDED.list, seq = nextval('user_list_seq'), updated_at = now()
            WHERE user_list_entries.list <> EXCLUDED.list
    `, domain, string(list))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
