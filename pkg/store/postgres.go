package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	recordsTable = "spec_records"
	aliasesTable = "spec_aliases"

	errConnect   = "connect to spec store: %w"
	errMigrate   = "migrate spec store: %w"
	errGet       = "get spec record: %w"
	errPut       = "put spec record: %w"
	errEncode    = "encode spec record: %w"
	errDecode    = "decode spec record %d: %w"
	logMigrated  = "spec store schema at version %d"
	logUnchanged = "spec store schema up to date"
)

//go:embed migrations/*.sql
var migrations embed.FS

var recordColumns = []string{
	"id", "component_type", "model_key", "manufacturer", "model", "title",
	"attributes", "source", "source_url", "raw_data", "resolved_at",
}

type recordRow struct {
	ID            int64     `db:"id"`
	ComponentType string    `db:"component_type"`
	ModelKey      string    `db:"model_key"`
	Manufacturer  string    `db:"manufacturer"`
	Model         string    `db:"model"`
	Title         string    `db:"title"`
	Attributes    []byte    `db:"attributes"`
	Source        string    `db:"source"`
	SourceURL     string    `db:"source_url"`
	RawData       []byte    `db:"raw_data"`
	ResolvedAt    time.Time `db:"resolved_at"`
}

func (r recordRow) record() (*models.SpecRecord, error) {
	rec := &models.SpecRecord{
		ID:           r.ID,
		Type:         models.ComponentType(r.ComponentType),
		Manufacturer: r.Manufacturer,
		Model:        r.Model,
		Title:        r.Title,
		Source:       r.Source,
		SourceURL:    r.SourceURL,
		ResolvedAt:   r.ResolvedAt.UTC(),
	}
	if err := json.Unmarshal(r.Attributes, &rec.Attributes); err != nil {
		return nil, fmt.Errorf(errDecode, r.ID, err)
	}
	if len(r.RawData) > 0 {
		if err := json.Unmarshal(r.RawData, &rec.RawData); err != nil {
			return nil, fmt.Errorf(errDecode, r.ID, err)
		}
	}
	return rec, nil
}

// Postgres is a Store backed by PostgreSQL.
type Postgres struct {
	db *sqlx.DB
}

// OpenPostgres connects to dsn and, when runMigrations is set, brings the schema up to date.
func OpenPostgres(ctx context.Context, dsn string, runMigrations bool) (*Postgres, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf(errConnect, err)
	}
	if runMigrations {
		if err := Migrate(db.DB); err != nil {
			db.Close()
			return nil, err
		}
	}
	return NewPostgres(db), nil
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

type migrationLogger struct{}

func (migrationLogger) Printf(format string, v ...any) {
	log.Debugf(format, v...)
}

func (migrationLogger) Verbose() bool {
	return false
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf(errMigrate, err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf(errMigrate, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf(errMigrate, err)
	}
	m.Log = migrationLogger{}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info(logUnchanged)
			return nil
		}
		return fmt.Errorf(errMigrate, err)
	}
	if version, _, err := m.Version(); err == nil {
		log.Infof(logMigrated, version)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, ct models.ComponentType, model string) (*models.SpecRecord, error) {
	key := Key(model)

	aliases := sqlbuilder.PostgreSQL.NewSelectBuilder()
	aliases.Select("record_id").From(aliasesTable).Where(
		aliases.Equal("component_type", string(ct)),
		aliases.Equal("alias_key", key),
	)

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(recordColumns...).From(recordsTable).Where(
		sb.Equal("component_type", string(ct)),
		sb.Or(
			sb.Equal("model_key", key),
			sb.In("id", aliases),
		),
	).OrderBy("id").Limit(1)

	query, args := sb.Build()

	var row recordRow
	if err := p.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf(errGet, err)
	}
	return row.record()
}

func (p *Postgres) Put(ctx context.Context, rec *models.SpecRecord, aliases ...string) (*models.SpecRecord, bool, error) {
	attrs, err := json.Marshal(rec.Attributes)
	if err != nil {
		return nil, false, fmt.Errorf(errEncode, err)
	}
	raw, err := json.Marshal(rec.RawData)
	if err != nil {
		return nil, false, fmt.Errorf(errEncode, err)
	}
	resolvedAt := rec.ResolvedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now().UTC()
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf(errPut, err)
	}
	defer tx.Rollback()

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(recordsTable).
		Cols(recordColumns[1:]...).
		Values(string(rec.Type), Key(rec.Model), rec.Manufacturer, rec.Model, rec.Title,
			string(attrs), rec.Source, rec.SourceURL, string(raw), resolvedAt)
	ib.SQL("ON CONFLICT (component_type, model_key) DO NOTHING RETURNING id")

	query, args := ib.Build()

	created := true
	var id int64
	if err := tx.GetContext(ctx, &id, query, args...); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, fmt.Errorf(errPut, err)
		}
		created = false
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(recordColumns...).From(recordsTable).Where(
		sb.Equal("component_type", string(rec.Type)),
		sb.Equal("model_key", Key(rec.Model)),
	)
	query, args = sb.Build()

	var row recordRow
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		return nil, false, fmt.Errorf(errPut, err)
	}
	stored, err := row.record()
	if err != nil {
		return nil, false, err
	}

	if keys := aliasKeys(stored, aliases); len(keys) > 0 {
		ab := sqlbuilder.PostgreSQL.NewInsertBuilder()
		ab.InsertInto(aliasesTable).Cols("component_type", "alias_key", "record_id")
		for _, k := range keys {
			ab.Values(string(rec.Type), k, stored.ID)
		}
		ab.SQL("ON CONFLICT DO NOTHING")

		query, args = ab.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, false, fmt.Errorf(errPut, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf(errPut, err)
	}
	return stored, created, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
