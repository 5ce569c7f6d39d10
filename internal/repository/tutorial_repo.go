package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"tutorials/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// TutorialRepository defines the interface for interacting with tutorial data
type TutorialRepository interface {
	// FindAll returns every stored tutorial ordered by id
	FindAll(ctx context.Context) ([]model.Tutorial, error)
	// FindByID returns nil when no tutorial has the given id
	FindByID(ctx context.Context, id int64) (*model.Tutorial, error)
	// Save inserts t when its ID is zero and overwrites the row with that ID otherwise
	Save(ctx context.Context, t *model.Tutorial) (*model.Tutorial, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	FindByTitleContaining(ctx context.Context, text string) ([]model.Tutorial, error)
	FindByDescriptionContaining(ctx context.Context, text string) ([]model.Tutorial, error)
}

const tutorialsTable = "tutorials"

var tutorialColumns = []string{"id", "title", "description"}

type tutorialRepo struct {
	db      *sqlx.DB
	dialect Dialect
	builder sq.StatementBuilderType
	logger  zerolog.Logger
}

// NewTutorialRepository creates a SQL backed TutorialRepository. The dialect
// selects placeholder style and DDL.
func NewTutorialRepository(db *sqlx.DB, dialect Dialect, logger zerolog.Logger) TutorialRepository {
	return &tutorialRepo{
		db:      db,
		dialect: dialect,
		builder: sq.StatementBuilder.PlaceholderFormat(dialect.placeholder()),
		logger:  logger.With().Str("component", "tutorial_repo").Str("dialect", string(dialect)).Logger(),
	}
}

func (r *tutorialRepo) FindAll(ctx context.Context) ([]model.Tutorial, error) {
	return r.selectTutorials(ctx, r.builder.Select(tutorialColumns...).From(tutorialsTable))
}

func (r *tutorialRepo) FindByID(ctx context.Context, id int64) (*model.Tutorial, error) {
	query, args, err := r.builder.Select(tutorialColumns...).
		From(tutorialsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var t model.Tutorial
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *tutorialRepo) Save(ctx context.Context, t *model.Tutorial) (*model.Tutorial, error) {
	if t.ID == 0 {
		return r.insert(ctx, r.builder.Insert(tutorialsTable).
			Columns("title", "description").
			Values(t.Title, t.Description))
	}

	query, args, err := r.builder.Update(tutorialsTable).
		Set("title", t.Title).
		Set("description", t.Description).
		Where(sq.Eq{"id": t.ID}).
		Suffix("RETURNING " + strings.Join(tutorialColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	var saved model.Tutorial
	err = r.db.GetContext(ctx, &saved, query, args...)
	if err == nil {
		return &saved, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// the row is gone, write it back under the same id
	r.logger.Debug().Int64("tutorial_id", t.ID).Msg("Tutorial missing on save, inserting with explicit id")
	inserted, err := r.insert(ctx, r.builder.Insert(tutorialsTable).
		Columns(tutorialColumns...).
		Values(t.ID, t.Title, t.Description))
	if err != nil {
		return nil, err
	}
	if err := r.syncSequence(ctx); err != nil {
		return nil, err
	}
	return inserted, nil
}

// syncSequence moves the postgres id sequence past explicitly written ids.
// sqlite AUTOINCREMENT tracks the maximum on its own.
func (r *tutorialRepo) syncSequence(ctx context.Context) error {
	if r.dialect != DialectPostgres {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`SELECT setval(pg_get_serial_sequence('tutorials', 'id'), GREATEST((SELECT MAX(id) FROM tutorials), 1))`)
	return err
}

func (r *tutorialRepo) insert(ctx context.Context, q sq.InsertBuilder) (*model.Tutorial, error) {
	query, args, err := q.Suffix("RETURNING " + strings.Join(tutorialColumns, ", ")).ToSql()
	if err != nil {
		return nil, err
	}

	var saved model.Tutorial
	if err := r.db.GetContext(ctx, &saved, query, args...); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *tutorialRepo) DeleteByID(ctx context.Context, id int64) error {
	query, args, err := r.builder.Delete(tutorialsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *tutorialRepo) DeleteAll(ctx context.Context) error {
	query, args, err := r.builder.Delete(tutorialsTable).ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *tutorialRepo) FindByTitleContaining(ctx context.Context, text string) ([]model.Tutorial, error) {
	return r.selectTutorials(ctx, r.builder.Select(tutorialColumns...).
		From(tutorialsTable).
		Where(containsIgnoreCase("title", text)))
}

func (r *tutorialRepo) FindByDescriptionContaining(ctx context.Context, text string) ([]model.Tutorial, error) {
	return r.selectTutorials(ctx, r.builder.Select(tutorialColumns...).
		From(tutorialsTable).
		Where(containsIgnoreCase("description", text)))
}

func (r *tutorialRepo) selectTutorials(ctx context.Context, q sq.SelectBuilder) ([]model.Tutorial, error) {
	query, args, err := q.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, err
	}

	tutorials := []model.Tutorial{}
	if err := r.db.SelectContext(ctx, &tutorials, query, args...); err != nil {
		return nil, err
	}
	return tutorials, nil
}

// containsIgnoreCase matches column against text as a literal, case-insensitive substring.
func containsIgnoreCase(column, text string) sq.Sqlizer {
	return sq.Expr("LOWER("+column+") LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(text))+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
