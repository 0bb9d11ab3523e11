package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pedigree-tracker/internal/domain/animals"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store implementa animals.Repository sobre Postgres. Las escrituras corren en
// SERIALIZABLE; un fallo de serialización sale como animals.ErrTxConflict.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ animals.Repository = (*Store)(nil)

func (s *Store) View(ctx context.Context, fn func(tx animals.Tx) error) error {
	return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (s *Store) Update(ctx context.Context, fn func(tx animals.Tx) error) error {
	return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, fn func(tx animals.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&tx{q: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return translate(err, false)
	}
	return nil
}

type tx struct {
	q *sql.Tx
}

// ---------------------------------------------------------------------------
// Animal types
// ---------------------------------------------------------------------------

const typeColumns = `id, name, description, created_at, updated_at`

func scanType(sc interface{ Scan(...any) error }) (animals.AnimalType, error) {
	var t animals.AnimalType
	err := sc.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (t *tx) GetAnimalType(ctx context.Context, id string) (animals.AnimalType, error) {
	row := t.q.QueryRowContext(ctx, `SELECT `+typeColumns+` FROM animal_types WHERE id = $1`, id)
	at, err := scanType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animals.AnimalType{}, fmt.Errorf("animal type %s: %w", id, animals.ErrNotFound)
		}
		return animals.AnimalType{}, translate(err, false)
	}
	return at, nil
}

func (t *tx) GetAnimalTypeByName(ctx context.Context, name string) (animals.AnimalType, error) {
	row := t.q.QueryRowContext(ctx, `SELECT `+typeColumns+` FROM animal_types WHERE name = $1`, name)
	at, err := scanType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animals.AnimalType{}, fmt.Errorf("animal type %q: %w", name, animals.ErrNotFound)
		}
		return animals.AnimalType{}, translate(err, false)
	}
	return at, nil
}

func (t *tx) ListAnimalTypes(ctx context.Context) ([]animals.AnimalType, error) {
	rows, err := t.q.QueryContext(ctx, `SELECT `+typeColumns+` FROM animal_types ORDER BY name`)
	if err != nil {
		return nil, translate(err, false)
	}
	defer rows.Close()

	return collect(rows, scanType)
}

func (t *tx) CountAnimalsByType(ctx context.Context, typeID string) (int, error) {
	var n int
	err := t.q.QueryRowContext(ctx, `SELECT count(*) FROM animals WHERE type_id = $1`, typeID).Scan(&n)
	if err != nil {
		return 0, translate(err, false)
	}
	return n, nil
}

func (t *tx) CreateAnimalType(ctx context.Context, at animals.AnimalType) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO animal_types (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, at.ID, at.Name, at.Description, at.CreatedAt, at.UpdatedAt)
	return translate(err, false)
}

func (t *tx) UpdateAnimalType(ctx context.Context, at animals.AnimalType) error {
	res, err := t.q.ExecContext(ctx, `
		UPDATE animal_types SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`, at.ID, at.Name, at.Description, at.UpdatedAt)
	if err != nil {
		return translate(err, false)
	}
	return expectRow(res, "animal type", at.ID)
}

func (t *tx) DeleteAnimalType(ctx context.Context, id string) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM animal_types WHERE id = $1`, id)
	if err != nil {
		return translate(err, true)
	}
	return expectRow(res, "animal type", id)
}

// ---------------------------------------------------------------------------
// Animals
// ---------------------------------------------------------------------------

const animalColumns = `id, identifier, name, gender, date_of_birth, description, notes,
	external_id, metadata_json, is_active, type_id, mother_id, father_id, created_at, updated_at`

func scanAnimal(sc interface{ Scan(...any) error }) (animals.Animal, error) {
	var (
		a        animals.Animal
		gender   string
		dob      sql.NullTime
		meta     sql.NullString
		motherID sql.NullString
		fatherID sql.NullString
	)
	err := sc.Scan(
		&a.ID, &a.Identifier, &a.Name, &gender, &dob, &a.Description, &a.Notes,
		&a.ExternalID, &meta, &a.IsActive, &a.TypeID, &motherID, &fatherID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return animals.Animal{}, err
	}

	a.Gender = animals.Gender(gender)
	if dob.Valid {
		d := dob.Time
		a.DateOfBirth = &d
	}
	a.MotherID = motherID.String
	a.FatherID = fatherID.String
	if a.Metadata, err = animals.ParseMetadata(meta.String); err != nil {
		return animals.Animal{}, fmt.Errorf("animal %s: %w", a.ID, err)
	}
	return a, nil
}

func (t *tx) GetAnimal(ctx context.Context, id string) (animals.Animal, error) {
	return t.getAnimalBy(ctx, "id", id)
}

func (t *tx) GetAnimalByIdentifier(ctx context.Context, identifier string) (animals.Animal, error) {
	return t.getAnimalBy(ctx, "identifier", identifier)
}

// col es siempre una constante interna (id | identifier).
func (t *tx) getAnimalBy(ctx context.Context, col, v string) (animals.Animal, error) {
	row := t.q.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE `+col+` = $1`, v)
	a, err := scanAnimal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animals.Animal{}, fmt.Errorf("animal %s: %w", v, animals.ErrNotFound)
		}
		return animals.Animal{}, translate(err, false)
	}
	return a, nil
}

func (t *tx) ListAnimals(ctx context.Context, f animals.ListFilter) ([]animals.Animal, error) {
	var (
		where []string
		args  []any
	)
	if f.TypeID != "" {
		args = append(args, f.TypeID)
		where = append(where, fmt.Sprintf("type_id = $%d", len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR identifier ILIKE $%d)", len(args), len(args)))
	}

	q := `SELECT ` + animalColumns + ` FROM animals`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY identifier, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return t.queryAnimals(ctx, q, args...)
}

func (t *tx) FindAnimalsByParent(ctx context.Context, parentID string) ([]animals.Animal, error) {
	return t.queryAnimals(ctx, `
		SELECT `+animalColumns+` FROM animals
		WHERE mother_id = $1 OR father_id = $1
		ORDER BY identifier, id
	`, parentID)
}

func (t *tx) queryAnimals(ctx context.Context, q string, args ...any) ([]animals.Animal, error) {
	rows, err := t.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate(err, false)
	}
	defer rows.Close()

	return collect(rows, scanAnimal)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// collect recorre rows; un 40001 puede llegar recién al leer filas, así que
// los errores de Scan y Err también pasan por translate.
func collect[T any](rows rowScanner, scan func(interface{ Scan(...any) error }) (T, error)) ([]T, error) {
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, translate(err, false)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, false)
	}
	return out, nil
}

func (t *tx) CreateAnimal(ctx context.Context, a animals.Animal) error {
	meta, err := a.Metadata.Encode()
	if err != nil {
		return err
	}
	_, err = t.q.ExecContext(ctx, `
		INSERT INTO animals (
			id, identifier, name, gender, date_of_birth, description, notes,
			external_id, metadata_json, is_active, type_id, mother_id, father_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		a.ID, a.Identifier, a.Name, string(a.Gender), a.DateOfBirth, a.Description, a.Notes,
		a.ExternalID, nullString(meta), a.IsActive, a.TypeID, nullString(a.MotherID), nullString(a.FatherID),
		a.CreatedAt, a.UpdatedAt,
	)
	return translate(err, false)
}

func (t *tx) UpdateAnimal(ctx context.Context, a animals.Animal) error {
	meta, err := a.Metadata.Encode()
	if err != nil {
		return err
	}
	res, err := t.q.ExecContext(ctx, `
		UPDATE animals SET
			identifier = $2, name = $3, gender = $4, date_of_birth = $5, description = $6, notes = $7,
			external_id = $8, metadata_json = $9, is_active = $10, type_id = $11,
			mother_id = $12, father_id = $13, updated_at = $14
		WHERE id = $1
	`,
		a.ID, a.Identifier, a.Name, string(a.Gender), a.DateOfBirth, a.Description, a.Notes,
		a.ExternalID, nullString(meta), a.IsActive, a.TypeID,
		nullString(a.MotherID), nullString(a.FatherID), a.UpdatedAt,
	)
	if err != nil {
		return translate(err, false)
	}
	return expectRow(res, "animal", a.ID)
}

func (t *tx) DeleteAnimal(ctx context.Context, id string) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM animals WHERE id = $1`, id)
	if err != nil {
		return translate(err, true)
	}
	return expectRow(res, "animal", id)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// translate lleva errores de Postgres a los sentinels del dominio.
// deleting distingue FK violada por borrar un referenciado (23503 en DELETE)
// de FK apuntando a nada (23503 en INSERT/UPDATE).
func translate(err error, deleting bool) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		return fmt.Errorf("%w: %s", animals.ErrDuplicate, uniqueSubject(pgErr.ConstraintName))
	case "23503": // foreign_key_violation
		if deleting {
			return fmt.Errorf("%w: %s", animals.ErrHasDependents, pgErr.Message)
		}
		return animals.MissingReference(fkEntity(pgErr.ConstraintName), "")
	case "23514": // check_violation
		if strings.Contains(pgErr.ConstraintName, "not_self") {
			return fmt.Errorf("%w: an animal cannot be its own parent", animals.ErrParentageConflict)
		}
		return fmt.Errorf("%w: %s", animals.ErrInvalidInput, pgErr.Message)
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return fmt.Errorf("%w: %s", animals.ErrTxConflict, pgErr.Message)
	default:
		return err
	}
}

func uniqueSubject(constraint string) string {
	switch constraint {
	case "animals_identifier_key":
		return "animal identifier"
	case "animal_types_name_key":
		return "animal type name"
	default:
		return constraint
	}
}

func fkEntity(constraint string) string {
	switch {
	case strings.Contains(constraint, "mother"):
		return string(animals.RoleMother)
	case strings.Contains(constraint, "father"):
		return string(animals.RoleFather)
	default:
		return "animal type"
	}
}

func expectRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, animals.ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
