package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pedigree-tracker/internal/domain/animals"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Open abre (o crea) la base en path con foreign keys activas.
// Una sola conexión: SQLite serializa escritores y así las transacciones no se pisan.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(gormsqlite.Dialector{
		DriverName: "sqlite",
		DSN:        withPragmas(path),
	}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func withPragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Store implementa animals.Repository sobre SQLite (gorm + modernc).
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ animals.Repository = (*Store)(nil)

func (s *Store) View(ctx context.Context, fn func(tx animals.Tx) error) error {
	return s.run(ctx, fn)
}

func (s *Store) Update(ctx context.Context, fn func(tx animals.Tx) error) error {
	return s.run(ctx, fn)
}

func (s *Store) run(ctx context.Context, fn func(tx animals.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&tx{db: gtx})
	})
}

type tx struct {
	db *gorm.DB
}

// ---------------------------------------------------------------------------
// Animal types
// ---------------------------------------------------------------------------

func (t *tx) GetAnimalType(ctx context.Context, id string) (animals.AnimalType, error) {
	var m animalTypeModel
	err := t.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return animals.AnimalType{}, fmt.Errorf("animal type %s: %w", id, animals.ErrNotFound)
		}
		return animals.AnimalType{}, err
	}
	return m.toDomain(), nil
}

func (t *tx) GetAnimalTypeByName(ctx context.Context, name string) (animals.AnimalType, error) {
	var m animalTypeModel
	err := t.db.WithContext(ctx).Where("name = ?", name).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return animals.AnimalType{}, fmt.Errorf("animal type %q: %w", name, animals.ErrNotFound)
		}
		return animals.AnimalType{}, err
	}
	return m.toDomain(), nil
}

func (t *tx) ListAnimalTypes(ctx context.Context) ([]animals.AnimalType, error) {
	rows := make([]animalTypeModel, 0)
	if err := t.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]animals.AnimalType, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (t *tx) CountAnimalsByType(ctx context.Context, typeID string) (int, error) {
	var n int64
	err := t.db.WithContext(ctx).Model(&animalModel{}).Where("type_id = ?", typeID).Count(&n).Error
	return int(n), err
}

func (t *tx) CreateAnimalType(ctx context.Context, at animals.AnimalType) error {
	m := toTypeModel(at)
	return translate(t.db.WithContext(ctx).Create(&m).Error, false)
}

func (t *tx) UpdateAnimalType(ctx context.Context, at animals.AnimalType) error {
	res := t.db.WithContext(ctx).Model(&animalTypeModel{}).Where("id = ?", at.ID).Updates(map[string]any{
		"name":        at.Name,
		"description": at.Description,
		"updated_at":  at.UpdatedAt.UTC(),
	})
	if res.Error != nil {
		return translate(res.Error, false)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("animal type %s: %w", at.ID, animals.ErrNotFound)
	}
	return nil
}

func (t *tx) DeleteAnimalType(ctx context.Context, id string) error {
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(&animalTypeModel{})
	if res.Error != nil {
		return translate(res.Error, true)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("animal type %s: %w", id, animals.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Animals
// ---------------------------------------------------------------------------

func (t *tx) GetAnimal(ctx context.Context, id string) (animals.Animal, error) {
	return t.takeAnimal(ctx, "id = ?", id)
}

func (t *tx) GetAnimalByIdentifier(ctx context.Context, identifier string) (animals.Animal, error) {
	return t.takeAnimal(ctx, "identifier = ?", identifier)
}

func (t *tx) takeAnimal(ctx context.Context, cond string, v string) (animals.Animal, error) {
	var m animalModel
	err := t.db.WithContext(ctx).Where(cond, v).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return animals.Animal{}, fmt.Errorf("animal %s: %w", v, animals.ErrNotFound)
		}
		return animals.Animal{}, err
	}
	return m.toDomain()
}

func (t *tx) ListAnimals(ctx context.Context, f animals.ListFilter) ([]animals.Animal, error) {
	q := t.db.WithContext(ctx).Model(&animalModel{})
	if f.TypeID != "" {
		q = q.Where("type_id = ?", f.TypeID)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Search != "" {
		like := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		q = q.Where(`(lower(name) LIKE ? ESCAPE '\' OR lower(identifier) LIKE ? ESCAPE '\')`, like, like)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return t.findAnimals(q.Order("identifier").Order("id"))
}

func (t *tx) FindAnimalsByParent(ctx context.Context, parentID string) ([]animals.Animal, error) {
	q := t.db.WithContext(ctx).
		Where("mother_id = ? OR father_id = ?", parentID, parentID).
		Order("identifier").Order("id")
	return t.findAnimals(q)
}

func (t *tx) findAnimals(q *gorm.DB) ([]animals.Animal, error) {
	rows := make([]animalModel, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]animals.Animal, 0, len(rows))
	for _, m := range rows {
		a, err := m.toDomain()
		if err != nil {
			return nil, fmt.Errorf("animal %s: %w", m.ID, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (t *tx) CreateAnimal(ctx context.Context, a animals.Animal) error {
	m, err := toAnimalModel(a)
	if err != nil {
		return err
	}
	return translate(t.db.WithContext(ctx).Create(&m).Error, false)
}

func (t *tx) UpdateAnimal(ctx context.Context, a animals.Animal) error {
	m, err := toAnimalModel(a)
	if err != nil {
		return err
	}
	// Select("*") para que gorm escriba también ceros y NULLs (limpiar padres, desactivar).
	res := t.db.WithContext(ctx).Model(&animalModel{ID: m.ID}).Select("*").Omit("id", "created_at").Updates(&m)
	if res.Error != nil {
		return translate(res.Error, false)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("animal %s: %w", a.ID, animals.ErrNotFound)
	}
	return nil
}

func (t *tx) DeleteAnimal(ctx context.Context, id string) error {
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(&animalModel{})
	if res.Error != nil {
		return translate(res.Error, true)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("animal %s: %w", id, animals.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// translate lleva códigos extendidos de SQLite a sentinels del dominio.
func translate(err error, deleting bool) error {
	if err == nil {
		return nil
	}

	var se *msqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %s", animals.ErrDuplicate, se.Error())
	case sqlite3.SQLITE_CONSTRAINT_TRIGGER:
		// RESTRICT se reporta como trigger aunque sea una FK
		if deleting && strings.Contains(se.Error(), "FOREIGN KEY") {
			return fmt.Errorf("%w: %s", animals.ErrHasDependents, se.Error())
		}
		return err
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		if deleting {
			return fmt.Errorf("%w: %s", animals.ErrHasDependents, se.Error())
		}
		// SQLite no dice qué FK falló
		return animals.MissingReference("referenced record", "")
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		if msg := se.Error(); strings.Contains(msg, "mother_id") || strings.Contains(msg, "father_id") {
			return fmt.Errorf("%w: an animal cannot be its own parent", animals.ErrParentageConflict)
		}
		return fmt.Errorf("%w: %s", animals.ErrInvalidInput, se.Error())
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %s", animals.ErrTxConflict, se.Error())
	default:
		return err
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
