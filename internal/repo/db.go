package repo

import (
	"CaseKeeper/internal/model"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// InitDB открывает реляционную БД и применяет миграции.
func InitDB(driver, dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case DriverPostgres:
		dial = postgres.Open(dsn)
	case DriverSQLite:
		// modernc.org/sqlite регистрируется под именем "sqlite"
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		NowFunc:        Now,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, storageErr("open", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.CriminalRecord{}, &model.FirRecord{}); err != nil {
		return nil, storageErr("migrate", err)
	}
	return db, nil
}

type gormStore struct {
	db        *gorm.DB
	users     *userRepo
	criminals *criminalRepo
	firs      *firRepo
}

// NewGormStore реляционный бэкенд поверх gorm.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{
		db:        db,
		users:     &userRepo{db: db},
		criminals: &criminalRepo{db: db},
		firs:      &firRepo{db: db},
	}
}

func (s *gormStore) Users() UserRepository         { return s.users }
func (s *gormStore) Criminals() CriminalRepository { return s.criminals }
func (s *gormStore) Firs() FirRepository           { return s.firs }

// Close закрывает пул соединений.
func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// mapErr приводит ошибки gorm к таксономии хранилища.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrDanglingReference), errors.Is(err, ErrStorage):
		return err
	}
	return storageErr(op, err)
}
