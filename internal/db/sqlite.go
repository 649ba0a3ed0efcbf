package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/soabuilder/soa-backend/internal/pkg/logger"
	"github.com/soabuilder/soa-backend/internal/types"
)

type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteService(dbPath string, log *logger.Logger) (*SQLiteService, error) {
	serviceLog := log.With("service", "SQLiteService")

	log.Info("Opening SQLite database...", "path", dbPath)
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Error("Failed to open SQLite database", "error", err)
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// The store is single-writer; serialize all writes on one connection so
	// Freeze and Rollback transactions never interleave.
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &SQLiteService{db: gdb, log: serviceLog}, nil
}

func (s *SQLiteService) AutoMigrateAll() error {
	s.log.Info("Auto migrating sqlite tables...")
	err := s.db.AutoMigrate(
		&types.Study{},
		&types.Visit{},
		&types.Activity{},
		&types.Cell{},
		&types.Element{},
		&types.Epoch{},
		&types.Arm{},
		&types.ActivityConcept{},
		&types.Freeze{},
		&types.EntityAudit{},
		&types.RollbackAudit{},
		&types.ReorderAudit{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for sqlite tables", "error", err)
		return err
	}
	return nil
}

func (s *SQLiteService) DB() *gorm.DB {
	return s.db
}
