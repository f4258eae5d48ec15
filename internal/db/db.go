package db

import (
	"fmt"
	"strings"
	"time"

	"yatube/internal/config"
	"yatube/internal/logging"
	"yatube/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.New(logging.L(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch strings.ToLower(cfg.DBDriver) {
	case "sqlite":
		conn, err = OpenSQLite(cfg.DatabaseURL, gormCfg)
	default:
		conn, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logging.L().Info().Str("driver", cfg.DBDriver).Msg("database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// OpenSQLite opens a SQLite database with foreign key enforcement switched on.
// In-memory databases are pinned to one connection so every query sees the same data.
func OpenSQLite(dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if !strings.Contains(dsn, "_foreign_keys") && !strings.Contains(dsn, "_fk") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	if gormCfg == nil {
		gormCfg = &gorm.Config{}
	}

	conn, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return conn, nil
}

// Migrate creates or updates the schema and seeds the initial groups.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logging.L().Info().Msg("database migration completed")

	return seedGroups(conn)
}

func seedGroups(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Group{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count groups: %w", err)
	}
	if count > 0 {
		return nil
	}

	groups := []models.Group{
		{Title: "Лев Толстой", Slug: "leo", Description: "Записи о жизни и творчестве Льва Толстого"},
		{Title: "Путешествия", Slug: "travel", Description: "Заметки из поездок, маршруты и фотографии"},
		{Title: "Разработка", Slug: "dev", Description: "Программирование, инструменты и практики"},
	}
	if err := conn.Create(&groups).Error; err != nil {
		return fmt.Errorf("seed groups: %w", err)
	}
	logging.L().Info().Int("count", len(groups)).Msg("initial groups created")
	return nil
}
