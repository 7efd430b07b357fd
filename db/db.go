package db

import (
	"fmt"
	"strings"
	"time"

	"ong_equipment_tool/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to postgres (dsn) or sqlite (dsn is a file path or
// ":memory:"). sqlite runs on the pure-Go modernc driver.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Warn),
	}

	switch driver {
	case DriverPostgres:
		gdb, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		return gdb, nil

	case DriverSQLite:
		gdb, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: sqliteDSN(dsn)}), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		// 单连接：写事务串行，":memory:" 库也不会丢
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return gdb, nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
}

func sqliteDSN(path string) string {
	pragmas := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	if path != ":memory:" && !strings.Contains(path, "mode=memory") {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)", "_pragma=synchronous(NORMAL)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(pragmas, "&")
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Setting{},
		&models.Equipment{},
		&models.Collaborator{},
		&models.Loan{},
		&models.Assignment{},
		&models.Maintenance{},
		&models.StatusOverride{},
	); err != nil {
		return err
	}

	// 每台设备最多一条进行中的借出 / 分配 / 维修
	partial := []struct{ table, name, where string }{
		{models.LoanTable, "one_open_loan", "status = 'loaned'"},
		{models.AssignmentTable, "one_active_assignment", "status = 'assigned'"},
		{models.MaintenanceTable, "one_running_maintenance", "status = 'in_progress'"},
	}
	for _, p := range partial {
		if err := db.Exec(fmt.Sprintf(
			`CREATE UNIQUE INDEX IF NOT EXISTS %s_%s ON %s (equipment_id) WHERE %s`,
			p.table, p.name, p.table, p.where,
		)).Error; err != nil {
			return err
		}
	}

	// 逾期查询
	if err := db.Exec(fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s_open_due ON %s (due_date) WHERE status = 'loaned'`,
		models.LoanTable, models.LoanTable,
	)).Error; err != nil {
		return err
	}
	return nil
}
