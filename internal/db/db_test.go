package db

import (
	"testing"

	"todo_system/internal/config"
	"todo_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	mysqlCfg := &config.Config{DBDriver: config.DriverMySQL, DBUser: "u", DBPassword: "p", DBHost: "db", DBName: "todos"}
	assert.Equal(t, "u:p@tcp(db:3306)/todos?parseTime=true&charset=utf8mb4&loc=UTC", DSN(mysqlCfg))

	pgCfg := &config.Config{DBDriver: config.DriverPostgres, DBUser: "u", DBPassword: "p", DBHost: "db", DBName: "todos", DBPort: "6543", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=u password=p dbname=todos port=6543 sslmode=require TimeZone=UTC", DSN(pgCfg))

	sqliteCfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: "/tmp/todos.db"}
	assert.Equal(t, "/tmp/todos.db", DSN(sqliteCfg))
}

func TestDialector(t *testing.T) {
	assert.Equal(t, "mysql", Dialector(&config.Config{DBDriver: config.DriverMySQL}).Name())
	assert.Equal(t, "postgres", Dialector(&config.Config{DBDriver: config.DriverPostgres}).Name())
	assert.Equal(t, "sqlite", Dialector(&config.Config{DBDriver: config.DriverSQLite}).Name())
}

func TestMigrate_CreatesTables(t *testing.T) {
	gdb, err := OpenSQLite(":memory:", true)
	require.NoError(t, err)

	require.NoError(t, Migrate(gdb))

	assert.True(t, gdb.Migrator().HasTable(&domain.User{}))
	assert.True(t, gdb.Migrator().HasTable(&domain.Todo{}))
	assert.True(t, gdb.Migrator().HasIndex(&domain.User{}, "Username"))
	assert.True(t, gdb.Migrator().HasIndex(&domain.User{}, "Email"))
	assert.True(t, gdb.Migrator().HasColumn(&domain.Todo{}, "is_completed"))
}
