package database

import (
	"assessment_backend/internal/config"
	"assessment_backend/internal/model"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(&config.DatabaseConfig{
		Host: "db", Port: 3306, User: "app", Password: "pw", DBName: "assess",
	})
	assert.Contains(t, dsn, "app:pw@tcp(db:3306)/assess?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	assert.Equal(t, "custom", MySQLDSN(&config.DatabaseConfig{DSN: "custom"}))
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(&config.DatabaseConfig{
		Host: "db", Port: 5432, User: "app", Password: "pw", DBName: "assess",
	})
	assert.Equal(t, "postgres://app:pw@db:5432/assess?sslmode=disable", dsn)
}

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{driver: "mysql", name: "mysql"},
		{driver: "postgres", name: "postgres"},
		{driver: "sqlite", name: "sqlite"},
		{driver: "oracle", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(&config.DatabaseConfig{
				Driver: tt.driver, Host: "localhost", Port: 1, User: "u", DBName: "d",
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestInitDBAndMigrate(t *testing.T) {
	db, err := InitDB(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range Models {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&model.Session{}, "idx_sessions_learner_section"))
	assert.True(t, db.Migrator().HasIndex(&model.Response{}, "idx_responses_key"))
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := InitRedis(&config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	_, err = InitRedis(&config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
