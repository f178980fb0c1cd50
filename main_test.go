package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"hostel-migrate/internal/config"
	"hostel-migrate/internal/report"
	"hostel-migrate/models"
)

func writeExport(t *testing.T, dir, collection, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, collection+".json"), []byte(body), 0o600))
}

func writeConfig(t *testing.T, dir, exportDir, dsn string) string {
	t.Helper()
	path := filepath.Join(dir, "hostel-migrate.yaml")
	body := "source:\n  driver: json\n  json_dir: " + exportDir + "\n" +
		"target:\n  driver: sqlite\n  dsn: " + dsn + "\n" +
		"log:\n  level: warn\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestCoreThenFullFromJSONExport(t *testing.T) {
	dir := t.TempDir()
	exportDir := filepath.Join(dir, "export")
	require.NoError(t, os.Mkdir(exportDir, 0o755))
	reportDir := filepath.Join(dir, "reports")
	dsn := filepath.Join(dir, "hostel.db")

	writeExport(t, exportDir, "rooms", `{"101": {"capacity": 3, "wifiSSID": "H-101"}}`)
	writeExport(t, exportDir, "allocations", `{
		"asha@hostel.edu": {"name": "Asha", "rollNo": "R1", "room": "101"},
		"ravi@hostel.edu": {"name": "Ravi", "rollNo": "R2"}
	}`)
	writeExport(t, exportDir, "payments", `{
		"p1": {"studentEmail": "asha@hostel.edu", "amount": 5000},
		"p2": {"studentEmail": "ghost@hostel.edu", "amount": 10}
	}`)
	writeExport(t, exportDir, "mess", `{"mon": {"day": "Monday", "Breakfast": "Idli", "Lunch": "Rice"}}`)
	cfgPath := writeConfig(t, dir, exportDir, dsn)

	require.NoError(t, runCLI(t, "core", "--config", cfgPath, "--auto-migrate", "--report-dir", reportDir))
	require.NoError(t, runCLI(t, "full", "--config", cfgPath, "--report-dir", reportDir))

	db, err := models.NewDatabase(models.DriverSQLite, dsn, gormlogger.Silent)
	require.NoError(t, err)
	defer db.Close()

	count := func(table string) int64 {
		var n int64
		require.NoError(t, db.GetDB().Table(table).Count(&n).Error)
		return n
	}
	assert.Equal(t, int64(1), count("rooms"))
	assert.Equal(t, int64(2), count("users"))
	assert.Equal(t, int64(2), count("students"))
	assert.Equal(t, int64(1), count("room_allocations"))
	assert.Equal(t, int64(1), count("payments"))
	assert.Equal(t, int64(2), count("mess_schedule"))

	entries, err := os.ReadDir(reportDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	statuses := map[string]string{}
	for _, e := range entries {
		raw, err := os.ReadFile(filepath.Join(reportDir, e.Name()))
		require.NoError(t, err)
		var rep report.Report
		require.NoError(t, json.Unmarshal(raw, &rep))
		statuses[rep.Job] = rep.Status
	}
	assert.Equal(t, map[string]string{"core": report.StatusSucceeded, "full": report.StatusSucceeded}, statuses)
}

func TestMissingCredentialsAborts(t *testing.T) {
	dir := t.TempDir()
	err := runCLI(t, "core",
		"--config", filepath.Join(dir, "absent.yaml"),
		"--source", "firestore",
		"--credentials", filepath.Join(dir, "serviceAccountKey.json"),
		"--target-driver", "sqlite",
		"--target-dsn", filepath.Join(dir, "hostel.db"),
		"--log-level", "error")
	assert.ErrorIs(t, err, config.ErrInvalidServiceAccount)
}

func TestInvalidConfigAborts(t *testing.T) {
	dir := t.TempDir()
	err := runCLI(t, "full",
		"--config", filepath.Join(dir, "absent.yaml"),
		"--source", "couchdb",
		"--target-dsn", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Source.Driver")
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, dir, filepath.Join(dir, "a.db"))

	cmd := newRootCmd()
	sub, _, err := cmd.Find([]string{"core"})
	require.NoError(t, err)
	require.NoError(t, sub.ParseFlags([]string{"--target-dsn", filepath.Join(dir, "b.db"), "--log-format", "json"}))

	fv := flagValues{configFile: cfgPath, targetDSN: filepath.Join(dir, "b.db"), logFormat: "json"}
	cfg, err := loadConfig(sub, fv)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.db"), cfg.Target.DSN)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sqlite", cfg.Target.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}
