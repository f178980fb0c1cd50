// Package testutil provides an in-memory target database and fixtures for
// migrator tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	gormlogger "gorm.io/gorm/logger"

	"hostel-migrate/models"
)

// NewTestDB opens a private in-memory sqlite database with the full schema
// created. It is closed when the test ends.
func NewTestDB(t *testing.T) models.Database {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := models.NewDatabase(models.DriverSQLite, dsn, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Fixtures inserts rows directly into a test database.
type Fixtures struct {
	db models.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db models.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// CreateStudent creates a user with the given email and its student profile.
func (f *Fixtures) CreateStudent(email, rollNo string) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{Email: email, FullName: "Test Student", Role: "student", CreatedAt: now}
	if err := f.db.GetDB().Create(&user).Error; err != nil {
		f.t.Fatalf("create user %s: %v", email, err)
	}
	student := models.Student{UserID: user.ID, Status: "active", CreatedAt: now}
	if rollNo != "" {
		student.RollNo = &rollNo
	}
	if err := f.db.GetDB().Create(&student).Error; err != nil {
		f.t.Fatalf("create student %s: %v", email, err)
	}
	return student
}

// CreateRoom creates a room with the given number.
func (f *Fixtures) CreateRoom(number string, capacity int) models.Room {
	f.t.Helper()

	room := models.Room{RoomNumber: number, Capacity: capacity, Status: "vacant"}
	if err := f.db.GetDB().Create(&room).Error; err != nil {
		f.t.Fatalf("create room %s: %v", number, err)
	}
	return room
}

// Count returns the number of rows in table.
func Count(t *testing.T, db models.Database, table string) int64 {
	t.Helper()

	var n int64
	if err := db.GetDB().Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
