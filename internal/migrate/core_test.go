package migrate

import (
	"context"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hostel-migrate/internal/source"
	"hostel-migrate/internal/testutil"
	"hostel-migrate/models"
)

func findRoom(t *testing.T, h *harness, number string) models.Room {
	t.Helper()
	var room models.Room
	require.NoError(t, h.db.GetDB().Where("room_number = ?", number).First(&room).Error)
	return room
}

func TestMigrateRoomsUpsert(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := source.NewMemory().Add("rooms",
		doc("101", map[string]any{"capacity": int64(3), "status": "occupied", "wifiSSID": "H-101", "wifiPassword": "pw"}),
		doc("102", nil),
	)
	st, err := h.migrator(first).MigrateRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Processed)
	assert.Equal(t, 2, st.Inserted)
	assert.Equal(t, int64(0), st.TargetBefore)
	assert.Equal(t, int64(2), st.TargetAfter)

	r102 := findRoom(t, h, "102")
	assert.Equal(t, 2, r102.Capacity)
	assert.Equal(t, "vacant", r102.Status)
	assert.Nil(t, r102.WifiSSID)

	second := source.NewMemory().Add("rooms", doc("101", map[string]any{"capacity": int64(4)}))
	st, err = h.migrator(second).MigrateRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Updated)
	assert.Equal(t, 0, st.Inserted)
	assert.Equal(t, int64(2), st.TargetAfter)

	r101 := findRoom(t, h, "101")
	assert.Equal(t, 4, r101.Capacity)
	assert.Equal(t, "vacant", r101.Status)
	assert.Nil(t, r101.WifiSSID)
	assert.Nil(t, r101.WifiPassword)
}

func TestUsersAndStudentsRerunKeepsOneUserPerEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	src := source.NewMemory().Add("allocations",
		doc("asha@hostel.edu", map[string]any{"name": "Asha", "rollNo": "R1", "room": "101", "dues": "1500.5"}),
	)

	stats, err := h.migrator(src).MigrateUsersAndStudents(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, "users", stats[0].Table)
	assert.Equal(t, 1, stats[0].Inserted)
	assert.Equal(t, 1, stats[1].Inserted)
	assert.Equal(t, 1, stats[2].Inserted)

	stats, err = h.migrator(src).MigrateUsersAndStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats[0].Inserted)
	assert.Equal(t, 1, stats[0].Skipped)
	assert.Equal(t, 1, stats[1].Skipped)
	assert.Equal(t, 1, stats[2].Skipped)
	assert.Equal(t, 1, h.logs.FilterMessage("document skipped").
		FilterField(zap.String("reason", "user already exists")).Len())

	expected := `
# HELP hostel_migrate_documents_skipped_total Source documents that produced no row, per target table.
# TYPE hostel_migrate_documents_skipped_total counter
hostel_migrate_documents_skipped_total{table="room_allocations"} 1
hostel_migrate_documents_skipped_total{table="students"} 1
hostel_migrate_documents_skipped_total{table="users"} 1
`
	assert.NoError(t, promtest.GatherAndCompare(h.metrics.Registry(), strings.NewReader(expected),
		"hostel_migrate_documents_skipped_total"))

	assert.Equal(t, int64(1), testutil.Count(t, h.db, "users"))
	assert.Equal(t, int64(1), testutil.Count(t, h.db, "students"))
	assert.Equal(t, int64(1), testutil.Count(t, h.db, "room_allocations"))

	var user models.User
	require.NoError(t, h.db.GetDB().Where("email = ?", "asha@hostel.edu").First(&user).Error)
	assert.Equal(t, "Asha", user.FullName)
	assert.Equal(t, "student", user.Role)

	var student models.Student
	require.NoError(t, h.db.GetDB().Where("user_id = ?", user.ID).First(&student).Error)
	require.NotNil(t, student.RollNo)
	assert.Equal(t, "R1", *student.RollNo)
	assert.Equal(t, 1500.5, student.Dues)
	assert.Equal(t, "active", student.Status)

	room := findRoom(t, h, "101")
	assert.Equal(t, "occupied", room.Status)
	assert.Equal(t, 2, room.Capacity)

	var alloc models.RoomAllocation
	require.NoError(t, h.db.GetDB().First(&alloc).Error)
	assert.Equal(t, student.ID, alloc.StudentID)
	assert.Equal(t, room.ID, alloc.RoomID)
	assert.True(t, alloc.IsActive)
}

func TestDuplicateRollNoSkipsStudentAndAllocation(t *testing.T) {
	h := newHarness(t)
	src := source.NewMemory().Add("allocations",
		doc("a@hostel.edu", map[string]any{"rollNo": "R1", "room": "101"}),
		doc("b@hostel.edu", map[string]any{"rollNo": "R1", "roomNumber": "102"}),
	)

	stats, err := h.migrator(src).MigrateUsersAndStudents(context.Background())
	require.NoError(t, err)

	users, students, allocs := stats[0], stats[1], stats[2]
	assert.Equal(t, 2, users.Inserted)
	assert.Equal(t, 1, students.Inserted)
	assert.Equal(t, 1, students.Skipped)
	assert.Equal(t, 2, allocs.Processed)
	assert.Equal(t, 1, allocs.Inserted)
	assert.Equal(t, 1, allocs.Skipped)

	assert.Equal(t, int64(2), testutil.Count(t, h.db, "users"))
	assert.Equal(t, int64(1), testutil.Count(t, h.db, "students"))
	assert.Equal(t, int64(1), testutil.Count(t, h.db, "room_allocations"))
	assert.Equal(t, int64(2), testutil.Count(t, h.db, "rooms"))

	unresolved := h.logs.FilterMessage("document skipped").
		FilterField(zap.String("reason", "no student row for user"))
	require.Equal(t, 1, unresolved.Len())
	assert.Equal(t, "b@hostel.edu", unresolved.All()[0].ContextMap()["id"])
}

func TestUserDefaultsWithoutRoom(t *testing.T) {
	h := newHarness(t)
	src := source.NewMemory().Add("allocations", doc("c@hostel.edu", nil))

	stats, err := h.migrator(src).MigrateUsersAndStudents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats[2].Processed)

	var user models.User
	require.NoError(t, h.db.GetDB().First(&user).Error)
	assert.Equal(t, "Unknown", user.FullName)
	assert.WithinDuration(t, testNow, user.CreatedAt, time.Second)

	var student models.Student
	require.NoError(t, h.db.GetDB().First(&student).Error)
	assert.Nil(t, student.RollNo)
	assert.Nil(t, student.DOB)
	assert.Zero(t, student.Dues)
	assert.Equal(t, int64(0), testutil.Count(t, h.db, "rooms"))
}

func TestRunCoreUsesRoomsBeforeAllocations(t *testing.T) {
	h := newHarness(t)
	src := source.NewMemory().
		Add("rooms", doc("201", map[string]any{"capacity": int64(4), "status": "available"})).
		Add("allocations", doc("d@hostel.edu", map[string]any{"room": "201"}))

	stats, err := h.migrator(src).RunCore(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 4)
	assert.Equal(t, []string{"rooms", "users", "students", "room_allocations"},
		[]string{stats[0].Table, stats[1].Table, stats[2].Table, stats[3].Table})

	room := findRoom(t, h, "201")
	assert.Equal(t, 4, room.Capacity)
	assert.Equal(t, "available", room.Status)
	assert.Equal(t, int64(1), testutil.Count(t, h.db, "room_allocations"))
}

func TestEmptyDocumentIDsAreSkipped(t *testing.T) {
	h := newHarness(t)
	src := source.NewMemory().
		Add("rooms", doc("", nil)).
		Add("allocations", doc("", map[string]any{"name": "Ghost"}))

	stats, err := h.migrator(src).RunCore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats[0].Skipped)
	assert.Equal(t, 1, stats[1].Skipped)
	assert.Equal(t, 1, stats[2].Skipped)
	assert.Equal(t, int64(0), testutil.Count(t, h.db, "users"))
}

func TestAllocationReusesExistingRoom(t *testing.T) {
	h := newHarness(t)
	existing := testutil.NewFixtures(t, h.db).CreateRoom("305", 3)
	src := source.NewMemory().Add("allocations", doc("e@hostel.edu", map[string]any{"Room": "305"}))

	stats, err := h.migrator(src).MigrateUsersAndStudents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats[2].Inserted)

	room := findRoom(t, h, "305")
	assert.Equal(t, existing.ID, room.ID)
	assert.Equal(t, 3, room.Capacity)
	assert.Equal(t, "vacant", room.Status)
	assert.Equal(t, int64(1), testutil.Count(t, h.db, "rooms"))

	var alloc models.RoomAllocation
	require.NoError(t, h.db.GetDB().First(&alloc).Error)
	assert.Equal(t, existing.ID, alloc.RoomID)
}
