package migrate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-migrate/internal/mapping"
	"hostel-migrate/models"
)

// Rooms referenced by an allocation before the rooms collection lists them.
const (
	allocatedRoomStatus   = "occupied"
	allocatedRoomCapacity = 2
)

// RunCore migrates rooms, then users with their student profiles and room
// allocations.
func (m *Migrator) RunCore(ctx context.Context) ([]Stats, error) {
	return m.run(ctx, []step{
		{"rooms", one(m.MigrateRooms)},
		{"users-students", m.MigrateUsersAndStudents},
	})
}

// MigrateRooms upserts every room by room number. Existing rooms get their
// capacity, status and wifi details overwritten.
func (m *Migrator) MigrateRooms(ctx context.Context) (Stats, error) {
	tbl := mapping.Rooms
	docs, err := m.fetch(ctx, tbl.Collection)
	if err != nil {
		return Stats{Collection: tbl.Collection, Table: models.Room{}.TableName()}, err
	}
	st := m.begin(ctx, tbl.Collection, models.Room{}.TableName(), len(docs))

	db := m.db.GetDB().WithContext(ctx)
	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"capacity", "status", "wifi_ssid", "wifi_password"}),
	}
	for _, doc := range docs {
		m.processed(st)
		if doc.ID == "" {
			m.skipped(st, doc.ID, "empty room number")
			continue
		}

		v := tbl.Apply(doc.Data, m.now())
		room := models.Room{
			RoomNumber:   doc.ID,
			Capacity:     v.Int("capacity"),
			Status:       v.String("status"),
			WifiSSID:     v.StringPtr("wifi_ssid"),
			WifiPassword: v.StringPtr("wifi_password"),
		}

		var existing int64
		if err := db.Model(&models.Room{}).Where("room_number = ?", doc.ID).Count(&existing).Error; err != nil {
			return *st, fmt.Errorf("room %s lookup failed: %w", doc.ID, err)
		}
		if err := db.Clauses(upsert).Create(&room).Error; err != nil {
			m.log.Error("room upsert failed", zap.String("room", doc.ID), zap.Error(err))
			return *st, fmt.Errorf("room %s upsert failed: %w", doc.ID, err)
		}
		if existing > 0 {
			st.Updated++
		} else {
			m.inserted(st, 1)
		}
	}

	m.finish(ctx, st)
	return *st, nil
}

type allocationOutcome int

const (
	noRoom allocationOutcome = iota
	allocationInserted
	allocationExists
	studentUnresolved
)

type userOutcome struct {
	userCreated     bool
	studentInserted bool
	allocation      allocationOutcome
}

// MigrateUsersAndStudents reads the allocations collection, whose document
// IDs are student emails. Each document is written in its own transaction:
// the user is found or created, the student profile inserted unless its
// user or roll number already has one, and when the document names a room
// the student is allocated to it.
//
// Stats are returned for users, students and room_allocations in that order.
func (m *Migrator) MigrateUsersAndStudents(ctx context.Context) ([]Stats, error) {
	tbl := mapping.Allocations
	docs, err := m.fetch(ctx, tbl.Collection)
	if err != nil {
		return nil, err
	}
	users := m.begin(ctx, tbl.Collection, models.User{}.TableName(), len(docs))
	students := m.begin(ctx, tbl.Collection, models.Student{}.TableName(), len(docs))
	allocs := m.begin(ctx, tbl.Collection, models.RoomAllocation{}.TableName(), len(docs))
	partial := func() []Stats { return []Stats{*users, *students, *allocs} }

	for _, doc := range docs {
		m.processed(users)
		m.processed(students)
		email := doc.ID
		if email == "" {
			m.skipped(users, doc.ID, "empty email")
			m.skipped(students, doc.ID, "empty email")
			continue
		}

		now := m.now()
		v := tbl.Apply(doc.Data, now)
		var out userOutcome
		err := m.db.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			out, err = m.writeUser(tx, email, v, now)
			return err
		})
		if err != nil {
			m.log.Error("allocation document failed", zap.String("email", email), zap.Error(err))
			return partial(), fmt.Errorf("allocation %s failed: %w", email, err)
		}

		if out.userCreated {
			m.inserted(users, 1)
		} else {
			m.skipped(users, email, "user already exists")
		}
		if out.studentInserted {
			m.inserted(students, 1)
		} else {
			m.skipped(students, email, "student already exists for this user or roll number")
		}
		if out.allocation != noRoom {
			m.processed(allocs)
		}
		switch out.allocation {
		case allocationInserted:
			m.inserted(allocs, 1)
		case allocationExists:
			m.skipped(allocs, email, "allocation already exists")
		case studentUnresolved:
			m.skipped(allocs, email, "no student row for user")
		}
	}

	m.finish(ctx, users)
	m.finish(ctx, students)
	m.finish(ctx, allocs)
	return partial(), nil
}

func (m *Migrator) writeUser(tx *gorm.DB, email string, v mapping.Values, now time.Time) (userOutcome, error) {
	var out userOutcome

	var user models.User
	res := tx.Where("email = ?", email).Limit(1).Find(&user)
	if res.Error != nil {
		return out, fmt.Errorf("user lookup: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		user = models.User{
			Email:     email,
			FullName:  v.String("full_name"),
			Role:      "student",
			CreatedAt: now,
		}
		if err := tx.Create(&user).Error; err != nil {
			return out, fmt.Errorf("user insert: %w", err)
		}
		out.userCreated = true
	}

	student := models.Student{
		UserID:                user.ID,
		RollNo:                v.StringPtr("roll_no"),
		CollegeName:           v.StringPtr("college_name"),
		HostelName:            v.StringPtr("hostel_name"),
		DOB:                   v.TimePtr("dob"),
		Phone:                 v.StringPtr("phone"),
		PersonalEmail:         v.StringPtr("personal_email"),
		Address:               v.StringPtr("address"),
		FatherName:            v.StringPtr("father_name"),
		FatherPhone:           v.StringPtr("father_phone"),
		MotherName:            v.StringPtr("mother_name"),
		MotherPhone:           v.StringPtr("mother_phone"),
		BloodGroup:            v.StringPtr("blood_group"),
		MedicalHistory:        v.StringPtr("medical_history"),
		EmergencyContactName:  v.StringPtr("emergency_contact_name"),
		EmergencyContactPhone: v.StringPtr("emergency_contact_phone"),
		Status:                v.String("status"),
		Dues:                  v.Float("dues"),
		CreatedAt:             now,
	}
	res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&student)
	if res.Error != nil {
		return out, fmt.Errorf("student insert: %w", res.Error)
	}
	out.studentInserted = res.RowsAffected > 0

	roomNumber := v.String(mapping.ColRoom)
	if roomNumber == "" {
		return out, nil
	}

	room, err := findOrCreateRoom(tx, roomNumber)
	if err != nil {
		return out, err
	}

	var existing models.Student
	res = tx.Select("id").Where("user_id = ?", user.ID).Limit(1).Find(&existing)
	if res.Error != nil {
		return out, fmt.Errorf("student lookup: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		out.allocation = studentUnresolved
		return out, nil
	}

	alloc := models.RoomAllocation{
		StudentID:   existing.ID,
		RoomID:      room.ID,
		IsActive:    true,
		AllocatedAt: now,
	}
	res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&alloc)
	if res.Error != nil {
		return out, fmt.Errorf("room allocation insert: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		out.allocation = allocationInserted
	} else {
		out.allocation = allocationExists
	}
	return out, nil
}

func findOrCreateRoom(tx *gorm.DB, number string) (models.Room, error) {
	var room models.Room
	res := tx.Where("room_number = ?", number).Limit(1).Find(&room)
	if res.Error != nil {
		return room, fmt.Errorf("room lookup: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return room, nil
	}
	room = models.Room{RoomNumber: number, Status: allocatedRoomStatus, Capacity: allocatedRoomCapacity}
	if err := tx.Create(&room).Error; err != nil {
		return room, fmt.Errorf("room insert: %w", err)
	}
	return room, nil
}
