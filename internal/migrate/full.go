package migrate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hostel-migrate/internal/mapping"
	"hostel-migrate/internal/source"
	"hostel-migrate/models"
)

// RunFull migrates the collections that hang off students plus the
// standalone reference collections.
func (m *Migrator) RunFull(ctx context.Context) ([]Stats, error) {
	return m.run(ctx, []step{
		{"complaints", one(m.MigrateComplaints)},
		{"payments", one(m.MigratePayments)},
		{"laundry", one(m.MigrateLaundry)},
		{"leaves", one(m.MigrateLeaves)},
		{"notices", one(m.MigrateNotices)},
		{"bustimings", one(m.MigrateBusTimings)},
		{"mess", one(m.MigrateMess)},
		{"emergency-contacts", one(m.MigrateEmergencyContacts)},
	})
}

// StudentIDByEmail resolves the student whose user has the given email. An
// empty email or no matching student is a miss, not an error.
func (m *Migrator) StudentIDByEmail(ctx context.Context, email string) (uint, bool, error) {
	return studentIDByEmail(m.db.GetDB().WithContext(ctx), email)
}

func studentIDByEmail(db *gorm.DB, email string) (uint, bool, error) {
	if email == "" {
		return 0, false, nil
	}
	var row struct{ ID uint }
	res := db.Table(models.Student{}.TableName()).
		Select("students.id AS id").
		Joins("JOIN users ON users.id = students.user_id").
		Where("users.email = ?", email).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return 0, false, fmt.Errorf("student lookup %s: %w", email, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return row.ID, true, nil
}

// buildFunc turns one mapped document into a row pointer, or returns a skip
// reason.
type buildFunc func(db *gorm.DB, doc source.Document, v mapping.Values) (row any, skip string, err error)

// insertEach maps every document of tbl and inserts the built row.
func (m *Migrator) insertEach(ctx context.Context, tbl mapping.Table, table string, build buildFunc) (Stats, error) {
	docs, err := m.fetch(ctx, tbl.Collection)
	if err != nil {
		return Stats{Collection: tbl.Collection, Table: table}, err
	}
	st := m.begin(ctx, tbl.Collection, table, len(docs))

	db := m.db.GetDB().WithContext(ctx)
	for _, doc := range docs {
		m.processed(st)
		v := tbl.Apply(doc.Data, m.now())
		row, skip, err := build(db, doc, v)
		if err != nil {
			return *st, fmt.Errorf("%s %s: %w", tbl.Collection, doc.ID, err)
		}
		if skip != "" {
			m.skipped(st, doc.ID, skip)
			continue
		}
		if err := db.Create(row).Error; err != nil {
			m.log.Error("insert failed", zap.String("collection", tbl.Collection), zap.String("id", doc.ID), zap.Error(err))
			return *st, fmt.Errorf("%s %s insert failed: %w", tbl.Collection, doc.ID, err)
		}
		m.inserted(st, 1)
	}

	m.finish(ctx, st)
	return *st, nil
}

// forStudent resolves the document's student email before building the row.
func forStudent(build func(studentID uint, v mapping.Values) any) buildFunc {
	return func(db *gorm.DB, _ source.Document, v mapping.Values) (any, string, error) {
		email := v.String(mapping.ColStudentEmail)
		if email == "" {
			return nil, "no student email", nil
		}
		id, ok, err := studentIDByEmail(db, email)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, "no student for " + email, nil
		}
		return build(id, v), "", nil
	}
}

func (m *Migrator) MigrateComplaints(ctx context.Context) (Stats, error) {
	return m.insertEach(ctx, mapping.Complaints, models.Complaint{}.TableName(), forStudent(func(id uint, v mapping.Values) any {
		return &models.Complaint{
			StudentID:     id,
			Title:         v.String("title"),
			Description:   v.String("description"),
			Category:      v.String("category"),
			Status:        v.String("status"),
			AdminResponse: v.StringPtr("admin_response"),
			CreatedAt:     v.Time("created_at"),
			ResolvedAt:    v.TimePtr("resolved_at"),
		}
	}))
}

func (m *Migrator) MigratePayments(ctx context.Context) (Stats, error) {
	return m.insertEach(ctx, mapping.Payments, models.Payment{}.TableName(), forStudent(func(id uint, v mapping.Values) any {
		return &models.Payment{
			StudentID: id,
			Amount:    v.Float("amount"),
			Purpose:   v.String("purpose"),
			Status:    v.String("status"),
			DueDate:   v.TimePtr("due_date"),
			PaidAt:    v.TimePtr("paid_at"),
			CreatedAt: v.Time("created_at"),
		}
	}))
}

func (m *Migrator) MigrateLaundry(ctx context.Context) (Stats, error) {
	return m.insertEach(ctx, mapping.Laundry, models.LaundryRequest{}.TableName(), forStudent(func(id uint, v mapping.Values) any {
		return &models.LaundryRequest{
			StudentID:    id,
			PickupDate:   v.Time("pickup_date"),
			DeliveryDate: v.TimePtr("delivery_date"),
			ItemsCount:   v.Int("items_count"),
			Status:       v.String("status"),
			CreatedAt:    v.Time("created_at"),
		}
	}))
}

func (m *Migrator) MigrateLeaves(ctx context.Context) (Stats, error) {
	return m.insertEach(ctx, mapping.Leaves, models.LeaveRequest{}.TableName(), forStudent(func(id uint, v mapping.Values) any {
		return &models.LeaveRequest{
			StudentID:     id,
			StartDate:     v.Time("start_date"),
			EndDate:       v.Time("end_date"),
			Reason:        v.String("reason"),
			Status:        v.String("status"),
			AdminResponse: v.StringPtr("admin_response"),
			CreatedAt:     v.Time("created_at"),
		}
	}))
}

func (m *Migrator) MigrateNotices(ctx context.Context) (Stats, error) {
	return m.insertEach(ctx, mapping.Notices, models.Notice{}.TableName(), func(_ *gorm.DB, _ source.Document, v mapping.Values) (any, string, error) {
		return &models.Notice{
			Title:     v.String("title"),
			Content:   v.String("content"),
			Category:  v.String("category"),
			Priority:  v.String("priority"),
			CreatedAt: v.Time("created_at"),
		}, "", nil
	})
}

func (m *Migrator) MigrateBusTimings(ctx context.Context) (Stats, error) {
	return m.insertEach(ctx, mapping.BusTimings, models.BusTiming{}.TableName(), func(_ *gorm.DB, _ source.Document, v mapping.Values) (any, string, error) {
		return &models.BusTiming{
			RouteName:     v.String("route_name"),
			DepartureTime: v.String("departure_time"),
			Destination:   v.String("destination"),
		}, "", nil
	})
}

func (m *Migrator) MigrateEmergencyContacts(ctx context.Context) (Stats, error) {
	return m.insertEach(ctx, mapping.EmergencyContacts, models.EmergencyContact{}.TableName(), func(_ *gorm.DB, _ source.Document, v mapping.Values) (any, string, error) {
		return &models.EmergencyContact{
			Name:        v.StringPtr("name"),
			Designation: v.String("designation"),
			Phone:       v.String("phone"),
			Category:    v.String("category"),
		}, "", nil
	})
}

// MigrateMess fans each day document out into one mess_schedule row per
// non-empty meal. A document whose day is not a weekday name is skipped.
func (m *Migrator) MigrateMess(ctx context.Context) (Stats, error) {
	tbl := mapping.Mess
	table := models.MessSchedule{}.TableName()
	docs, err := m.fetch(ctx, tbl.Collection)
	if err != nil {
		return Stats{Collection: tbl.Collection, Table: table}, err
	}
	st := m.begin(ctx, tbl.Collection, table, len(docs))

	for _, doc := range docs {
		m.processed(st)
		v := tbl.Apply(doc.Data, m.now())
		day, ok := mapping.DayIndex(v.String(mapping.ColDay))
		if !ok {
			m.skipped(st, doc.ID, fmt.Sprintf("unknown day %q", v.String(mapping.ColDay)))
			continue
		}

		var rows []models.MessSchedule
		for _, meal := range mapping.MealSlots {
			menu := strings.TrimSpace(v.String(meal))
			if menu == "" {
				continue
			}
			rows = append(rows, models.MessSchedule{DayOfWeek: day, MealType: meal, Menu: menu})
		}
		if len(rows) == 0 {
			m.skipped(st, doc.ID, "no meals")
			continue
		}

		err := m.db.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&rows).Error
		})
		if err != nil {
			m.log.Error("mess insert failed", zap.String("id", doc.ID), zap.Error(err))
			return *st, fmt.Errorf("mess %s insert failed: %w", doc.ID, err)
		}
		m.inserted(st, len(rows))
	}

	m.finish(ctx, st)
	return *st, nil
}
