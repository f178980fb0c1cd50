package models

import (
	"time"
)

// Relational models for the hostel schema.
//
// Natural keys carry the uniqueness constraints the migration relies on:
// users.email, students.roll_no, students.user_id, rooms.room_number and the
// (student_id, room_id) pair of room_allocations.

type User struct {
	ID        uint      `gorm:"primaryKey;column:id"`
	Email     string    `gorm:"column:email;size:255;not null;uniqueIndex"`
	FullName  string    `gorm:"column:full_name;size:255;not null"`
	Role      string    `gorm:"column:role;size:32;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (User) TableName() string { return "users" }

type Student struct {
	ID                    uint       `gorm:"primaryKey;column:id"`
	UserID                uint       `gorm:"column:user_id;not null;uniqueIndex"`
	User                  *User      `gorm:"foreignKey:UserID"`
	RollNo                *string    `gorm:"column:roll_no;size:64;uniqueIndex"`
	CollegeName           *string    `gorm:"column:college_name;size:255"`
	HostelName            *string    `gorm:"column:hostel_name;size:255"`
	DOB                   *time.Time `gorm:"column:dob"`
	Phone                 *string    `gorm:"column:phone;size:32"`
	PersonalEmail         *string    `gorm:"column:personal_email;size:255"`
	Address               *string    `gorm:"column:address;type:text"`
	FatherName            *string    `gorm:"column:father_name;size:255"`
	FatherPhone           *string    `gorm:"column:father_phone;size:32"`
	MotherName            *string    `gorm:"column:mother_name;size:255"`
	MotherPhone           *string    `gorm:"column:mother_phone;size:32"`
	BloodGroup            *string    `gorm:"column:blood_group;size:8"`
	MedicalHistory        *string    `gorm:"column:medical_history;type:text"`
	EmergencyContactName  *string    `gorm:"column:emergency_contact_name;size:255"`
	EmergencyContactPhone *string    `gorm:"column:emergency_contact_phone;size:32"`
	Status                string     `gorm:"column:status;size:32;not null"`
	Dues                  float64    `gorm:"column:dues;not null"`
	CreatedAt             time.Time  `gorm:"column:created_at;not null"`
}

func (Student) TableName() string { return "students" }

type Room struct {
	ID           uint    `gorm:"primaryKey;column:id"`
	RoomNumber   string  `gorm:"column:room_number;size:32;not null;uniqueIndex"`
	Capacity     int     `gorm:"column:capacity;not null"`
	Status       string  `gorm:"column:status;size:32;not null"`
	WifiSSID     *string `gorm:"column:wifi_ssid;size:255"`
	WifiPassword *string `gorm:"column:wifi_password;size:255"`
}

func (Room) TableName() string { return "rooms" }

type RoomAllocation struct {
	ID          uint      `gorm:"primaryKey;column:id"`
	StudentID   uint      `gorm:"column:student_id;not null;uniqueIndex:idx_room_allocations_student_room,priority:1"`
	Student     *Student  `gorm:"foreignKey:StudentID"`
	RoomID      uint      `gorm:"column:room_id;not null;uniqueIndex:idx_room_allocations_student_room,priority:2"`
	Room        *Room     `gorm:"foreignKey:RoomID"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	AllocatedAt time.Time `gorm:"column:allocated_at;not null"`
}

func (RoomAllocation) TableName() string { return "room_allocations" }

type Complaint struct {
	ID            uint       `gorm:"primaryKey;column:id"`
	StudentID     uint       `gorm:"column:student_id;not null;index"`
	Student       *Student   `gorm:"foreignKey:StudentID"`
	Title         string     `gorm:"column:title;size:255;not null"`
	Description   string     `gorm:"column:description;type:text"`
	Category      string     `gorm:"column:category;size:64;not null"`
	Status        string     `gorm:"column:status;size:32;not null"`
	AdminResponse *string    `gorm:"column:admin_response;type:text"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	ResolvedAt    *time.Time `gorm:"column:resolved_at"`
}

func (Complaint) TableName() string { return "complaints" }

type Payment struct {
	ID        uint       `gorm:"primaryKey;column:id"`
	StudentID uint       `gorm:"column:student_id;not null;index"`
	Student   *Student   `gorm:"foreignKey:StudentID"`
	Amount    float64    `gorm:"column:amount;not null"`
	Purpose   string     `gorm:"column:purpose;size:64;not null"`
	Status    string     `gorm:"column:status;size:32;not null"`
	DueDate   *time.Time `gorm:"column:due_date"`
	PaidAt    *time.Time `gorm:"column:paid_at"`
	CreatedAt time.Time  `gorm:"column:created_at;not null"`
}

func (Payment) TableName() string { return "payments" }

type LaundryRequest struct {
	ID           uint       `gorm:"primaryKey;column:id"`
	StudentID    uint       `gorm:"column:student_id;not null;index"`
	Student      *Student   `gorm:"foreignKey:StudentID"`
	PickupDate   time.Time  `gorm:"column:pickup_date;not null"`
	DeliveryDate *time.Time `gorm:"column:delivery_date"`
	ItemsCount   int        `gorm:"column:items_count;not null"`
	Status       string     `gorm:"column:status;size:32;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
}

func (LaundryRequest) TableName() string { return "laundry_requests" }

type LeaveRequest struct {
	ID            uint      `gorm:"primaryKey;column:id"`
	StudentID     uint      `gorm:"column:student_id;not null;index"`
	Student       *Student  `gorm:"foreignKey:StudentID"`
	StartDate     time.Time `gorm:"column:start_date;not null"`
	EndDate       time.Time `gorm:"column:end_date;not null"`
	Reason        string    `gorm:"column:reason;type:text"`
	Status        string    `gorm:"column:status;size:32;not null"`
	AdminResponse *string   `gorm:"column:admin_response;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
}

func (LeaveRequest) TableName() string { return "leave_requests" }

type Notice struct {
	ID        uint      `gorm:"primaryKey;column:id"`
	Title     string    `gorm:"column:title;size:255;not null"`
	Content   string    `gorm:"column:content;type:text"`
	Category  string    `gorm:"column:category;size:64;not null"`
	Priority  string    `gorm:"column:priority;size:16;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Notice) TableName() string { return "notices" }

type BusTiming struct {
	ID            uint   `gorm:"primaryKey;column:id"`
	RouteName     string `gorm:"column:route_name;size:255;not null"`
	DepartureTime string `gorm:"column:departure_time;size:16;not null"`
	Destination   string `gorm:"column:destination;size:255"`
}

func (BusTiming) TableName() string { return "bus_timings" }

type MessSchedule struct {
	ID        uint   `gorm:"primaryKey;column:id"`
	DayOfWeek int    `gorm:"column:day_of_week;not null"`
	MealType  string `gorm:"column:meal_type;size:16;not null"`
	Menu      string `gorm:"column:menu;type:text;not null"`
}

func (MessSchedule) TableName() string { return "mess_schedule" }

type EmergencyContact struct {
	ID          uint    `gorm:"primaryKey;column:id"`
	Name        *string `gorm:"column:name;size:255"`
	Designation string  `gorm:"column:designation;size:255;not null"`
	Phone       string  `gorm:"column:phone;size:32;not null"`
	Category    string  `gorm:"column:category;size:64;not null"`
}

func (EmergencyContact) TableName() string { return "emergency_contacts" }
