package mapping

import "strings"

// Column names shared by the migrators.
const (
	ColStudentEmail = "student_email"
	ColRoom         = "room"
	ColDay          = "day"
)

var Rooms = Table{
	Collection: "rooms",
	Fields: []Field{
		{Column: "capacity", Sources: []string{"capacity"}, Kind: Int, Default: 2},
		{Column: "status", Sources: []string{"status"}, Kind: String, Default: "vacant"},
		{Column: "wifi_ssid", Sources: []string{"wifiSSID", "wifiSsid"}, Kind: String},
		{Column: "wifi_password", Sources: []string{"wifiPassword"}, Kind: String},
	},
}

// Allocations maps the allocations collection, which carries both the user and
// the student profile. The document ID is the student's email.
var Allocations = Table{
	Collection: "allocations",
	Fields: []Field{
		{Column: "full_name", Sources: []string{"name", "fullName"}, Kind: String, Default: "Unknown"},
		{Column: "roll_no", Sources: []string{"rollNo"}, Kind: String},
		{Column: "college_name", Sources: []string{"collegeName"}, Kind: String},
		{Column: "hostel_name", Sources: []string{"hostelName"}, Kind: String},
		{Column: "dob", Sources: []string{"dob"}, Kind: Time},
		{Column: "phone", Sources: []string{"phone"}, Kind: String},
		{Column: "personal_email", Sources: []string{"personalEmail"}, Kind: String},
		{Column: "address", Sources: []string{"address"}, Kind: String},
		{Column: "father_name", Sources: []string{"fatherName"}, Kind: String},
		{Column: "father_phone", Sources: []string{"fatherPhone"}, Kind: String},
		{Column: "mother_name", Sources: []string{"motherName"}, Kind: String},
		{Column: "mother_phone", Sources: []string{"motherPhone"}, Kind: String},
		{Column: "blood_group", Sources: []string{"bloodGroup"}, Kind: String},
		{Column: "medical_history", Sources: []string{"medicalHistory"}, Kind: String},
		{Column: "emergency_contact_name", Sources: []string{"emergencyContactName"}, Kind: String},
		{Column: "emergency_contact_phone", Sources: []string{"emergencyContactPhone"}, Kind: String},
		{Column: "status", Sources: []string{"status"}, Kind: String, Default: "active"},
		{Column: "dues", Sources: []string{"dues"}, Kind: Float, Default: 0.0},
		{Column: ColRoom, Sources: []string{"room", "roomNumber"}, Kind: String},
	},
}

var Complaints = Table{
	Collection: "complaints",
	Fields: []Field{
		{Column: ColStudentEmail, Sources: []string{"studentEmail", "email"}, Kind: String},
		{Column: "title", Sources: []string{"title"}, Kind: String, Default: "Complaint"},
		{Column: "description", Sources: []string{"description"}, Kind: String, Default: ""},
		{Column: "category", Sources: []string{"category"}, Kind: String, Default: "General"},
		{Column: "status", Sources: []string{"status"}, Kind: String, Default: "pending"},
		{Column: "admin_response", Sources: []string{"adminReply"}, Kind: String},
		{Column: "created_at", Sources: []string{"timestamp"}, Kind: Time, Default: Now},
		{Column: "resolved_at", Sources: []string{"resolvedAt"}, Kind: Time},
	},
}

var Payments = Table{
	Collection: "payments",
	Fields: []Field{
		{Column: ColStudentEmail, Sources: []string{"studentEmail", "email"}, Kind: String},
		{Column: "amount", Sources: []string{"amount"}, Kind: Float, Default: 0.0},
		{Column: "purpose", Sources: []string{"type", "purpose"}, Kind: String, Default: "Fee"},
		{Column: "status", Sources: []string{"status"}, Kind: String, Default: "pending"},
		{Column: "due_date", Sources: []string{"dueDate"}, Kind: Time},
		{Column: "paid_at", Sources: []string{"paidAt"}, Kind: Time},
		{Column: "created_at", Sources: []string{"createdAt"}, Kind: Time, Default: Now},
	},
}

var Laundry = Table{
	Collection: "laundry",
	Fields: []Field{
		{Column: ColStudentEmail, Sources: []string{"email", "studentEmail"}, Kind: String},
		{Column: "pickup_date", Sources: []string{"pickupDate"}, Kind: Time, Default: Now},
		{Column: "delivery_date", Sources: []string{"deliveryDate"}, Kind: Time},
		{Column: "items_count", Sources: []string{"clothesCount"}, Kind: Int, Default: 0},
		{Column: "status", Sources: []string{"status"}, Kind: String, Default: "pending"},
		{Column: "created_at", Sources: []string{"date"}, Kind: Time, Default: Now},
	},
}

var Leaves = Table{
	Collection: "leaves",
	Fields: []Field{
		{Column: ColStudentEmail, Sources: []string{"email", "studentEmail"}, Kind: String},
		{Column: "start_date", Sources: []string{"startDate"}, Kind: Time, Default: Now},
		{Column: "end_date", Sources: []string{"endDate"}, Kind: Time, Default: Now},
		{Column: "reason", Sources: []string{"reason"}, Kind: String, Default: ""},
		{Column: "status", Sources: []string{"status"}, Kind: String, Default: "pending"},
		{Column: "admin_response", Sources: []string{"adminComment"}, Kind: String},
		{Column: "created_at", Sources: []string{"appliedAt"}, Kind: Time, Default: Now},
	},
}

var Notices = Table{
	Collection: "notices",
	Fields: []Field{
		{Column: "title", Sources: []string{"title"}, Kind: String, Default: "Notice"},
		{Column: "content", Sources: []string{"content"}, Kind: String, Default: ""},
		{Column: "category", Sources: []string{"type"}, Kind: String, Default: "General"},
		// the source has no priority
		{Column: "priority", Kind: String, Default: "normal"},
		{Column: "created_at", Sources: []string{"date"}, Kind: Time, Default: Now},
	},
}

var BusTimings = Table{
	Collection: "bustimings",
	Fields: []Field{
		{Column: "route_name", Sources: []string{"route"}, Kind: String, Default: "Route"},
		{Column: "departure_time", Sources: []string{"time"}, Kind: String, Default: "00:00"},
		{Column: "destination", Sources: []string{"destination"}, Kind: String, Default: ""},
	},
}

// MealSlots are the mess_schedule meal types, in display order.
var MealSlots = []string{"breakfast", "lunch", "snacks", "dinner"}

var Mess = Table{
	Collection: "mess",
	Fields: []Field{
		{Column: ColDay, Sources: []string{"day"}, Kind: String},
		{Column: "breakfast", Sources: []string{"Breakfast", "breakfast"}, Kind: String},
		{Column: "lunch", Sources: []string{"Lunch", "lunch"}, Kind: String},
		{Column: "snacks", Sources: []string{"Snacks", "snacks"}, Kind: String},
		{Column: "dinner", Sources: []string{"Dinner", "dinner"}, Kind: String},
	},
}

var EmergencyContacts = Table{
	Collection: "emergencyContacts",
	Fields: []Field{
		{Column: "name", Sources: []string{"name"}, Kind: String},
		{Column: "designation", Sources: []string{"role", "designation"}, Kind: String, Default: "Staff"},
		{Column: "phone", Sources: []string{"phone"}, Kind: String, Default: "0000000000"},
		{Column: "category", Sources: []string{"type", "category"}, Kind: String, Default: "General"},
	},
}

// All returns every collection table.
func All() []Table {
	return []Table{
		Rooms, Allocations,
		Complaints, Payments, Laundry, Leaves,
		Notices, BusTimings, Mess, EmergencyContacts,
	}
}

var weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayIndex returns 0 for Sunday through 6 for Saturday. Names match ignoring
// case and surrounding whitespace, which accepts more than an exact weekday
// name would; anything else is not a day.
func DayIndex(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, d := range weekdays {
		if strings.EqualFold(d, name) {
			return i, true
		}
	}
	return -1, false
}
