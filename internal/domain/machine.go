package domain

import "time"

// Wire status values. The deployed controllers and dashboard already speak
// these names, so they are kept verbatim: "washing" is the active cycle,
// "broken" covers both faulted hardware and an unresponsive controller.
const (
	StatusAvailable = "available"
	StatusReserved  = "reserved"
	StatusWashing   = "washing"
	StatusBroken    = "broken"
)

// AdminStatuses are the only values an owner override may set.
var AdminStatuses = map[string]bool{
	StatusAvailable: true,
	StatusBroken:    true,
}

type Machine struct {
	MachineID       string     `gorm:"primaryKey" json:"machine_id"`
	Status          string     `gorm:"index" json:"status"`
	WhatsappNumber  *string    `json:"whatsapp_number"`
	TimeRemaining   int        `json:"time_remaining"`
	MachineType     string     `json:"machine_type"`
	Price           float64    `json:"price"`
	LastHeartbeat   *time.Time `gorm:"index" json:"last_heartbeat"`
	PaymentVerified bool       `json:"payment_verified"`
	CreatedAt       time.Time  `json:"-"`
	UpdatedAt       time.Time  `json:"-"`
}

type Transaction struct {
	TransactionID  string    `gorm:"primaryKey" json:"transaction_id"`
	MachineID      string    `gorm:"index" json:"machine_id"`
	Amount         float64   `json:"amount"`
	WhatsappNumber *string   `json:"whatsapp_number"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
	Status         string    `json:"status"` // always "completed"
}

// DailyRecord holds per-calendar-day running totals, keyed by UTC date.
type DailyRecord struct {
	Date         string  `gorm:"primaryKey;size:10" json:"date"` // YYYY-MM-DD
	TotalCycles  int64   `json:"total_cycles"`
	TotalRevenue float64 `json:"total_revenue"`
}

type DashboardStats struct {
	ActiveMachines int64   `json:"active_machines"`
	TotalRevenue   float64 `json:"total_revenue"`
	TotalCycles    int64   `json:"total_cycles"`
	TodayRevenue   float64 `json:"today_revenue"`
	TodayCycles    int64   `json:"today_cycles"`
}
