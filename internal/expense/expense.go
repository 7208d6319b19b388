package expense

import (
	"time"

	"github.com/zombor/fin-tracker/internal/scanning"
)

// DefaultCategory is used when an expense is saved without a category
const DefaultCategory = "altro"

// Expense is a single purchase shared with a group
type Expense struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Category    string    `json:"category"`
	Amount      int       `json:"amount"` // Amount in cents
	Date        time.Time `json:"date"`
	Merchant    string    `json:"merchant"`
	ReceiptFile string    `json:"receipt_file,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Confidence  int       `json:"confidence"`
	RawText     string    `json:"raw_text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewExpense is what a client submits, usually after reviewing a scan.
// Amount is in euros and Date is YYYY-MM-DD.
type NewExpense struct {
	GroupID     string  `json:"group_id"`
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Merchant    string  `json:"merchant"`
	ReceiptFile string  `json:"receipt_file"`
	ContentType string  `json:"content_type"`
	Confidence  int     `json:"confidence"`
	RawText     string  `json:"raw_text"`
}

// ScannedReceipt is a stored receipt image together with what was read from it
type ScannedReceipt struct {
	ReceiptFile string               `json:"receipt_file"`
	ContentType string               `json:"content_type"`
	Scan        *scanning.ScanResult `json:"scan"`
}
