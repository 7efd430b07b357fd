// models/loan.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const LoanTable = "ong_loans"

type LoanStatus string

const (
	LoanStatusLoaned   LoanStatus = "loaned"
	LoanStatusReturned LoanStatus = "returned"
)

type Loan struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentID     string     `gorm:"type:uuid;index;not null" json:"equipmentId"`
	Equipment       *Equipment `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
	BorrowerName    string     `gorm:"size:200;not null" json:"borrowerName"`
	BorrowerContact string     `gorm:"size:200" json:"borrowerContact,omitempty"`

	LoanDate   time.Time  `gorm:"index;not null" json:"loanDate"`
	DueDate    time.Time  `gorm:"index;not null" json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Status     LoanStatus `gorm:"size:20;index;not null;default:'loaned'" json:"status"`

	// 归还时计算
	OverdueDays int             `gorm:"not null;default:0" json:"overdueDays"`
	TotalFine   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"totalFine"`

	Notes      string  `gorm:"size:500" json:"notes,omitempty"`
	CreatedBy  *string `gorm:"type:uuid" json:"createdBy,omitempty"`
	ReturnedBy *string `gorm:"type:uuid" json:"returnedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }

func (l *Loan) Returned() bool { return l.Status == LoanStatusReturned }
