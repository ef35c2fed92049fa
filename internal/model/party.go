package model

// Customer buys goods (sale moves) and settles through payments, advances
// and opening dues.
type Customer struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"not null;index" json:"name"`
	Phone   string `gorm:"not null;default:''" json:"phone"`
	Address string `gorm:"not null;default:''" json:"address"`
}

func (Customer) TableName() string { return "customers" }

// Supplier is the counterparty of purchase moves.
type Supplier struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"not null;index" json:"name"`
	Phone   string `gorm:"not null;default:''" json:"phone"`
	Address string `gorm:"not null;default:''" json:"address"`
}

func (Supplier) TableName() string { return "suppliers" }
