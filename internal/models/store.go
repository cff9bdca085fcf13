package models

import "time"

// Product represents a single priced line on a store page.
type Product struct {
	Name  string `json:"name" bson:"name"`
	Price string `json:"price" bson:"price"` // Kept as entered; validated as a positive decimal
}

// Store represents a micro-store page. The slug is the document key and is
// never stored as a field of the document body.
type Store struct {
	Slug        string    `json:"-" bson:"-" gorm:"column:id;primaryKey;type:varchar(80)"`
	ShopName    string    `json:"shopName" bson:"shopName" gorm:"type:varchar(50);not null"`
	Description string    `json:"description" bson:"description" gorm:"type:varchar(200)"`
	Phone       string    `json:"phone" bson:"phone" gorm:"type:varchar(10);not null"`
	UPI         string    `json:"upi" bson:"upi" gorm:"column:upi;type:varchar(255);not null"`
	Products    []Product `json:"products" bson:"products" gorm:"serializer:json;type:text"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" gorm:"autoCreateTime"`
}

// TableName pins the collection name shared by every backend.
func (Store) TableName() string {
	return "stores"
}
