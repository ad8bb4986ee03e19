package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ImageURLs is an ordered list of image links persisted as JSON text.
type ImageURLs []string

func (u ImageURLs) Value() (driver.Value, error) {
	if u == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(u))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (u *ImageURLs) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*u = ImageURLs{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ImageURLs", src)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*u = ImageURLs{}
		return nil
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return fmt.Errorf("invalid img_urls value: %w", err)
	}
	if urls == nil {
		urls = []string{}
	}
	*u = urls
	return nil
}

func (ImageURLs) GormDataType() string {
	return "text"
}

type Room struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	Title        string          `gorm:"not null"`
	HostelName   string          `gorm:"not null;index"`
	ImgURLs      ImageURLs       `gorm:"column:img_urls;type:text"`
	Location     string          `gorm:"not null;index"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Frequency    string          `gorm:"not null"`
	PeopleNumber int             `gorm:"not null;default:0"`
	TotalBed     int             `gorm:"not null;default:0"`
	Email        string          `gorm:"not null"`
	Contact      string          `gorm:"not null"`
	OwnerEmail   string          `gorm:"not null;index"`
	OwnerID      *int64
	IsAvailable  bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

type RoomFilter struct {
	Search   string
	Location string
	PriceMax *decimal.Decimal
	Limit    int
	Offset   int
}
