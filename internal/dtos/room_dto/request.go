package room_dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type CreateRoomRequest struct {
	Title          string          `json:"title" validate:"required,max=255"`
	HostelName     string          `json:"hostelName" validate:"required,max=255"`
	ImgURLs        ImageList       `json:"imgUrls" validate:"omitempty,dive,required"`
	Location       string          `json:"location" validate:"required,max=255"`
	Price          decimal.Decimal `json:"price" validate:"required,gt=0"`
	Frequency      string          `json:"frequency" validate:"required,max=50"`
	PeopleNumber   int             `json:"peopleNumber" validate:"required,min=0"`
	TotalBed       int             `json:"totalBed" validate:"required,min=0"`
	Email          string          `json:"email" validate:"required,email"`
	Contact        string          `json:"contact" validate:"required,max=50"`
	OwnerEmail     string          `json:"ownerEmail" validate:"required,email"`
	OwnerID        *int64          `json:"ownerId"`
	RecaptchaToken string          `json:"recaptchaToken"`
}

// ImageList decodes either a list of links or a single link. Null and "" decode to an empty list.
type ImageList []string

func (l *ImageList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = ImageList{}
		return nil
	}

	if trimmed[0] == '"' {
		var single string
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		if single == "" {
			*l = ImageList{}
			return nil
		}
		*l = ImageList{single}
		return nil
	}

	var urls []string
	if err := json.Unmarshal(trimmed, &urls); err != nil {
		return fmt.Errorf("imgUrls must be a string or a list of strings: %w", err)
	}
	if urls == nil {
		urls = []string{}
	}
	*l = urls
	return nil
}

type ListRoomsQuery struct {
	Page     int              `json:"page" validate:"min=1"`
	Limit    int              `json:"limit" validate:"min=1,max=100"`
	Search   string           `json:"search" validate:"max=255"`
	Location string           `json:"location" validate:"max=255"`
	PriceMax *decimal.Decimal `json:"price"`
}

// DecimalValuer lets validator tags such as gt=0 apply to decimal amounts.
func DecimalValuer(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// NewValidator builds a validator that reports JSON field names and understands decimal amounts.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterCustomTypeFunc(DecimalValuer, decimal.Decimal{})
	validate.RegisterTagNameFunc(jsonFieldName)
	return validate
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
