package room_dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	app_error "github.com/ramanchaudhary2058/sajilobackend/internal/errors"
	"github.com/shopspring/decimal"
)

// RequiredRoomFields lists, in reporting order, the fields a full update must carry.
var RequiredRoomFields = []string{
	"title",
	"hostelName",
	"location",
	"price",
	"frequency",
	"peopleNumber",
	"totalBed",
	"email",
	"contact",
	"ownerEmail",
}

// any of these keys turns an update into a full update
var roomContentFields = append(append([]string{}, RequiredRoomFields...), "imgUrls")

type UpdateRoomRequest struct {
	StatusOnly   bool
	Title        string
	HostelName   string
	ImgURLs      []string
	Location     string
	Price        decimal.Decimal
	Frequency    string
	PeopleNumber int
	TotalBed     int
	Email        string
	Contact      string
	OwnerEmail   string
	// nil leaves the stored availability unchanged
	IsAvailable *bool
}

// ParseUpdateRoomRequest decodes an update body. The room fields may be wrapped in an
// optional "body" object, which may itself wrap them in an optional "data" object.
func ParseUpdateRoomRequest(raw []byte) (*UpdateRoomRequest, *app_error.AppError) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil || payload == nil {
		return nil, app_error.BadRequest("Invalid JSON", "body")
	}

	if inner, ok := payload["body"].(map[string]any); ok {
		payload = inner
	}
	if inner, ok := payload["data"].(map[string]any); ok {
		payload = inner
	}

	if isStatusOnly(payload) {
		available, err := parseAvailability(payload["isAvailable"])
		if err != nil {
			return nil, err
		}
		if available == nil {
			return nil, app_error.BadRequest("isAvailable must be a boolean", "isAvailable")
		}
		return &UpdateRoomRequest{StatusOnly: true, IsAvailable: available}, nil
	}

	return parseFullUpdate(payload)
}

func isStatusOnly(payload map[string]any) bool {
	if _, ok := payload["isAvailable"]; !ok {
		return false
	}
	for _, field := range roomContentFields {
		if _, ok := payload[field]; ok {
			return false
		}
	}
	return true
}

func parseFullUpdate(payload map[string]any) (*UpdateRoomRequest, *app_error.AppError) {
	missing := make([]string, 0)
	for _, field := range RequiredRoomFields {
		if !truthy(payload[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, app_error.NewMissingFieldsError(missing)
	}

	req := &UpdateRoomRequest{}
	texts := []struct {
		name string
		dst  *string
	}{
		{"title", &req.Title},
		{"hostelName", &req.HostelName},
		{"location", &req.Location},
		{"frequency", &req.Frequency},
		{"email", &req.Email},
		{"contact", &req.Contact},
		{"ownerEmail", &req.OwnerEmail},
	}
	for _, t := range texts {
		s, ok := asText(payload[t.name])
		if !ok {
			return nil, app_error.BadRequest(t.name+" must be a string", t.name)
		}
		*t.dst = s
	}

	peopleNumber, okPeople := asInteger(payload["peopleNumber"])
	totalBed, okBed := asInteger(payload["totalBed"])
	if !okPeople || !okBed {
		return nil, app_error.BadRequest("People number and total bed must be numbers", "peopleNumber")
	}
	if peopleNumber < 0 || totalBed < 0 {
		return nil, app_error.BadRequest("People number and total bed must not be negative", "peopleNumber")
	}
	req.PeopleNumber = peopleNumber
	req.TotalBed = totalBed

	priceText, _ := asText(payload["price"])
	price, err := decimal.NewFromString(strings.TrimSpace(priceText))
	if err != nil {
		return nil, app_error.BadRequest("Price must be a number", "price")
	}
	if price.IsNegative() {
		return nil, app_error.BadRequest("Price must not be negative", "price")
	}
	req.Price = price

	urls, appErr := parseImageURLs(payload["imgUrls"])
	if appErr != nil {
		return nil, appErr
	}
	req.ImgURLs = urls

	available, appErr := parseAvailability(payload["isAvailable"])
	if appErr != nil {
		return nil, appErr
	}
	req.IsAvailable = available

	return req, nil
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

func asText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}

func asInteger(v any) (int, bool) {
	text, ok := asText(v)
	if !ok {
		return 0, false
	}
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		return n, true
	}
	// 2.0 is still a valid count
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func parseImageURLs(v any) ([]string, *app_error.AppError) {
	if !truthy(v) {
		return []string{}, nil
	}

	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []any:
		urls := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, app_error.BadRequest("imgUrls must contain only strings", "imgUrls")
			}
			urls = append(urls, s)
		}
		return urls, nil
	default:
		return nil, app_error.BadRequest("imgUrls must be a string or a list of strings", "imgUrls")
	}
}

func parseAvailability(v any) (*bool, *app_error.AppError) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return &val, nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, app_error.BadRequest("isAvailable must be a boolean", "isAvailable")
		}
		available := f != 0
		return &available, nil
	default:
		return nil, app_error.BadRequest("isAvailable must be a boolean", "isAvailable")
	}
}
