package dtos

type Response[T any] struct {
	Message    string         `json:"message"`
	Data       T              `json:"data"`
	Pagination *Pagination    `json:"pagination,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Errors     *ErrorResponse `json:"errors,omitempty"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type ErrorResponse struct {
	Code          int      `json:"code"`
	Message       string   `json:"message"`
	Field         string   `json:"field,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
}
