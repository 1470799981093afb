package common

type ErrorResponse struct {
	Message string `json:"message"`
	// Fields lists one message per invalid request field.
	Fields []string `json:"fields,omitempty"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
	}
}

func NewBindingErrorResponse(err error) *ErrorResponse {
	fields := FieldErrors(err)
	if len(fields) == 0 {
		return NewErrorResponse(FormatBindingError(err))
	}
	return &ErrorResponse{Message: "invalid request", Fields: fields}
}

type SuccessResponse struct {
	Data any `json:"data"`
}

func NewSuccessResponse(data any) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}

type Pagination struct {
	Total int64 `json:"total"`
}

type SearchResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func NewSearchResponse(data any, total int64) *SearchResponse {
	return &SearchResponse{
		Data: data,
		Pagination: Pagination{
			Total: total,
		},
	}
}
