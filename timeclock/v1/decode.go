package v1

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func decodeOne[T any](resp *Response, path string) (*T, error) {
	var result T
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, &MalformedResponseError{Path: path, Err: err}
	}
	if err := validate.Struct(&result); err != nil {
		return nil, &MalformedResponseError{Path: path, Err: err}
	}
	return &result, nil
}

func decodeList[T any](resp *Response, path string) ([]T, error) {
	var result []T
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, &MalformedResponseError{Path: path, Err: err}
	}
	for i := range result {
		if err := validate.Struct(&result[i]); err != nil {
			return nil, &MalformedResponseError{Path: path, Err: err}
		}
	}
	return result, nil
}
