package fopbridge

import (
	"encoding/json"
	"net/http"
)

// CodeResponse provides a standard response with code and message
type CodeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	status  int
}

// NewAccepted acknowledges work that will finish after the response.
func NewAccepted(message string) CodeResponse {
	return CodeResponse{Code: "accepted", Message: message, status: http.StatusAccepted}
}

func (c CodeResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

func (c CodeResponse) HTTPStatus() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

// RecordResponse wraps a single record
type RecordResponse[T any] struct {
	Record T `json:"record"`
	status int
}

func NewRecordResponse[T any](record T) RecordResponse[T] {
	return RecordResponse[T]{Record: record}
}

// NewCreatedRecordResponse answers with 201 Created.
func NewCreatedRecordResponse[T any](record T) RecordResponse[T] {
	return RecordResponse[T]{Record: record, status: http.StatusCreated}
}

func (r RecordResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}

func (r RecordResponse[T]) HTTPStatus() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
