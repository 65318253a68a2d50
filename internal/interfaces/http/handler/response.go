package handler

import "github.com/erp/purchasing/internal/interfaces/http/dto"

// APIResponse is the response envelope with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// NextIDResponse carries a single allocated identifier
type NextIDResponse struct {
	Prefix string `json:"prefix"`
	ID     string `json:"id"`
}
