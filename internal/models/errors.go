package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBuffer marks buffers with non-positive dimensions or a
	// data length that does not match width*height*4.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")

	// ErrInvalidParameter marks filter parameters outside their domain.
	ErrInvalidParameter = errors.New("invalid filter parameter")
)

// BufferError describes why a buffer was rejected.
type BufferError struct {
	Width   int
	Height  int
	DataLen int
	Message string
}

// NewBufferError creates a new buffer error
func NewBufferError(width, height, dataLen int, message string) *BufferError {
	return &BufferError{
		Width:   width,
		Height:  height,
		DataLen: dataLen,
		Message: message,
	}
}

func (be *BufferError) Error() string {
	return fmt.Sprintf("invalid pixel buffer %dx%d (%d bytes): %s",
		be.Width, be.Height, be.DataLen, be.Message)
}

func (be *BufferError) Unwrap() error {
	return ErrInvalidBuffer
}

// ParameterError represents a parameter validation error
type ParameterError struct {
	Parameter string
	Value     interface{}
	Message   string
}

// NewParameterError creates a new parameter error
func NewParameterError(parameter string, value interface{}, message string) *ParameterError {
	return &ParameterError{
		Parameter: parameter,
		Value:     value,
		Message:   message,
	}
}

func (pe *ParameterError) Error() string {
	return fmt.Sprintf("validation failed for parameter '%s' with value '%v': %s",
		pe.Parameter, pe.Value, pe.Message)
}

func (pe *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
