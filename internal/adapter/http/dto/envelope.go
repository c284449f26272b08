package dto

// Result is the envelope every endpoint answers with
// Data is omitted on failure; Message is omitted when there is nothing to say
type Result[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    *T     `json:"data,omitempty"`
}

// OK wraps data in a successful envelope
func OK[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Message: message, Data: &data}
}

// Fail builds an error envelope carrying only a message
func Fail(message string) Result[struct{}] {
	return Result[struct{}]{Success: false, Message: message}
}
