package task

// ErrorKind classifies a failed Result so callers can pick a status code
// without parsing messages.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindNotFound    ErrorKind = "not_found"
	KindPersistence ErrorKind = "persistence"
	KindInternal    ErrorKind = "internal"
)

// Result is the envelope every use-case returns. Exactly one of Data/Message
// or Error is meaningful, depending on Success.
type Result[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Message string    `json:"message,omitempty"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
}

// Ok builds a successful result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail builds a failed result.
func Fail[T any](kind ErrorKind, msg string) Result[T] {
	return Result[T]{Success: false, Error: msg, Kind: kind}
}
