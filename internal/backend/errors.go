package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrConfigInvalid   = errors.New("backend config invalid")
	ErrInvalidRequest  = errors.New("backend request invalid")
	ErrRequestFailed   = errors.New("backend request failed")
	ErrResponseInvalid = errors.New("backend response invalid")
	ErrUnauthorized    = errors.New("backend unauthorized")
	ErrForbidden       = errors.New("backend forbidden")
	ErrNotFound        = errors.New("backend resource not found")
	ErrRejected        = errors.New("backend rejected request")
	ErrUnavailable     = errors.New("backend unavailable")
)

// StatusError 非 2xx 响应
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Unwrap 将状态码映射为哨兵错误
func (e *StatusError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= 500:
		return ErrUnavailable
	default:
		return ErrRejected
	}
}

// retryable 仅传输失败与 5xx 可重试
func retryable(err error) bool {
	return errors.Is(err, ErrRequestFailed) || errors.Is(err, ErrUnavailable)
}
