package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("operation not supported by store")
	ErrIndexExists = errors.New("index already exists")
	ErrInvalidKey  = errors.New("invalid key")
)

// ConnectionError reports a store that could not be reached.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a store command that failed.
type QueryError struct {
	Op  string
	Key string
	Err error
}

func (e *QueryError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func queryErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &QueryError{Op: op, Key: key, Err: err}
}
