package sdk

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Existing errors
var (
	ErrUnknownError     = Error{ID: 1, Status: http.StatusInternalServerError, Message: "internal server error"}
	ErrWrongRequest     = Error{ID: 2, Status: http.StatusBadRequest, Message: "wrong request"}
	ErrNotFound         = Error{ID: 3, Status: http.StatusNotFound, Message: "resource not found"}
	ErrUnauthorized     = Error{ID: 4, Status: http.StatusUnauthorized, Message: "not authenticated"}
	ErrForbidden        = Error{ID: 5, Status: http.StatusForbidden, Message: "forbidden"}
	ErrConnectivity     = Error{ID: 6, Status: http.StatusBadGateway, Message: "unable to reach the Lagoon API"}
	ErrGraphQL          = Error{ID: 7, Status: http.StatusBadGateway, Message: "the Lagoon API returned errors"}
	ErrPartialFailure   = Error{ID: 8, Status: http.StatusPartialContent, Message: "the query partially succeeded"}
	ErrConflict         = Error{ID: 9, Status: http.StatusConflict, Message: "resource already exists"}
	ErrMaxRetries       = Error{ID: 10, Status: http.StatusRequestTimeout, Message: "maximum number of retries reached"}
	ErrTokenExchange    = Error{ID: 11, Status: http.StatusUnauthorized, Message: "unable to fetch a token over ssh"}
	ErrInvalidData      = Error{ID: 12, Status: http.StatusBadRequest, Message: "invalid data"}
	ErrNotImplemented   = Error{ID: 13, Status: http.StatusNotImplemented, Message: "not implemented"}
	ErrInvalidEnumValue = Error{ID: 14, Status: http.StatusBadRequest, Message: "invalid enum value"}
)

// Error type.
type Error struct {
	ID      int    `json:"id"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	From    string `json:"from,omitempty"`
	root    error
}

func (e Error) String() string {
	if e.From == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (from: %s)", e.Message, e.From)
}

func (e Error) Error() string {
	return e.String()
}

// Cause returns the wrapped root error if any.
func (e Error) Cause() error {
	return e.root
}

// NewError returns a copy of target with err as root and its message as From.
func NewError(target Error, root error) error {
	e := target
	if root != nil {
		e.root = root
		// nested sdk errors keep their own message
		if sdkErr, ok := Cause(root).(Error); ok {
			e.From = sdkErr.String()
		} else {
			e.From = root.Error()
		}
	}
	return errors.WithStack(e)
}

// NewErrorFrom returns a copy of target with a formatted From message.
func NewErrorFrom(target Error, format string, args ...interface{}) error {
	e := target
	e.From = fmt.Sprintf(format, args...)
	return errors.WithStack(e)
}

// WrapError returns an error with stack and message.
func WrapError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// WithStack adds a stack trace to err if it has none.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if _, ok := err.(stackTracer); ok {
		return err
	}
	return errors.WithStack(err)
}

// Cause unwraps err down to the first Error of the chain, or to its root
// cause when there is none. Error itself is a causer, so errors.Cause would
// walk past it.
func Cause(err error) error {
	type causer interface {
		Cause() error
	}
	for err != nil {
		if _, ok := err.(Error); ok {
			return err
		}
		c, ok := err.(causer)
		if !ok {
			return err
		}
		err = c.Cause()
	}
	return err
}

// ErrorIs returns true if err has the same ID as t, or if its message matches.
func ErrorIs(err error, t Error) bool {
	if err == nil {
		return false
	}
	if e, ok := Cause(err).(Error); ok {
		return e.ID == t.ID
	}
	return err.Error() == t.String()
}

// ExtractError returns the sdk.Error found in err, or ErrUnknownError with the
// original message as From.
func ExtractError(err error) Error {
	if err == nil {
		return Error{}
	}
	if e, ok := Cause(err).(Error); ok {
		return e
	}
	e := ErrUnknownError
	e.From = err.Error()
	return e
}

// GraphQLLocation is a position in a GraphQL document.
type GraphQLLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is one entry of the "errors" array of a GraphQL response.
type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path,omitempty"`
	Locations  []GraphQLLocation      `json:"locations,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	p := make([]string, len(e.Path))
	for i := range e.Path {
		p[i] = fmt.Sprintf("%v", e.Path[i])
	}
	return fmt.Sprintf("%s (path: %s)", e.Message, strings.Join(p, "."))
}

// GraphQLErrors is the list of errors accumulated over one or more requests.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Error()
	}
	return strings.Join(msgs, ", ")
}

// HasMessage returns true if one of the errors has exactly this message.
func (e GraphQLErrors) HasMessage(msg string) bool {
	for i := range e {
		if e[i].Message == msg {
			return true
		}
	}
	return false
}

// Contains returns true if one of the error messages contains s.
func (e GraphQLErrors) Contains(s string) bool {
	for i := range e {
		if strings.Contains(e[i].Message, s) {
			return true
		}
	}
	return false
}

// AsError returns nil for an empty list.
func (e GraphQLErrors) AsError() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
