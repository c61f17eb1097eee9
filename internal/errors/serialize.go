package errors

import (
	"encoding/json"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
)

// UnknownCode is the code attached to serialized errors outside the taxonomy.
const UnknownCode = "Unknown"

// SerializedError is the JSON object persisted into a ledger's error entries.
type SerializedError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
	Code    string `json:"code"`
}

// Serialize renders v in the form stored in a step's error field:
// taxonomy errors keep their code, other errors get code "Unknown", and
// anything that is not an error becomes the JSON string
// "Unknown error type of <type>".
func Serialize(v interface{}) string {
	out := interface{}(unknownType(v))
	if err, ok := v.(error); ok && !isNilValue(err) {
		if msg, ok := safeMessage(err); ok {
			out = serializeError(err, msg)
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		// Only reachable for pathological messages; keep the contract intact.
		data, _ = json.Marshal(unknownType(v))
	}
	return string(data)
}

func serializeError(err error, msg string) SerializedError {
	dipErr, ok := AsDIPError(err)
	if !ok {
		return SerializedError{
			Name:    errorName(err),
			Message: msg,
			Stack:   string(debug.Stack()),
			Code:    UnknownCode,
		}
	}
	// A wrapped taxonomy error keeps its code; the message keeps the wrapping.
	if direct, isDirect := err.(*DIPError); isDirect && direct == dipErr {
		msg = dipErr.Message
	}
	return SerializedError{
		Name:    ErrorName,
		Message: msg,
		Stack:   dipErr.Stack,
		Code:    string(dipErr.Code),
	}
}

func unknownType(v interface{}) string {
	return fmt.Sprintf("Unknown error type of %T", v)
}

// safeMessage calls err.Error(), reporting false if it panics.
func safeMessage(err error) (msg string, ok bool) {
	defer func() {
		if recover() != nil {
			msg, ok = "", false
		}
	}()
	return err.Error(), true
}

func isNilValue(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Parse reverses Serialize. The bare string form parses into a
// SerializedError with code "Unknown" and the string as its message.
func Parse(s string) (*SerializedError, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "\"") {
		var msg string
		if err := json.Unmarshal([]byte(trimmed), &msg); err != nil {
			return nil, fmt.Errorf("failed to parse serialized error: %w", err)
		}
		return &SerializedError{Code: UnknownCode, Message: msg}, nil
	}
	var se SerializedError
	if err := json.Unmarshal([]byte(trimmed), &se); err != nil {
		return nil, fmt.Errorf("failed to parse serialized error: %w", err)
	}
	return &se, nil
}

// IsTaxonomy reports whether the serialized error came from a DIPError.
func (s *SerializedError) IsTaxonomy() bool {
	return s.Name == ErrorName && Code(s.Code).Valid()
}

func errorName(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}
