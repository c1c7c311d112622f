package remote

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	ErrUnsupportedType = errors.New("unsupported argument type")
	errEmptyToken      = errors.New("empty argument")
)

// converter parses one token into the value pointed to by dst.
type converter func(token string, dst reflect.Value) error

// converterFor returns the conversion for t. Only the kinds listed here are
// supported; anything else is rejected when the command is registered.
func converterFor(t reflect.Type) (converter, error) {
	switch t.Kind() {
	case reflect.String:
		return convertString, nil
	case reflect.Uint8:
		// byte doubles as the "char" type: a single character is taken
		// literally, anything longer must parse as a number.
		return convertByte, nil
	case reflect.Bool:
		return convertBool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return convertInt, nil
	case reflect.Uint, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return convertUint, nil
	case reflect.Float32, reflect.Float64:
		return convertFloat, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

func convertString(token string, dst reflect.Value) error {
	dst.SetString(token)
	return nil
}

func convertByte(token string, dst reflect.Value) error {
	token = strings.TrimSpace(token)
	switch len(token) {
	case 0:
		return errEmptyToken
	case 1:
		if token[0] < '0' || token[0] > '9' {
			dst.SetUint(uint64(token[0]))
			return nil
		}
	}
	return convertUint(token, dst)
}

func convertBool(token string, dst reflect.Value) error {
	token = strings.ToLower(strings.TrimSpace(token))
	switch token {
	case "":
		return errEmptyToken
	case "true", "on", "yes":
		dst.SetBool(true)
		return nil
	case "false", "off", "no":
		dst.SetBool(false)
		return nil
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return fmt.Errorf("bool %q: %w", token, err)
	}
	dst.SetBool(n != 0)
	return nil
}

func convertInt(token string, dst reflect.Value) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errEmptyToken
	}
	n, err := strconv.ParseInt(token, 10, dst.Type().Bits())
	if err != nil {
		return fmt.Errorf("int %q: %w", token, err)
	}
	dst.SetInt(n)
	return nil
}

func convertUint(token string, dst reflect.Value) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errEmptyToken
	}
	n, err := strconv.ParseUint(token, 10, dst.Type().Bits())
	if err != nil {
		return fmt.Errorf("uint %q: %w", token, err)
	}
	dst.SetUint(n)
	return nil
}

func convertFloat(token string, dst reflect.Value) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errEmptyToken
	}
	f, err := strconv.ParseFloat(token, dst.Type().Bits())
	if err != nil {
		return fmt.Errorf("float %q: %w", token, err)
	}
	dst.SetFloat(f)
	return nil
}

// slot is one element of a command's reusable argument tuple.
type slot[T any] struct {
	val  T
	conv converter
}

func newSlot[T any]() (*slot[T], error) {
	conv, err := converterFor(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return &slot[T]{conv: conv}, nil
}

func (s *slot[T]) set(token string) error {
	return s.conv(token, reflect.ValueOf(&s.val).Elem())
}
