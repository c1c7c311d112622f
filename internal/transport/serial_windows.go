package transport

import "fmt"

func openSerial(path string, _ int) (Port, error) {
	return nil, fmt.Errorf("serial %s: %w", path, ErrUnsupported)
}
