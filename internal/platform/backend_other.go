//go:build !linux

package platform

import "errors"

// NewLinuxBackendFromDisplay is only available on Linux.
func NewLinuxBackendFromDisplay(display string) (Backend, error) {
	return nil, errors.New("the x11 backend is only supported on linux")
}
