//go:build unix

package permission

import "golang.org/x/sys/unix"

func canReadWrite(path string) error {
	return unix.Access(path, unix.R_OK|unix.W_OK)
}

func canRead(path string) error {
	return unix.Access(path, unix.R_OK|unix.X_OK)
}
