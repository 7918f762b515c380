//go:build darwin

package mmap

import (
	"syscall"
)

const mapped = true

// mmap maps length bytes of fd read-only
func mmap(fd int, length int) ([]byte, error) {
	return syscall.Mmap(fd, 0, length, syscall.PROT_READ, syscall.MAP_SHARED)
}

// munmap wraps the munmap system call
func munmap(b []byte) error {
	return syscall.Munmap(b)
}

// adviseSequential hints that the mapping will be read front to back
func adviseSequential(b []byte) error {
	return syscall.Madvise(b, syscall.MADV_SEQUENTIAL)
}
