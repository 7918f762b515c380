//go:build !linux && !darwin

package mmap

const mapped = false

func mmap(int, int) ([]byte, error) { return nil, nil }

func munmap([]byte) error { return nil }

func adviseSequential([]byte) error { return nil }
