package store

import (
	"fmt"

	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("shiftmap-journal-fingerprint-key")

// Fingerprint identifies a document by content so a later run over the same
// source/destination pair can find its session again.
func Fingerprint(data []byte) (string, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return "", err
	}
	if _, err := h.Write(data); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
