package util

import (
	"fmt"
	"hash/crc32"
	"os"
)

// CalculateFileFingerprint returns the CRC32 of a file's content. The
// settings watcher compares fingerprints to ignore events that did not
// change the file, including the agent's own writes.
func CalculateFileFingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return FingerprintBytes(data), nil
}

// FingerprintBytes returns the CRC32 of data in the same format
func FingerprintBytes(data []byte) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(data))
}
