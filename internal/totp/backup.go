// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package totp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// GenerateBackupCodes returns count one-time recovery codes, each eight
// decimal digits drawn from the OS CSPRNG. Codes are handed to the user
// exactly once and are not reconstructible afterwards.
func GenerateBackupCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("backup code count must be positive")
	}

	codes := make([]string, count)
	for i := range codes {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, fmt.Errorf("generate backup code: %w", err)
		}
		n := binary.BigEndian.Uint64(buf[:]) % 100_000_000
		codes[i] = fmt.Sprintf("%08d", n)
	}

	return codes, nil
}
