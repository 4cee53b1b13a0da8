// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "strings"

// Preview returns the masked display form of an API key: the first four
// and last four characters joined by an ellipsis. Keys of eight characters
// or fewer are fully masked, since showing both ends would reveal most of
// the key. The result is computed once at write time and stored next to
// the ciphertext; it cannot be reversed into the key.
func Preview(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}
