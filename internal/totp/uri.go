// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package totp

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// qrSize is the rendered QR side length in pixels.
const qrSize = 256

// EnrollmentURI builds the otpauth URI that authenticator apps scan,
// following the Key Uri Format:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func EnrollmentURI(issuer, account, secret string) (string, error) {
	if secret == "" || !secretRegex.MatchString(strings.ToUpper(secret)) {
		return "", ErrInvalidSecret
	}
	if issuer == "" || account == "" {
		return "", fmt.Errorf("issuer and account are required")
	}

	label := fmt.Sprintf("%s:%s", url.PathEscape(issuer), url.PathEscape(account))

	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// EnrollmentQR renders the enrollment URI as a PNG QR code and returns it
// as a base64 data URI ready for an <img> tag.
func EnrollmentQR(uri string) (string, error) {
	if strings.TrimSpace(uri) == "" {
		return "", ErrEmptyURI
	}

	png, err := qrcode.Encode(uri, qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
