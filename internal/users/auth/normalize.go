// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeEmail returns the canonical form used for storage, lookups and the
// refresh token claim: surrounding space trimmed and case folded.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

// NormalizeDisplayName collapses internal whitespace runs to a single space.
func NormalizeDisplayName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
