// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ParseLanguage validates a language filter typed by a user. It returns ""
// for the no-filter aliases and the lower-cased code otherwise. The code
// is kept as typed because the catalog indexes ISO 639-2 codes ("eng").
func ParseLanguage(code string) (string, error) {
	if IsNoFilter(code) {
		return "", nil
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if _, err := language.ParseBase(code); err != nil {
		return "", fmt.Errorf("unknown language code %q: use an ISO 639 code such as eng, or all", code)
	}
	return code, nil
}
