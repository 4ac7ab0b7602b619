package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Textual repairs for the shallow syntax mistakes generative models make.
// Applied in a fixed order to the same buffer, never combinatorially.
var (
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	singleQuotedRe  = regexp.MustCompile(`'([^']*)'`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// decodeObject strictly decodes s as a single JSON object. Anything else,
// including null, bare values, and trailing content, is an error.
func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("not a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}

	return m, nil
}

// parseLenient decodes sanitized model output. A strict decode is attempted
// first; on failure the repairs run in order (quote bare keys, rewrite
// single-quoted strings, drop trailing commas) and the buffer is decoded
// once more.
func parseLenient(s string) (map[string]any, error) {
	m, err := decodeObject(s)
	if err == nil {
		return m, nil
	}

	repaired := bareKeyRe.ReplaceAllString(s, `${1}"${2}":`)
	repaired = singleQuotedRe.ReplaceAllString(repaired, `"${1}"`)
	repaired = trailingCommaRe.ReplaceAllString(repaired, "${1}")

	m, err = decodeObject(repaired)
	if err != nil {
		return nil, fmt.Errorf("decoding repaired response: %w", err)
	}

	return m, nil
}
