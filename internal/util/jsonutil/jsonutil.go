package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// MarshalNoEscape encodes v into JSON without escaping <, >, & into <, etc.
func MarshalNoEscape(v any) ([]byte, error) {
	return MarshalNoEscapeIndent(v, "", "")
}

// MarshalNoEscapeIndent encodes v with indentation but without HTML escaping.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if prefix != "" || indent != "" {
		enc.SetIndent(prefix, indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Remove trailing newline from json.Encoder.Encode
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// StripCodeFence removes markdown code fences (``` and ```json) that models
// sometimes wrap around JSON payloads, and trims surrounding whitespace.
func StripCodeFence(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// StripComments removes // line comments and /* */ block comments outside
// of string literals, turning JSONC into plain JSON.
func StripComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	inString, escaped := false, false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		if c == '/' && i+1 < len(src) {
			switch src[i+1] {
			case '/':
				for i < len(src) && src[i] != '\n' {
					i++
				}
				if i < len(src) {
					out = append(out, '\n')
				}
				continue
			case '*':
				end := bytes.Index(src[i+2:], []byte("*/"))
				if end < 0 {
					return out
				}
				i += end + 3
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// UnmarshalFlex tries to unmarshal JSON bytes into v with best effort:
// 1) Direct unmarshal
// 2) Strip code fences / comments and unmarshal
// 3) Unwrap a JSON string that itself contains JSON
func UnmarshalFlex(raw []byte, v any) error {
	err := json.Unmarshal(raw, v)
	if err == nil {
		return nil
	}
	cleaned := StripComments([]byte(StripCodeFence(string(raw))))
	if err2 := json.Unmarshal(cleaned, v); err2 == nil {
		return nil
	}
	var s string
	if json.Unmarshal(cleaned, &s) == nil {
		if err3 := json.Unmarshal([]byte(StripCodeFence(s)), v); err3 == nil {
			return nil
		}
		return errors.New("jsonutil: quoted payload is not valid JSON")
	}
	return err
}
