// Package payload recovers the JSON object embedded in free-form service
// output. Extraction backends wrap their JSON in prose or code fences often
// enough that responses are never decoded raw.
package payload

import (
	"errors"
	"strings"
)

var ErrNoJSON = errors.New("no JSON object in payload")

// JSONBlock returns the substring from the first '{' through the last '}'.
// It does not validate the block; the caller's decoder does that.
func JSONBlock(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}
