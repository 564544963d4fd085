// Package identity maps scene nodes to the house they belong to.
package identity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"casatour/internal/scene"
)

// MetadataKey is the node extra that tags a node with an explicit house id.
const MetadataKey = "houseId"

var housePattern = regexp.MustCompile(`^casa(\d+)$`)

// Resolve walks from n toward the root and returns the first house id found. At each
// node explicit metadata wins over the naming convention.
func Resolve(n *scene.Node) (string, bool) {
	for cur := n; cur != nil; cur = cur.Parent() {
		if id, ok := fromMetadata(cur.Metadata); ok {
			return id, true
		}
		if id, ok := FromName(cur.Name); ok {
			return id, true
		}
	}
	return "", false
}

// FromName matches the "casa<digits>" convention after normalization, so "Casa_3",
// "casa-3" and "CASA 3" all give "casa3".
func FromName(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	m := housePattern.FindStringSubmatch(Normalize(name))
	if m == nil {
		return "", false
	}
	return "casa" + m[1], true
}

// Normalize lower-cases name and drops underscores, hyphens and whitespace.
func Normalize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

func fromMetadata(md map[string]any) (string, bool) {
	v, ok := md[MetadataKey]
	if !ok || v == nil {
		return "", false
	}
	var id string
	switch t := v.(type) {
	case string:
		id = t
	case float64:
		id = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		id = strconv.Itoa(t)
	case fmt.Stringer:
		id = t.String()
	default:
		return "", false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	return id, true
}
