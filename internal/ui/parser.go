package ui

import (
	"strings"
)

// ParseCSS parses a primitive CSS file: selectors .class or #id, optionally grouped with
// commas, and blocks of "key: value;". No combinators, no @rules. Later rules override
// earlier ones for the same property.
func ParseCSS(content string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	content = stripCSSComments(content)
	for {
		rules, rest, ok := parseOneRule(content)
		if !ok {
			break
		}
		sheet.Rules = append(sheet.Rules, rules...)
		content = rest
	}
	return sheet, nil
}

func stripCSSComments(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '/' && s[i+1] == '*' {
			j := i + 2
			for j+1 < len(s) && !(s[j] == '*' && s[j+1] == '/') {
				j++
			}
			if j+1 < len(s) {
				j += 2
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// parseOneRule finds the next "selectors { ... }" block and returns one rule per supported
// selector and the rest of the string. Blocks without a supported selector are skipped.
func parseOneRule(s string) ([]Rule, string, bool) {
	for {
		open := strings.Index(s, "{")
		if open == -1 {
			return nil, "", false
		}
		close := findMatchingBrace(s, open)
		if close == -1 {
			return nil, "", false
		}
		var rules []Rule
		for _, sel := range strings.Split(s[:open], ",") {
			sel = strings.TrimSpace(sel)
			if len(sel) < 2 || (sel[0] != '.' && sel[0] != '#') {
				continue
			}
			rules = append(rules, Rule{Selector: sel, Props: parseDeclarations(s[open+1 : close])})
		}
		rest := strings.TrimSpace(s[close+1:])
		if len(rules) > 0 {
			return rules, rest, true
		}
		s = rest
	}
}

func findMatchingBrace(s string, openIdx int) int {
	depth := 1
	for i := openIdx + 1; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseDeclarations(body string) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.Split(body, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		colon := strings.Index(part, ":")
		if colon == -1 {
			continue
		}
		k := strings.TrimSpace(part[:colon])
		v := strings.TrimSpace(part[colon+1:])
		if k != "" {
			props[k] = v
		}
	}
	return props
}
