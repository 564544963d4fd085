// Package env reads the optional .env file next to the binary before the logger and the
// engine config are set up.
package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Malformed is a .env line that is neither a comment nor KEY=VALUE.
type Malformed struct {
	Line int
	Text string
}

func (m Malformed) String() string {
	return fmt.Sprintf("line %d: %q", m.Line, m.Text)
}

// Load reads path and sets an environment variable for each KEY=VALUE line. An optional
// "export " prefix and matching surrounding quotes are stripped. Variables that already
// have a non-empty value in the process environment are left alone, so the shell wins
// over the file. A missing file is not an error. Lines that could not be used are
// returned for the caller to report once logging is configured.
func Load(path string) ([]Malformed, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var bad []Malformed
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			bad = append(bad, Malformed{Line: n, Text: line})
			continue
		}
		if cur, set := os.LookupEnv(key); set && cur != "" {
			continue
		}
		_ = os.Setenv(key, unquote(strings.TrimSpace(value)))
	}
	return bad, scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' && v[len(v)-1] == '"' || v[0] == '\'' && v[len(v)-1] == '\'') {
		return v[1 : len(v)-1]
	}
	return v
}
