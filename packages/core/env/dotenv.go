package env

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var dotEnvKey = regexp.MustCompile(`^[-.\w]+$`)

// LoadDotEnv reads a dotenv file into a Context.
func LoadDotEnv(path string) (Context, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open env file: %w", err)
	}
	defer file.Close()

	ctx, err := ParseDotEnv(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ctx, nil
}

// ParseDotEnv reads KEY=value lines. Blank lines and lines starting with '#'
// are skipped and an "export " prefix is ignored. Double quoted values are
// unescaped Go style, single quoted values are taken literally and unquoted
// values end at " #". Keys must be usable as ${key}.
func ParseDotEnv(r io.Reader) (Context, error) {
	result := make(Context)
	scanner := bufio.NewScanner(r)

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("line %d: expected KEY=value", n)
		}
		key = strings.TrimSpace(key)
		if !dotEnvKey.MatchString(key) {
			return nil, fmt.Errorf("line %d: invalid key %q", n, key)
		}

		value, err := dotEnvValue(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		result[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return result, nil
}

func dotEnvValue(v string) (string, error) {
	switch {
	case v == "":
		return "", nil
	case v[0] == '"':
		end := closingQuote(v)
		if end < 0 {
			return "", fmt.Errorf("unterminated quote")
		}
		return strconv.Unquote(v[:end+1])
	case v[0] == '\'':
		end := strings.IndexByte(v[1:], '\'')
		if end < 0 {
			return "", fmt.Errorf("unterminated quote")
		}
		return v[1 : end+1], nil
	}

	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v, nil
}

// closingQuote returns the index of the unescaped '"' closing v, or -1.
func closingQuote(v string) int {
	for i := 1; i < len(v); i++ {
		switch v[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
