package challenges

import (
	"encoding/json"
	"slices"
	"strings"
)

// Checker decides whether a program's stdout solves a challenge.
type Checker func(stdout string) bool

// normalizer rewrites output before comparison. Every checker trims
// surrounding whitespace and normalizes line endings first.
type normalizer func(string) string

func normalize(s string, norms []normalizer) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	for _, n := range norms {
		s = n(s)
	}
	return s
}

func foldCase(s string) string { return strings.ToLower(s) }

// compact drops all whitespace, so "[ 2, 4 ]" and "[2,4]" compare equal.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func stripChars(chars string) normalizer {
	return func(s string) string {
		return strings.Map(func(r rune) rune {
			if strings.ContainsRune(chars, r) {
				return -1
			}
			return r
		}, s)
	}
}

func equals(want string, norms ...normalizer) Checker {
	return oneOf([]string{want}, norms...)
}

func oneOf(wants []string, norms ...normalizer) Checker {
	return func(stdout string) bool {
		return slices.Contains(wants, normalize(stdout, norms))
	}
}

// nonEmpty accepts any printed value other than an undefined or null one.
func nonEmpty(norms ...normalizer) Checker {
	norms = append(slices.Clip(norms), stripChars(`'"`))
	return func(stdout string) bool {
		got := normalize(stdout, norms)
		switch strings.ToLower(got) {
		case "", "undefined", "none", "null":
			return false
		}
		return true
	}
}

// pythonDictWithKeys accepts a printed dict with exactly the given keys.
func pythonDictWithKeys(keys ...string) Checker {
	return func(stdout string) bool {
		s := normalize(stdout, nil)
		s = strings.NewReplacer("'", `"`, "None", "null", "True", "true", "False", "false").Replace(s)

		var got map[string]any
		if err := json.Unmarshal([]byte(s), &got); err != nil {
			return false
		}
		if len(got) != len(keys) {
			return false
		}
		for _, k := range keys {
			if _, ok := got[k]; !ok {
				return false
			}
		}
		return true
	}
}
