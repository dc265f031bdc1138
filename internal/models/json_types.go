package models

// StringSlice is a []string stored as a JSON column.
type StringSlice []string

// Contains reports whether the slice holds the given value.
func (s StringSlice) Contains(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// LangMap maps a language code to localized text, stored as a JSON column.
type LangMap map[string]string

// CountMap maps a string key to a counter, stored as a JSON column.
type CountMap map[string]int
