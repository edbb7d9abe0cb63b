package babel

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinLanguages is the smallest size a LanguageSet may shrink to.
const MinLanguages = 2

// DefaultLanguages is the language set a new session starts with when none
// is configured.
var DefaultLanguages = []string{"English", "Spanish", "Haitian Creole"}

// LanguageSet is the ordered collection of target languages. Names are
// unique ignoring case, kept in order of addition, and never fewer than
// MinLanguages once the set is constructed.
type LanguageSet struct {
	names []string
}

// NewLanguageSet builds a set from names, dropping empty entries and
// duplicates. It fails with ErrTooFewLanguages when fewer than MinLanguages
// remain.
func NewLanguageSet(names ...string) (LanguageSet, error) {
	var s LanguageSet
	for _, n := range names {
		s.add(n)
	}
	if len(s.names) < MinLanguages {
		return LanguageSet{}, fmt.Errorf("%d usable language names: %w", len(s.names), ErrTooFewLanguages)
	}
	return s, nil
}

// Add appends name to the set. It reports false and leaves the set
// unchanged when the name is empty or already present.
func (s *LanguageSet) Add(name string) bool {
	return s.add(name)
}

func (s *LanguageSet) add(name string) bool {
	name = NormalizeLanguage(name)
	if name == "" || s.indexOf(name) >= 0 {
		return false
	}
	s.names = append(s.names, name)
	return true
}

// Remove deletes name from the set. It reports false and leaves the set
// unchanged when the name is absent or the set is already at MinLanguages.
func (s *LanguageSet) Remove(name string) bool {
	i := s.indexOf(NormalizeLanguage(name))
	if i < 0 || len(s.names) <= MinLanguages {
		return false
	}
	s.names = append(s.names[:i:i], s.names[i+1:]...)
	return true
}

// Contains reports whether name is in the set, ignoring case.
func (s LanguageSet) Contains(name string) bool {
	return s.indexOf(NormalizeLanguage(name)) >= 0
}

// Names returns a copy of the language names in order of addition.
func (s LanguageSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of languages.
func (s LanguageSet) Len() int { return len(s.names) }

// String joins the names with ", ".
func (s LanguageSet) String() string { return strings.Join(s.names, ", ") }

func (s LanguageSet) indexOf(name string) int {
	if name == "" {
		return -1
	}
	fold := cases.Fold()
	key := fold.String(name)
	for i, n := range s.names {
		if fold.String(n) == key {
			return i
		}
	}
	return -1
}

// NormalizeLanguage trims and collapses whitespace in a language display
// name and upper-cases the first letter of each word. The remaining letters
// are left as typed.
func NormalizeLanguage(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return cases.Title(language.Und, cases.NoLower).String(name)
}
