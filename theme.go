package babel

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values. A negative
// index means "no color".
type Theme struct {
	UserMsg  int // User message accent
	Language int // Language labels in translation blocks
	Error    int // Error messages
	Success  int // Confirmation notices
	Muted    int // Status bar, placeholders
	Accent   int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:  4,
		Language: 6,
		Error:    1,
		Success:  2,
		Muted:    8,
		Accent:   5,
	}
}
