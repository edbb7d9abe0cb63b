package babel

import (
	"fmt"
	"strings"
)

// TranslationLine is one "- **Language**: text" line of a translation block.
type TranslationLine struct {
	Language string
	Text     string
}

// FormatLine renders a line in the output grammar the instruction asks for.
func FormatLine(language, text string) string {
	return fmt.Sprintf("- **%s**: %s", language, text)
}

// BuildInstruction returns the system instruction for translating each user
// message into every language in languages. One output line is requested
// per language, in order, and the model is told to skip the line for the
// language the message is already written in.
func BuildInstruction(languages []string) string {
	var b strings.Builder
	b.WriteString("The following is a multilingual conversation. Each user message is from a person in the conversation.\n")
	b.WriteString("The assistant then provides a translation of the message in the remaining languages.\n")
	fmt.Fprintf(&b, "The languages in this conversation are: %s.\n\n", strings.Join(languages, ", "))

	b.WriteString("Format your response as plain text with each translation on a new line:\n\n")
	for _, lang := range languages {
		b.WriteString(FormatLine(lang, "{translation}"))
		b.WriteByte('\n')
	}
	b.WriteString("\nDon't include a line for the source language. ")
	b.WriteString("If the message is in a language not listed above, include a line for every listed language.\n\n")

	b.WriteString("Important:\n")
	b.WriteString("1. Translate ONLY the exact content given - do not add any additional text or context\n")
	b.WriteString("2. Do not create responses or add content that wasn't in the original message\n")
	b.WriteString("3. Maintain the tone appropriate for each language\n")
	b.WriteString("4. Consider cultural context in translations while keeping the exact meaning\n")
	b.WriteString("5. Preserve emojis and basic punctuation where appropriate\n")
	return b.String()
}
