package babel

// Usage tracks token consumption of one reply.
//
// InputTokens excludes tokens served from or written to the prompt cache;
// the total input is InputTokens + CacheReadTokens + CacheWriteTokens.
// Gemini reports cached tokens inside its prompt count, so the gemini
// adapter subtracts them and clamps the result to zero.
type Usage struct {
	InputTokens      int
	OutputTokens     int
	CacheReadTokens  int
	CacheWriteTokens int
}
