package results

// stopWords are dropped from recommendation signatures. Tokens of two runes
// or fewer are dropped regardless, so short words are not listed here. The
// Chinese entries cover analyzer output written in Chinese.
var stopWords = map[string]struct{}{
	// English
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "that": {},
	"this": {}, "these": {}, "those": {}, "are": {}, "was": {}, "were": {},
	"will": {}, "would": {}, "should": {}, "could": {}, "can": {}, "may": {},
	"might": {}, "must": {}, "has": {}, "have": {}, "had": {}, "been": {},
	"being": {}, "into": {}, "onto": {}, "over": {}, "than": {}, "then": {},
	"there": {}, "their": {}, "they": {}, "them": {}, "its": {}, "your": {},
	"our": {}, "you": {}, "not": {}, "but": {}, "all": {}, "any": {},
	"each": {}, "such": {}, "also": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "what": {}, "who": {}, "how": {}, "why": {}, "about": {},
	"more": {}, "most": {}, "some": {}, "very": {}, "only": {}, "other": {},
	// Chinese
	"建议使用": {}, "可以考虑": {}, "需要注意": {}, "进一步": {}, "一般来说": {},
	"总的来说": {}, "也就是说": {}, "比如说": {}, "除此之外": {}, "与此同时": {},
	"尽可能": {}, "有必要": {}, "为了避免": {}, "的时候": {},
}

func isStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
