package triage

import (
	"strings"
	"unicode"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

// lexicon maps each category to the fixed keyword set the classifier
// scores against. Changing these changes classification results, so keep
// the sets small and obviously on-topic.
var lexicon = map[domain.TicketCategory][]string{
	domain.CategoryBilling: {
		"refund", "invoice", "charge", "charged", "billing", "payment", "subscription", "fee",
	},
	domain.CategoryTech: {
		"error", "bug", "crash", "crashes", "broken", "fails", "login", "timeout", "stack",
	},
	domain.CategoryShipping: {
		"delivery", "package", "shipment", "shipping", "tracking", "delayed", "courier", "parcel",
	},
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "i": {}, "in": {}, "is": {},
	"it": {}, "my": {}, "of": {}, "on": {}, "or": {}, "our": {}, "please": {}, "shows": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "we": {}, "with": {}, "you": {},
	"your": {},
}

// Tokenize lowercases text and splits it into alphanumeric tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ExtractKeywords returns the distinct meaningful tokens of text in first
// occurrence order: lowercased, stopwords and one/two-letter tokens
// dropped. These become the retriever's query terms.
func ExtractKeywords(text string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, token := range Tokenize(text) {
		if len(token) < 3 {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}
	return keywords
}
