package services

import (
	"strings"
	"unicode"

	"github.com/gitshopapp/storefront/internal/catalog"
)

const maxSupportMessageLength = 500

// SupportReply is one answer from the support chat.
type SupportReply struct {
	Question string
	Answer   string
	Matched  bool
}

// SupportService answers chat messages from the catalog's canned responses.
type SupportService struct {
	config catalog.SupportConfig
}

func NewSupportService(cfg *catalog.StorefrontConfig) *SupportService {
	if cfg == nil {
		return &SupportService{}
	}
	return &SupportService{config: cfg.Support}
}

func (s *SupportService) Greeting() string {
	return s.config.Greeting
}

// Reply returns the first canned response with a keyword in message, or the
// fallback reply.
func (s *SupportService) Reply(message string) SupportReply {
	question := strings.TrimSpace(message)
	if len(question) > maxSupportMessageLength {
		question = question[:maxSupportMessageLength]
	}
	if question == "" {
		return SupportReply{Answer: s.config.Greeting}
	}

	words := tokenize(question)
	for _, response := range s.config.Responses {
		for _, keyword := range response.Keywords {
			if matchesKeyword(words, strings.ToLower(question), keyword) {
				return SupportReply{Question: question, Answer: response.Reply, Matched: true}
			}
		}
	}
	return SupportReply{Question: question, Answer: s.config.Fallback}
}

func tokenize(message string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, word := range strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[word] = struct{}{}
	}
	return words
}

// matchesKeyword matches single words on word boundaries and phrases as substrings.
func matchesKeyword(words map[string]struct{}, lowered, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	if strings.ContainsFunc(keyword, unicode.IsSpace) {
		return strings.Contains(lowered, keyword)
	}
	_, ok := words[keyword]
	return ok
}
