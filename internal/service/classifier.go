package service

import (
	"regexp"
	"strings"

	"campusbot/internal/models"
)

// Lexical classification of incoming messages. These are pure functions so
// they stay testable independently of retrieval.

var accessKeywords = []string{
	"immediate access",
	"opted in",
	"can't access",
	"cant access",
	"cannot access",
	"unable to access",
	"trouble accessing",
	"access issue",
	"access problem",
	"not working",
	"doesn't work",
	"doesnt work",
	"won't open",
	"wont open",
	"need access",
	"need to access",
	"how do i access",
	"how to access",
	"access",
	"log in",
	"log into",
	"sign in",
	"getting into",
}

var instructionsKeywords = []string{
	"how do i",
	"step by step",
	"steps",
	"log in to",
	"where do i find",
	"can't access",
	"cannot access",
	"unable to access",
	"trouble accessing",
	"access issue",
	"access problem",
	"not working",
	"doesn't work",
}

var platformKeywords = []struct {
	platform models.Platform
	terms    []string
}{
	{models.PlatformCengage, []string{"cengage", "mindtap"}},
	{models.PlatformMcGrawHill, []string{"mcgraw", "connect"}},
	{models.PlatformBedford, []string{"bedford"}},
	{models.PlatformSimucase, []string{"simucase"}},
	{models.PlatformPearson, []string{"pearson"}},
	{models.PlatformWiley, []string{"wiley"}},
	{models.PlatformSage, []string{"sage"}},
	{models.PlatformMacmillan, []string{"macmillan", "achieve"}},
	{models.PlatformZyBooks, []string{"zybooks"}},
	{models.PlatformClifton, []string{"clifton"}},
}

var platformMentions = []string{
	"cengage", "mindtap", "mcgraw", "connect", "pearson",
	"vitalsource", "bedford", "ebook", "e-book", "etext", "e-text",
	"simucase", "sage", "vantage", "wiley", "zybooks", "zylabs",
	"clifton", "macmillan",
}

var greetingKeywords = []string{
	"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "greetings",
}

var topicSwitchKeywords = []string{
	"actually", "instead", "what about", "by the way", "nevermind",
}

var deicticTerms = []string{"it", "that", "there", "this", "one", "them"}

var courseCodePattern = regexp.MustCompile(`[A-Z]{2,4}\d{3}[A-Z\-]*`)

// ClassifyCollection picks the collection for an "auto" retrieval: queries
// carrying troubleshooting phrasing go to instructions, everything else to
// faqs.
func ClassifyCollection(query string) models.Collection {
	normalized := strings.ToLower(query)
	for _, keyword := range instructionsKeywords {
		if strings.Contains(normalized, keyword) {
			return models.CollectionInstructions
		}
	}
	return models.CollectionFAQs
}

// DetectIntent classifies a message as a courseware access issue or a
// general FAQ question.
func DetectIntent(message string) models.Intent {
	normalized := strings.ToLower(message)

	if strings.Contains(normalized, "immediate access") || strings.Contains(normalized, "opted in") {
		return models.IntentAccessIssue
	}

	hasAccessKeyword := false
	for _, keyword := range accessKeywords {
		if strings.Contains(normalized, keyword) {
			hasAccessKeyword = true
			break
		}
	}
	mentionsPlatform := false
	for _, term := range platformMentions {
		if strings.Contains(normalized, term) {
			mentionsPlatform = true
			break
		}
	}
	if hasAccessKeyword && mentionsPlatform {
		return models.IntentAccessIssue
	}
	return models.IntentGeneralFAQ
}

// DetectPlatform scans a message for platform mentions. ambiguous is true
// when more than one distinct platform appears.
func DetectPlatform(message string) (platform models.Platform, ambiguous bool) {
	normalized := strings.ToLower(message)

	var found []models.Platform
	for _, entry := range platformKeywords {
		for _, term := range entry.terms {
			if strings.Contains(normalized, term) {
				found = append(found, entry.platform)
				break
			}
		}
	}

	switch len(found) {
	case 0:
		return models.PlatformNone, false
	case 1:
		return found[0], false
	default:
		return models.PlatformNone, true
	}
}

// ExtractCourseCode pulls a course code like BIO101 or PSY200A out of a
// message. Extraction is structural: the match alone is the slot value,
// never the surrounding message.
func ExtractCourseCode(message string) (string, bool) {
	match := courseCodePattern.FindString(message)
	return match, match != ""
}

// IsGreeting reports whether a short message is a bare greeting, which
// skips retrieval entirely.
func IsGreeting(message string) bool {
	if len(strings.Fields(message)) > 3 {
		return false
	}
	normalized := strings.ToLower(message)
	for _, keyword := range greetingKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

// IsTopicSwitch reports whether a message awaiting a slot actually starts
// a new topic instead of answering the clarification question. A short
// fragment that merely fails the slot pattern is not a switch; that case
// gets a re-prompt instead.
func IsTopicSwitch(message string, storedIntent models.Intent) bool {
	normalized := strings.ToLower(message)
	for _, keyword := range topicSwitchKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	looksLikeQuestion := strings.Contains(message, "?") || len(strings.Fields(message)) >= 6
	if looksLikeQuestion &&
		storedIntent == models.IntentAccessIssue &&
		DetectIntent(message) == models.IntentGeneralFAQ {
		return true
	}
	return false
}

// needsContext reports whether a short follow-up leans on deictic or
// anaphoric terms and so cannot be retrieved against on its own.
func needsContext(message string) bool {
	words := strings.Fields(strings.ToLower(message))
	if len(words) == 0 || len(words) > 6 {
		return false
	}
	for _, w := range words {
		w = strings.Trim(w, ".,!?")
		for _, term := range deicticTerms {
			if w == term {
				return true
			}
		}
	}
	return false
}
