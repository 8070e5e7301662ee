package service

import (
	"testing"

	"campusbot/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCollection(t *testing.T) {
	tests := []struct {
		query string
		want  models.Collection
	}{
		{"how do i log in to MindTap", models.CollectionInstructions},
		{"My Connect homework is not working", models.CollectionInstructions},
		{"I can't access the ebook", models.CollectionInstructions},
		{"What is the refund deadline?", models.CollectionFAQs},
		{"Do you sell parking permits?", models.CollectionFAQs},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCollection(tt.query))
		})
	}
}

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		message string
		want    models.Intent
	}{
		{"I can't access my Cengage MindTap course", models.IntentAccessIssue},
		{"My Connect homework is not working", models.IntentAccessIssue},
		{"I opted in for immediate access, now what?", models.IntentAccessIssue},
		{"What is your return policy?", models.IntentGeneralFAQ},
		{"How late are you open on weekends?", models.IntentGeneralFAQ},
		// Access phrasing without any platform mention stays general.
		{"I lost access to my locker", models.IntentGeneralFAQ},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIntent(tt.message))
		})
	}
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		message       string
		want          models.Platform
		wantAmbiguous bool
	}{
		{"my cengage mindtap course", models.PlatformCengage, false},
		{"trouble with McGraw Hill Connect", models.PlatformMcGrawHill, false},
		{"the pearson etext", models.PlatformPearson, false},
		{"I use both Connect and MindTap", models.PlatformNone, true},
		{"I need a refund", models.PlatformNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			platform, ambiguous := DetectPlatform(tt.message)
			assert.Equal(t, tt.want, platform)
			assert.Equal(t, tt.wantAmbiguous, ambiguous)
		})
	}
}

func TestExtractCourseCode(t *testing.T) {
	tests := []struct {
		message string
		want    string
		found   bool
	}{
		{"it's BIO101 for biology", "BIO101", true},
		{"my course is PSY200A", "PSY200A", true},
		{"ENGL305", "ENGL305", true},
		{"biology 101", "", false},
		{"I don't remember", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			code, found := ExtractCourseCode(tt.message)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestIsGreeting(t *testing.T) {
	assert.True(t, IsGreeting("hello"))
	assert.True(t, IsGreeting("hey there"))
	assert.True(t, IsGreeting("Good morning!"))
	assert.False(t, IsGreeting("thanks"))
	assert.False(t, IsGreeting("hello, I need help with my Cengage account"))
}

func TestIsTopicSwitch(t *testing.T) {
	tests := []struct {
		name    string
		message string
		intent  models.Intent
		want    bool
	}{
		{"explicit switch keyword", "actually, what are your store hours?", models.IntentAccessIssue, true},
		{"general question while awaiting slot", "what is the return policy for rentals?", models.IntentAccessIssue, true},
		{"short fragment is not a switch", "it's for biology", models.IntentAccessIssue, false},
		{"still the same access issue", "I still can't access my Connect course", models.IntentAccessIssue, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTopicSwitch(tt.message, tt.intent))
		})
	}
}

func TestNeedsContext(t *testing.T) {
	assert.True(t, needsContext("where can I find it"))
	assert.True(t, needsContext("what about that?"))
	assert.False(t, needsContext("how do I reset my password"))
	assert.False(t, needsContext("What are the store hours during finals week?"))
	assert.False(t, needsContext(""))
}
