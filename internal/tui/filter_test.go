package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ludolib/notica/internal/model"
)

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		substr   string
		expected bool
	}{
		{"exact", "cloud save conflict", "conflict", true},
		{"case_differs", "Cloud Save Conflict", "cloud", true},
		{"query_upper", "download complete", "DOWNLOAD", true},
		{"middle", "friend request from sam", "request", true},
		{"no_match", "update available", "install", false},
		{"empty_query", "anything", "", true},
		{"query_longer", "hi", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsIgnoreCase(tt.s, tt.substr))
		})
	}
}

func TestMatchesQuery(t *testing.T) {
	n := model.Notification{
		Title:   "Cloud save conflict",
		Message: "Two versions of the save exist",
		Type:    model.TypeGame,
		Tags:    []string{"sync", "steam"},
	}

	assert.True(t, matchesQuery(n, "conflict"))
	assert.True(t, matchesQuery(n, "versions"))
	assert.True(t, matchesQuery(n, "game"))
	assert.True(t, matchesQuery(n, "steam"))
	assert.False(t, matchesQuery(n, "achievement"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactlyten", truncate("exactlyten", 10))
	assert.Equal(t, "a long me…", truncate("a long message here", 10))
}

func TestNotificationItem_TitleShowsUnreadMarker(t *testing.T) {
	unread := notificationItem{notification: model.Notification{Title: "hello"}}
	assert.Equal(t, "● hello", unread.Title())

	read := model.Notification{Title: "hello"}
	read.MarkRead()
	assert.Equal(t, "hello", notificationItem{notification: read}.Title())
}
