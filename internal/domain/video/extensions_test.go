package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVideo(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/tv/show.mkv", true},
		{"/tv/show.MKV", true},
		{"/tv/show.Mp4", true},
		{"movie.avi", true},
		{"clip.webm", true},
		{"old.flv", true},
		{"phone.mov", true},
		{"legacy.wmv", true},
		{"/tv/notes.txt", false},
		{"/tv/README", false},
		{"/tv/archive.mkv.part", false},
		{"/tv.mkv/readme", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVideo(tt.path))
		})
	}
}

func TestIsVideoExt(t *testing.T) {
	assert.True(t, IsVideoExt(".mkv"))
	assert.True(t, IsVideoExt("MKV"))
	assert.False(t, IsVideoExt(""))
	assert.False(t, IsVideoExt(".txt"))
}

func TestExtensions_MatchesAllowList(t *testing.T) {
	exts := Extensions()
	assert.Len(t, exts, len(extensions))
	for _, e := range exts {
		assert.True(t, IsVideoExt(e), e)
	}
}

func TestExt(t *testing.T) {
	assert.Equal(t, "MKV", Ext("/tv/show.MKV"))
	assert.Equal(t, "", Ext("/tv/show"))
}
