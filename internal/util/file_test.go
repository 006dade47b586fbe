package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMimeType(t *testing.T) {
	// EBML 头会被嗅探为 webm
	webm := bytes.Repeat([]byte{0x1a, 0x45, 0xdf, 0xa3}, 8)
	mime, err := ValidateMimeType(bytes.NewReader(webm), []string{MimeAudio, MimeWebm, MimeOctetStream})
	require.NoError(t, err)
	assert.True(t, IsAudio(mime) || mime == MimeOctetStream)

	_, err = ValidateMimeType(bytes.NewReader([]byte("plain text body")), []string{MimeAudio})
	assert.Error(t, err)
}

func TestIsAudio(t *testing.T) {
	assert.True(t, IsAudio("audio/mpeg"))
	assert.True(t, IsAudio("audio/ogg"))
	assert.True(t, IsAudio("video/webm")) // MediaRecorder 产出
	assert.True(t, IsAudio("application/ogg"))
	assert.False(t, IsAudio("text/plain"))
	assert.False(t, IsAudio("video/mp4"))
}

func TestHasAllowedAudioExtension(t *testing.T) {
	assert.True(t, HasAllowedAudioExtension("answer.webm"))
	assert.True(t, HasAllowedAudioExtension("ANSWER.WAV"))
	assert.False(t, HasAllowedAudioExtension("payload.exe"))
	assert.False(t, HasAllowedAudioExtension("noextension"))
}

func TestMustParseUint(t *testing.T) {
	assert.Equal(t, uint(42), MustParseUint("42"))
	assert.Equal(t, uint(0), MustParseUint("not-a-number"))
	assert.Equal(t, uint(0), MustParseUint("-3"))
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("7", 1))
	assert.Equal(t, 1, ParseIntDefault("x", 1))
}
