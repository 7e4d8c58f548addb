package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlobStore(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	store, err := NewBlobStore(root, "https://cdn.example.com/")
	assert.Nil(err)

	t.Run("Miss Before Put", func(t *testing.T) {
		_, ok, err := store.Exists("audio/hello.mp3")
		assert.Nil(err)
		assert.False(ok)
	})

	t.Run("Put Then Exact Hit", func(t *testing.T) {
		url, err := store.Put("audio/hello.mp3", []byte("mp3-bytes"), "audio/mpeg")
		assert.Nil(err)
		assert.Equal("https://cdn.example.com/audio/hello.mp3", url)

		hitURL, ok, err := store.Exists("audio/hello.mp3")
		assert.Nil(err)
		assert.True(ok)
		assert.Equal(url, hitURL)

		data, err := os.ReadFile(filepath.Join(root, "audio", "hello.mp3"))
		assert.Nil(err)
		assert.Equal([]byte("mp3-bytes"), data)

		contentType, err := os.ReadFile(filepath.Join(root, "audio", "hello.mp3.type"))
		assert.Nil(err)
		assert.Equal("audio/mpeg", string(contentType))
	})

	t.Run("Prefix Is Not A Hit", func(t *testing.T) {
		_, ok, err := store.Exists("audio/hello")
		assert.Nil(err)
		assert.False(ok)
	})

	t.Run("Overwrite Is Last Write Wins", func(t *testing.T) {
		_, err := store.Put("audio/hello.mp3", []byte("newer"), "audio/mpeg")
		assert.Nil(err)

		data, err := os.ReadFile(filepath.Join(root, "audio", "hello.mp3"))
		assert.Nil(err)
		assert.Equal([]byte("newer"), data)
	})

	t.Run("Escaping Keys Rejected", func(t *testing.T) {
		_, err := store.Put("../outside.mp3", []byte("x"), "audio/mpeg")
		assert.Nil(err)
		_, statErr := os.Stat(filepath.Join(filepath.Dir(root), "outside.mp3"))
		assert.True(os.IsNotExist(statErr))
	})

	t.Run("Missing Root Rejected", func(t *testing.T) {
		_, err := NewBlobStore("", "https://cdn.example.com")
		assert.NotNil(err)
	})
}
