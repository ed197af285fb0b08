package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYoutubeKeys(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single key", "key1", []string{"key1"}},
		{"multiple keys", "key1,key2,key3", []string{"key1", "key2", "key3"}},
		{"whitespace trimmed", " key1 , key2 ", []string{"key1", "key2"}},
		{"empty segments dropped", "key1,,key2,", []string{"key1", "key2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Config{YoutubeAPIKeys: tt.raw}
			assert.Equal(t, tt.want, config.YoutubeKeys())
		})
	}
}
