package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/uno-online/internal/apperrors"
)

func TestValidateNickname(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple ascii", "alice", false},
		{"chinese", "勇敢的小鸡", false},
		{"single rune", "A", false},
		{"max length runes", strings.Repeat("牌", 20), false},
		{"inner space allowed", "a b", false},
		{"empty", "", true},
		{"leading space", " alice", true},
		{"trailing space", "alice ", true},
		{"too long", strings.Repeat("a", 21), true},
		{"newline", "ali\nce", true},
		{"tab", "ali\tce", true},
		{"delete char", "ali\x7fce", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNickname(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateNickname(t *testing.T) {
	for i := 0; i < 20; i++ {
		name := GenerateNickname()
		assert.NoError(t, ValidateNickname(name), "generated nickname %q must be valid", name)
	}
}
