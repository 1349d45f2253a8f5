package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireConverters(t testing.TB) {
	t.Helper()
	if err := initConverters(); err != nil {
		t.Skipf("OpenCC dictionaries unavailable: %v", err)
	}
}

func TestToSimplified(t *testing.T) {
	requireConverters(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple conversion", "中國", "中国"},
		{"lesson text", "春眠不覺曉", "春眠不觉晓"},
		{"already simplified", "诗词", "诗词"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSimplified(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFoldTraditionalKeepsLength(t *testing.T) {
	requireConverters(t)

	assert.Equal(t, "静夜思", foldTraditional("靜夜思"))
	assert.Equal(t, "春风", foldTraditional("春风"))
}
