package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_PlainText(t *testing.T) {
	text, err := Text("text/plain", []byte("Go developer, 5 years"))
	require.NoError(t, err)
	assert.Equal(t, "Go developer, 5 years", text)
}

func TestText_UnsupportedType(t *testing.T) {
	_, err := Text("image/png", []byte("png"))
	assert.Error(t, err)
}

func TestText_CorruptPDF(t *testing.T) {
	_, err := Text("application/pdf", []byte("not a pdf at all"))
	assert.Error(t, err)
}

func TestText_CorruptDOCX(t *testing.T) {
	_, err := Text("application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("not a zip"))
	assert.Error(t, err)
}
