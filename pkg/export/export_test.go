package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Title:     "Wellbeing Insights",
		Subtitles: []string{"Student: Ana Lee"},
		Sections: []Section{
			{
				Heading: "Trends",
				Data: Dataset{
					Headers: []string{"dimension", "trend"},
					Rows:    []map[string]string{{"dimension": "wellbeing", "trend": "improving"}},
				},
			},
			{
				Heading: "Insights",
				Data: Dataset{
					Headers: []string{"type", "level", "title"},
					Rows:    []map[string]string{{"type": "academic", "level": "positive", "title": "Strong Academic Performance"}},
				},
			},
		},
	}
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestCSVRenderDocumentWritesSections(t *testing.T) {
	out, err := NewCSVExporter().RenderDocument(sampleDocument())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, "# Trends", lines[0])
	assert.Equal(t, "dimension,trend", lines[1])
	assert.Equal(t, "wellbeing,improving", lines[2])
	assert.Contains(t, string(out), "# Insights")
	assert.Contains(t, string(out), "academic,positive,Strong Academic Performance")
}

func TestPDFRenderProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().RenderDocument(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFRenderRejectsEmptySections(t *testing.T) {
	_, err := NewPDFExporter().RenderDocument(Document{Title: "empty"})
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 40))
	long := strings.Repeat("x", 100)
	got := truncate(long, 16)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, got, 10)
}
