package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/cersai-digest/internal/extract"
)

func TestContentText(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "simple show",
			stream: "BT /F1 12 Tf 56.69 785.20 Td (Asset ID 200045678901) Tj ET",
			want:   "Asset ID 200045678901",
		},
		{
			name:   "separate cells become lines",
			stream: "BT 10 700 Td (Plot Number 12A) Tj ET\nBT 10 680 Td (Area 1500.00) Tj ET",
			want:   "Plot Number 12A\nArea 1500.00",
		},
		{
			name:   "array with kerning",
			stream: "BT [(CER) -20 (SAI) 15 ( Report)] TJ ET",
			want:   "CERSAI Report",
		},
		{
			name:   "escapes and nesting",
			stream: `BT (Borrower\(s\) Details) Tj T* (a \(b (c)\) \101) Tj ET`,
			want:   "Borrower(s) Details\na (b (c)) A",
		},
		{
			name:   "quote operator starts a line",
			stream: "BT (first) Tj (second) ' ET",
			want:   "first\nsecond",
		},
		{
			name:   "hex string",
			stream: "BT <4153534554> Tj ET",
			want:   "ASSET",
		},
		{
			name:   "horizontal move keeps line",
			stream: "BT (Plot Number) Tj 40 0 Td (12A) Tj ET",
			want:   "Plot Number 12A",
		},
		{
			name:   "graphics only",
			stream: "q 0.5 g 10 10 100 100 re f Q % comment (ignored) Tj",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentText([]byte(tt.stream)))
		})
	}
}

func TestConverter(t *testing.T) {
	c := NewConverter()

	t.Run("plain text", func(t *testing.T) {
		blob, err := c.ToText(context.Background(), extract.Source{
			Name:    "report.txt",
			Content: []byte("Asset ID 200045678901\fPlot Number 12A"),
		})
		require.NoError(t, err)
		assert.Equal(t, extract.TextBlob("Asset ID 200045678901\nPlot Number 12A\n"), blob)
	})

	t.Run("pdf", func(t *testing.T) {
		blob, err := c.ToText(context.Background(), extract.Source{
			Name:    "report.pdf",
			Content: buildPDF(t, "Asset ID 200045678901", "Plot Number 12A"),
		})
		require.NoError(t, err)
		assert.Equal(t, "200045678901", extract.Extract(blob, mustRule(t, extract.FieldAssetID)))
		assert.Equal(t, "12A", extract.Extract(blob, mustRule(t, extract.FieldPlotID)))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := c.ToText(context.Background(), extract.Source{Name: "scan.png", Content: []byte{0x89}})
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.ToText(ctx, extract.Source{Name: "report.txt"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func mustRule(t *testing.T, name string) extract.FieldRule {
	rule, ok := extract.AssetFields.Rule(name)
	require.True(t, ok, name)
	return rule
}
