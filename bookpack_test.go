package bookpack

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTextLayout = `<doc>
<fontspec id="f0" size="10" family="Times"/>
<fontspec id="f1" size="18" family="Times" bold="1"/>
<page number="1" width="600" height="800">
<text font="f1" left="50" top="40" width="200" height="24">Chapter One</text>
<text font="f0" left="50" top="90" width="300" height="14">This is the first paragraph.</text>
<text font="f0" left="50" top="140" width="300" height="14">Table 1: widget counts</text>
</page>
</doc>`

const testMediaTable = `<doc>
<page index="1" width="600" height="800">
<table id="t1" x1="40" y1="135" x2="360" y2="200">
<rows>
<row>
<cell col="0" row="0"><chunk>A</chunk></cell>
<cell col="1" row="0"><chunk>B</chunk></cell>
</row>
</rows>
</table>
</page>
</doc>`

func TestConvertProducesDocBookWithTable(t *testing.T) {
	result, err := Open(strings.NewReader(testTextLayout), strings.NewReader(testMediaTable)).Convert()
	require.NoError(t, err)

	require.Equal(t, 1, result.Document.PageCount())

	page := result.Document.GetPage(1)
	require.NotNil(t, page, "expected page 1")
	require.Len(t, page.Tables, 1)
	assert.NotEmpty(t, page.Tables[0].Caption, "expected the table's caption paragraph to be bound")

	xml, err := result.DocBook.WriteToString()
	require.NoError(t, err)
	assert.Contains(t, xml, "<chapter", "expected a <chapter> element in docbook output")
}

func TestConvertWithNoContentReturnsError(t *testing.T) {
	_, err := Open(strings.NewReader(`<doc></doc>`), strings.NewReader(`<doc></doc>`)).Convert()
	require.Error(t, err, "expected an error for a document with no pages at all")
}

func TestConvertHonorsConcurrencyAndTimeoutOptions(t *testing.T) {
	c := Open(strings.NewReader(testTextLayout), strings.NewReader(testMediaTable)).
		WithConcurrency(2).
		WithPageTimeout(5 * time.Second)

	result, err := c.Convert()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.PagesProcessed)
}

const testMediaTableWithImage = `<doc>
<page index="1" width="600" height="800">
<media id="m1" type="raster" file="fig1.png" x1="400" y1="400" x2="500" y2="500"/>
</page>
</doc>`

func TestConvertRendersMediaSidecar(t *testing.T) {
	raw := encodeTestPNG(t)

	result, err := Open(strings.NewReader(testTextLayout), strings.NewReader(testMediaTableWithImage)).
		WithMediaSource(func(file string) ([]byte, error) {
			require.Equal(t, "fig1.png", file)
			return raw, nil
		}).
		Convert()
	require.NoError(t, err)

	require.Len(t, result.Sidecars, 1)
	assert.Equal(t, "page1_img1.png", result.Sidecars[0].Filename)
	assert.NotEmpty(t, result.Sidecars[0].Data)
}

func TestConvertSkipsSidecarsWithoutAMediaSource(t *testing.T) {
	result, err := Open(strings.NewReader(testTextLayout), strings.NewReader(testMediaTableWithImage)).Convert()
	require.NoError(t, err)
	assert.Empty(t, result.Sidecars)

	page := result.Document.GetPage(1)
	require.Len(t, page.Media, 1, "the media element itself is still extracted")
}

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{G: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
