package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvx/rewrite/internal/plan"
)

func TestDecodeMatchStream_BeginThenMatch(t *testing.T) {
	t.Parallel()

	stream := `{"type":"begin","data":{"path":{"text":"a.txt"}}}
{"type":"match","data":{"path":{"text":"a.txt"},"line_number":2,"absolute_offset":10,"submatches":[{"match":{"text":"foo"},"start":0,"end":3}]}}
{"type":"end","data":{"path":{"text":"a.txt"}}}
`
	items, err := DecodeMatchStream(strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, plan.ItemMatchSpan, items[0].Kind)
	assert.Equal(t, "a.txt", items[0].AbsPath)
	assert.Equal(t, int64(10), items[0].ByteOffset)
	assert.Equal(t, int64(3), items[0].ByteLength)
	assert.Equal(t, 2, items[0].LineNumber)
}

func TestDecodeMatchStream_MalformedLineFails(t *testing.T) {
	t.Parallel()

	_, err := DecodeMatchStream(strings.NewReader("{not json}\n"))
	assert.Error(t, err)
}

func TestDecodeMatchStream_IgnoresUnrelatedRecordTypes(t *testing.T) {
	t.Parallel()

	stream := `{"type":"begin","data":{"path":{"text":"a.txt"}}}
{"type":"context","data":{"path":{"text":"a.txt"}}}
{"type":"summary","data":{}}
`
	items, err := DecodeMatchStream(strings.NewReader(stream))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeMatchStream_BytesEncodedPath(t *testing.T) {
	t.Parallel()

	// base64 for "bad.txt"
	stream := `{"type":"begin","data":{"path":{"bytes":"YmFkLnR4dA=="}}}
{"type":"match","data":{"line_number":1,"absolute_offset":0,"submatches":[{"match":{"text":"x"},"start":0,"end":1}]}}
`
	items, err := DecodeMatchStream(strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bad.txt", items[0].AbsPath)
}
