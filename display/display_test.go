package display

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() TableData {
	return TableData{
		Headers: []string{"id", "name", "created"},
		Rows: [][]any{
			{int64(1), "a,b", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
			{int64(2), nil, nil},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("auto", true)
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	f, err = ParseFormat("", false)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("JSON", false)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml", true)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestRenderCSV(t *testing.T) {
	var out bytes.Buffer
	d := NewWithWriters(&out, &bytes.Buffer{})

	require.NoError(t, d.Table(testData()).WithFormat(FormatCSV).Render())
	assert.Equal(t, "id,name,created\n1,\"a,b\",2025-01-02T03:04:05Z\n2,NULL,NULL\n", out.String())
}

func TestRenderJSONKeepsColumnOrder(t *testing.T) {
	var out bytes.Buffer
	d := NewWithWriters(&out, &bytes.Buffer{})

	require.NoError(t, d.Table(testData()).WithFormat(FormatJSON).Render())
	assert.Equal(t,
		`[{"id":1,"name":"a,b","created":"2025-01-02T03:04:05Z"},{"id":2,"name":null,"created":null}]`+"\n",
		out.String())
}

func TestRenderTable(t *testing.T) {
	var out bytes.Buffer
	d := NewWithWriters(&out, &bytes.Buffer{})

	require.NoError(t, d.Table(testData()).Render())
	assert.Contains(t, out.String(), "name")
	assert.Contains(t, out.String(), "a,b")
	assert.Contains(t, out.String(), "NULL")
}

func TestMessagesGoToErrorWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewWithWriters(&out, &errOut)

	d.Info("attached %s", "iceberg")
	d.Warning("careful")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "attached iceberg")
	assert.Contains(t, errOut.String(), "careful")
}

func TestContext(t *testing.T) {
	d := NewWithWriters(&bytes.Buffer{}, &bytes.Buffer{})
	ctx := WithDisplay(context.Background(), d)

	assert.Same(t, d, GetDisplayOrDefault(ctx))
	assert.NotNil(t, GetDisplayOrDefault(context.Background()))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", FormatValue(nil))
	assert.Equal(t, "raw", FormatValue([]byte("raw")))
	assert.Equal(t, "0.5", FormatValue(0.5))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "[1 2]", FormatValue([]int{1, 2}))
}
