package contract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocs = `{
  "requestDescriptors": [
    {"name": "com.spectralogic.s3.server.handler.reqhandler.spectrads3.job.GetJobRequestHandler", "classification": "spectrads3", "description": "Returns one job."},
    {"name": "com.spectralogic.s3.server.handler.reqhandler.amazons3.GetBucketRequestHandler", "classification": "amazons3", "description": "Lists the objects of a bucket."}
  ],
  "paramDescriptors": [
    {"name": "MaxKeys", "description": "Caps the number of objects returned."}
  ]
}`

func TestParseDocSpec(t *testing.T) {
	t.Parallel()
	docs, err := ParseDocSpec(strings.NewReader(sampleDocs))
	require.NoError(t, err)

	doc, ok := docs.RequestDoc("GetJobSpectraS3Request")
	require.True(t, ok)
	assert.Equal(t, "Returns one job.", doc)
	doc, ok = docs.RequestDoc("GetBucketRequest")
	require.True(t, ok)
	assert.Equal(t, "Lists the objects of a bucket.", doc)
	_, ok = docs.RequestDoc("GetJobRequest")
	assert.False(t, ok)

	doc, ok = docs.ParamDoc("MaxKeys")
	require.True(t, ok)
	assert.Equal(t, "Caps the number of objects returned.", doc)
}

func TestDocSpec_NilKnowsNothing(t *testing.T) {
	t.Parallel()
	var docs *DocSpec
	_, ok := docs.RequestDoc("GetJobSpectraS3Request")
	assert.False(t, ok)
	_, ok = docs.ParamDoc("MaxKeys")
	assert.False(t, ok)
}

func TestParseDocSpec_Errors(t *testing.T) {
	t.Parallel()
	_, err := ParseDocSpec(strings.NewReader(`{"requestDescriptors": [{"description": "x"}]}`))
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ParseError, ce.Code)
	assert.Equal(t, "requestDescriptors[0]", ce.Pointer)

	_, err = ParseDocSpec(strings.NewReader(`{"requestDescriptors": [`))
	assert.True(t, errors.Is(err, ErrParse))
}

func TestLoadDocSpec(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocs), 0o600))

	docs, err := LoadDocSpec(context.Background(), path)
	require.NoError(t, err)
	_, ok := docs.RequestDoc("GetJobSpectraS3Request")
	assert.True(t, ok)

	_, err = LoadDocSpec(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, IOError, ce.Code)
}
