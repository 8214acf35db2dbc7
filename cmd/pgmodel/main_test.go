package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	color.NoColor = true
	t.Setenv("PGMODEL_STRUCTURE", "")
	t.Setenv("PGMODEL_LOG_LEVEL", "")

	var outBuf, errBuf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestDecodeCommand(t *testing.T) {
	out, _, err := execute(t, "decode", "-s", "testdata/complex.yaml", "complex_number", "(1.5,2)")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"imaginary\": 2,\n  \"real\": 1.5\n}\n", out)

	out, _, err = execute(t, "decode", "-s", "testdata/complex.yaml", "complex_number", "--null")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)

	out, _, err = execute(t, "decode", "-s", "testdata/complex.yaml", "int4[]", "{1,NULL}")
	require.NoError(t, err)
	assert.Equal(t, "[\n  1,\n  null\n]\n", out)
}

func TestDecodeCommandApd(t *testing.T) {
	out, _, err := execute(t, "decode", "-s", "testdata/complex.yaml", "--apd", "numeric", "NaN")
	require.NoError(t, err)
	assert.Equal(t, "\"NaN\"\n", out)
}

func TestDecodeCommandErrors(t *testing.T) {
	_, stderr, err := execute(t, "decode", "-s", "testdata/complex.yaml", "--log-level", "error", "complex_number", "(1.5,2")
	require.Error(t, err)
	assert.Contains(t, stderr, "decode failed")

	_, _, err = execute(t, "decode", "-s", "testdata/complex.yaml", "complex_number")
	require.Error(t, err)

	_, _, err = execute(t, "decode", "complex_number", "(1,2)")
	require.EqualError(t, err, "no structure file given, use --structure or PGMODEL_STRUCTURE")

	_, _, err = execute(t, "decode", "-s", "testdata/complex.yaml", "--log-level", "loud", "complex_number", "(1,2)")
	require.Error(t, err)
}

func TestEncodeCommand(t *testing.T) {
	out, _, err := execute(t, "encode", "-s", "testdata/complex.yaml", "complex_number", `{"real": 1.5, "imaginary": 2}`)
	require.NoError(t, err)
	assert.Equal(t, "row(float8 '1.5',float8 '2')::pomm_test.complex_number\n", out)

	out, _, err = execute(t, "encode", "-s", "testdata/complex.yaml", "--text", "complex_number", `{"real": 1.5, "imaginary": 2}`)
	require.NoError(t, err)
	assert.Equal(t, "(1.5,2)\n", out)

	out, _, err = execute(t, "encode", "-s", "testdata/complex.yaml", "--text", "complex_number", `null`)
	require.NoError(t, err)
	assert.Equal(t, "NULL\n", out)

	_, _, err = execute(t, "encode", "-s", "testdata/complex.yaml", "--strict-records", "complex_number", `{"real": 1, "colour": "red"}`)
	require.Error(t, err)

	_, _, err = execute(t, "encode", "-s", "testdata/complex.yaml", "complex_number", `{"real": `)
	require.Error(t, err)
}

func TestFieldsCommand(t *testing.T) {
	out, _, err := execute(t, "fields", "-s", "testdata/complex.yaml", "--alias", "f", "complex_fixture")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "fields_complex_fixture", []byte(out))

	_, _, err = execute(t, "fields", "-s", "testdata/complex.yaml", "int4")
	require.EqualError(t, err, "int4 is not an entity type")

	_, _, err = execute(t, "fields", "-s", "testdata/complex.yaml", "nope")
	require.Error(t, err)
}
