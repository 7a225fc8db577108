package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruuvi-sensor/internal/codec"
	"ruuvi-sensor/internal/ruuvi"
)

var now = time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)

func TestDecodeJSON(t *testing.T) {
	var out bytes.Buffer

	err := decode(&out, codec.JSON, []string{
		"https://ruu.vi/#AjwYAMFc",
		"990403291A1ECE1EFC18F94202CA0B53",
	}, now)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.InDelta(t, 2.0, first["data_format"], 1e-9)
	assert.InDelta(t, 24.0, first["temperature"], 1e-9)
	assert.InDelta(t, 995.0, first["pressure"], 1e-9)

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.InDelta(t, 3.0, second["data_format"], 1e-9)
	assert.InDelta(t, 26.3, second["temperature"], 1e-9)
}

func TestDecodeCBOR(t *testing.T) {
	var out bytes.Buffer

	err := decode(&out, codec.CBOR, []string{"99040512FC5394C37C0004FFFC040CAC364200CDCBB8334C884F"}, now)
	require.NoError(t, err)

	b, err := hex.DecodeString(strings.TrimSpace(out.String()))
	require.NoError(t, err)

	var p map[string]any
	require.NoError(t, cbor.Unmarshal(b, &p))
	assert.Equal(t, uint64(ruuvi.FormatV5), p["data_format"])
	assert.InDelta(t, 24.3, p["temperature"], 1e-9)
}

func TestDecodeError(t *testing.T) {
	var out bytes.Buffer

	err := decode(&out, codec.JSON, []string{"https://ruu.vi/#CTwYAMFc"}, now)
	require.ErrorIs(t, err, ruuvi.ErrUnsupportedFormat)
	assert.Empty(t, out.String())
}

func TestDecodeCommand(t *testing.T) {
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"decode", "https://ruu.vi/#BICAgICWgg=="})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"eddystone_id":130`)
	assert.Contains(t, out.String(), `"url":"https://ruu.vi/#BICAgICWgg=="`)
}

func TestDecodeCommandUnknownEncoding(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"decode", "--encoding", "xml", "https://ruu.vi/#AjwYAMFc"})

	require.Error(t, cmd.Execute())
}
