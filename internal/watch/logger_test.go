// Copyright (c) 2023 cheng-zhongliang. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watch

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := NewLogger(LogConfig{Level: "info"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug().Log(`hidden`)
	logger.Info().Str(`source`, `read:0`).Int64(`data`, 3).Log(`event`)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &line))
	assert.Equal(t, "info", line["lvl"])
	assert.Equal(t, "event", line["msg"])
	assert.Equal(t, "read:0", line["source"])
	assert.NotEmpty(t, line["run"])
	assert.NotEmpty(t, line["time"])
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kwatch.log")
	logger, closer, err := NewLogger(LogConfig{Level: "debug", File: path, MaxSizeMB: 1}, nil)
	require.NoError(t, err)

	logger.Debug().Log(`to file`)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, _, err := NewLogger(LogConfig{Level: "shouty"}, &bytes.Buffer{})
	assert.Error(t, err)
}
