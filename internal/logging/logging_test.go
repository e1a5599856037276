// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefault(t *testing.T) {
	defer slog.SetLogLoggerLevel(slog.LevelInfo)

	log, err := Init(false, false)
	require.NoError(t, err)
	assert.Same(t, slog.Default(), log)
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))

	log, err = Init(false, true)
	require.NoError(t, err)
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
}
