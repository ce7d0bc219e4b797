// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/staydesk/internal/apiclient"
	"github.com/olegiv/staydesk/internal/testutil"
)

// clientFor returns a token-less client talking to the fake backend.
func clientFor(t *testing.T, b *testutil.Backend) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(apiclient.Config{BaseURL: b.URL, Logger: testutil.TestLoggerSilent()})
	require.NoError(t, err)
	return c
}
