//go:build integration

package cratesio_test

import (
	"context"
	"net/mail"
	"testing"

	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/cratesio"
	"github.com/obraunsdorf/cargo-downgrade/internal/engine/downgrader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Integration_Serde(t *testing.T) {
	client, err := cratesio.NewClient()
	require.NoError(t, err)

	cutoff, err := mail.ParseDate("22 Feb 2021 23:16:09 GMT")
	require.NoError(t, err)

	history, err := client.Versions(context.Background(), "serde")
	require.NoError(t, err)

	record, ok := downgrader.SelectVersion(history, cutoff)
	require.True(t, ok)
	assert.Equal(t, "1.0.123", record.Num)
}
