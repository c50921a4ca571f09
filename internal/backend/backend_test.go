package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"centavo/internal/config"
	"centavo/internal/log"
	"centavo/internal/sheets/memory"
)

func TestTypeFor(t *testing.T) {
	require.Equal(t, Memory, TypeFor(&config.Config{}))
	require.Equal(t, GoogleSheets, TypeFor(&config.Config{GoogleSpreadsheetID: "sheet-1"}))
}

func TestNewRowWriter(t *testing.T) {
	ctx := context.Background()

	t.Run("memory without spreadsheet", func(t *testing.T) {
		w, err := NewRowWriter(ctx, &config.Config{}, log.Discard())
		require.NoError(t, err)
		require.IsType(t, &memory.Store{}, w)
	})

	t.Run("sheets without credentials", func(t *testing.T) {
		_, err := NewRowWriter(ctx, &config.Config{GoogleSpreadsheetID: "sheet-1", GoogleSheetName: "Transactions"}, log.Discard())
		require.Error(t, err)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewRowWriter(ctx, nil, log.Discard())
		require.Error(t, err)
	})
}
