package tr

import (
	"context"
	"testing"

	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxFromCtx(t *testing.T) {
	t.Run("NoTransaction", func(t *testing.T) {
		_, err := TxFromCtx(context.Background())
		assert.ErrorIs(t, err, e.ErrTransactionNotFound)
	})

	t.Run("ForeignValueIgnored", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), "tx", "not a tx") //nolint:staticcheck
		_, err := TxFromCtx(ctx)
		require.Error(t, err)
	})
}

func TestTxOrDB_FallsBackToDB(t *testing.T) {
	var db Querier
	assert.Nil(t, TxOrDB(context.Background(), db))
}
