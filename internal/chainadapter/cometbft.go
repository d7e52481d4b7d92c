package chainadapter

import (
	"context"
	"fmt"

	rpchttp "github.com/cometbft/cometbft/rpc/client/http"

	"github.com/clawarena/orchestrator/internal/clock"
)

// CometAdapter is a ChainAdapter backed by a CometBFT RPC client. It
// is the client-side counterpart to an ABCI application running behind
// CometBFT consensus: the orchestrator asks that chain questions over
// RPC instead of embedding it.
type CometAdapter struct {
	client *rpchttp.HTTP
	retry  clock.RetryConfig
}

// NewCometAdapter dials a CometBFT RPC endpoint (e.g. "tcp://localhost:26657").
func NewCometAdapter(rpcEndpoint string) (*CometAdapter, error) {
	c, err := rpchttp.New(rpcEndpoint, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("chainadapter: dial %s: %w", rpcEndpoint, err)
	}
	return &CometAdapter{client: c, retry: clock.DefaultRetryConfig}, nil
}

// HasPlayerJoined queries an ABCI custom query path for the arena's
// on-chain join record, used only as a defense-in-depth pre-join sanity
// check. Callers may skip it entirely.
func (c *CometAdapter) HasPlayerJoined(ctx context.Context, arenaAddress, player string) (bool, error) {
	var joined bool
	err := clock.Retry(ctx, c.retry, func(attempt int) error {
		path := fmt.Sprintf("/clawarena/arena/%s/player/%s", arenaAddress, player)
		resp, err := c.client.ABCIQuery(ctx, path, nil)
		if err != nil {
			return err
		}
		if resp.Response.IsErr() {
			joined = false
			return nil
		}
		joined = len(resp.Response.Value) > 0 && resp.Response.Value[0] == 1
		return nil
	})
	return joined, err
}

// ObserveFinalization polls for the finalize transaction's inclusion
// and result after a finalize authorization has been submitted
// externally.
func (c *CometAdapter) ObserveFinalization(ctx context.Context, arenaAddress string) (FinalizationResult, error) {
	var result FinalizationResult
	err := clock.Retry(ctx, c.retry, func(attempt int) error {
		query := fmt.Sprintf("finalize.arena='%s'", arenaAddress)
		resp, err := c.client.TxSearch(ctx, query, false, nil, nil, "asc")
		if err != nil {
			return err
		}
		if len(resp.Txs) == 0 {
			return fmt.Errorf("%w: arena %s", ErrNotYetObserved, arenaAddress)
		}
		tx := resp.Txs[0]
		result = FinalizationResult{
			TxHash:  tx.Hash.String(),
			Success: tx.TxResult.Code == 0,
		}
		return nil
	})
	return result, err
}
