package cmd

import (
	"context"
	"crypto/ecdsa"
	"os"
	"os/signal"
	"syscall"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clawarena/orchestrator/internal/agent"
	"github.com/clawarena/orchestrator/internal/arena"
	"github.com/clawarena/orchestrator/internal/clock"
	"github.com/clawarena/orchestrator/internal/signer"
	"github.com/clawarena/orchestrator/internal/store"
	"github.com/clawarena/orchestrator/internal/telemetry"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the orchestrator: scheduler, arena actors, and the autonomous host agent",
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			log, err := telemetry.NewLogger(cfg.Development)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			st := store.NewMemStore()
			wallClock := clock.WallClock{}
			sched := clock.NewScheduler(wallClock, log.Named("scheduler"), cfg.SchedulerTick)

			signingSvc, operatorAddr, err := loadSigningService(cfg.SigningKeyPath)
			if err != nil {
				return err
			}
			log.Info("signer operator address", zap.String("address", operatorAddr.String()))

			ag := agent.New(st, func(ctx context.Context, a *arena.Arena) error {
				return st.CreateArena(ctx, a)
			}, wallClock, cfg.TreasuryAddress, log)

			// The signing service and the store are handed to each
			// arena's actor.Actor as it is constructed; that wiring lives
			// behind the inbound request/API layer, which this binary
			// does not run. This command only runs the two background
			// loops that don't depend on inbound requests: the scheduler
			// and the autonomous host agent.
			_ = signingSvc

			ctx, stop := signal.NotifyContext(cobraCmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return clock.Run(ctx, cfg.ShutdownGrace,
				sched.Run,
				func(gctx context.Context) error { return ag.Start(gctx, cfg.AgentInterval) },
			)
		},
	}
}

// loadSigningService reads a hex-encoded ECDSA private key from
// keyPath for local/dev signing. A production deployment swaps this for
// a remote secure-runtime SigningService used in production instead.
func loadSigningService(keyPath string) (signer.SigningService, signer.Address, error) {
	if keyPath == "" {
		key, err := gethcrypto.GenerateKey()
		if err != nil {
			return nil, signer.Address{}, err
		}
		return wrapLocalSigner(key)
	}
	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, signer.Address{}, err
	}
	key, err := gethcrypto.HexToECDSA(string(keyBytes))
	if err != nil {
		return nil, signer.Address{}, err
	}
	return wrapLocalSigner(key)
}

func wrapLocalSigner(key *ecdsa.PrivateKey) (signer.SigningService, signer.Address, error) {
	s := signer.NewLocalKeySigner(key)
	return s, s.OperatorAddress(), nil
}
