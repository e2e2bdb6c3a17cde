package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/controller"
	"github.com/carbonmarket/carbon-controller-go/ledger"
	"github.com/carbonmarket/carbon-controller-go/logger"
	"github.com/carbonmarket/carbon-controller-go/state"
	"github.com/carbonmarket/carbon-controller-go/state/badger"
	"github.com/carbonmarket/carbon-controller-go/state/bolt"
	"github.com/carbonmarket/carbon-controller-go/state/memory"
	"github.com/carbonmarket/carbon-controller-go/types"
)

type app struct {
	cfgFile string
	cfg     *config
	log     *zap.Logger

	// flag overrides of the config file values
	dataDir   string
	storeType string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: defaultConfig(), log: zap.NewNop()}
	cmd := &cobra.Command{
		Use:           "carbonctl",
		Short:         "Carbon credit marketplace controller",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "HCL configuration file")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory of the state database")
	pf.StringVar(&a.storeType, "store", "", "state database type: badger, bolt or memory")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newKeygenCmd(),
		newAddressCmd(),
		newCallCmd(a),
		newExecCmd(a),
		newQueryCmd(a),
		newLedgerCmd(a),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		if err := loadConfig(a.cfgFile, a.cfg); err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		a.cfg.DataDir = a.dataDir
	}
	if flags.Changed("store") {
		a.cfg.Store = a.storeType
	}
	if flags.Changed("log-level") {
		a.cfg.LogLevel = a.logLevel
	}
	if err := a.cfg.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(a.cfg.logger())
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.log = log
	return nil
}

func (a *app) openStore() (state.Store, error) {
	switch a.cfg.Store {
	case storeBadger:
		return badger.New(badger.Config{Path: filepath.Join(a.cfg.DataDir, "badger"), SyncWrites: true}, a.log)
	case storeBolt:
		return bolt.New(filepath.Join(a.cfg.DataDir, "carbon.db"), a.log)
	case storeMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", a.cfg.Store)
	}
}

/*
openController opens the state store and returns controller using it. The
returned function closes the store.
*/
func (a *app) openController(opts ...controller.Option) (*controller.Controller, state.Store, func() error, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening state store: %w", err)
	}
	opts = append([]controller.Option{
		controller.WithLogger(a.log),
		controller.WithNetworkID(types.NetworkID(a.cfg.NetworkID)),
	}, opts...)
	if a.cfg.StrictReregistration {
		opts = append(opts, controller.WithStrictReregistration())
	}
	ctl, err := controller.New(store, ledger.KVResolver{}, a.cfg.controllerAddress(), opts...)
	if err != nil {
		return nil, nil, nil, errors.Join(err, store.Close())
	}
	return ctl, store, store.Close, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
