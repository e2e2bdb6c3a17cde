package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carbonmarket/carbon-controller-go/api"
	"github.com/carbonmarket/carbon-controller-go/controller"
	"github.com/carbonmarket/carbon-controller-go/events"
	"github.com/carbonmarket/carbon-controller-go/metrics"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (rErr error) {
			if cmd.Flags().Changed("listen") {
				a.cfg.Listen = listen
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m, err := metrics.New(reg)
			if err != nil {
				return fmt.Errorf("creating metrics: %w", err)
			}

			bus := events.NewBus(a.log)
			stopAudit, err := events.NewAuditLog(bus, a.log)
			if err != nil {
				return fmt.Errorf("subscribing audit log: %w", err)
			}
			defer stopAudit()

			ctl, _, closeFn, err := a.openController(controller.WithMetrics(m), controller.WithPublisher(bus))
			if err != nil {
				return err
			}
			defer func() {
				rErr = errors.Join(rErr, closeFn())
			}()

			a.log.Info("controller ready", zap.Stringer("address", ctl.Address()), zap.String("store", a.cfg.Store))
			return api.Serve(cmd.Context(), a.cfg.Listen, api.NewHandler(ctl, a.log, reg), a.log)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address the HTTP API listens on (default from config)")
	return cmd
}
