package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"food_routing_admin/internal/config"
	"food_routing_admin/internal/console"
	"food_routing_admin/internal/gateway"
	"food_routing_admin/internal/store"
)

var (
	backendURL string
	timeout    time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "routesctl",
	Short:         "Inspect and edit food-routing volunteers, drivers and routes",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetOutput(cmd.ErrOrStderr())
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Back end base URL (default: BACKEND_URL or http://localhost:8000)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	routesCmd.Flags().StringVarP(&filterQuery, "filter", "f", "", "Only routes matching this text")
	routesCmd.Flags().StringVarP(&sortColumn, "sort", "s", "", "Sort by column (route_number, pickup_locations, dropoff_locations, driver_type, driver_id, driver_name, driver)")
	routesCmd.Flags().BoolVar(&sortDesc, "desc", false, "Sort descending (by route_number unless --sort is given)")

	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(volunteersCmd)
	rootCmd.AddCommand(driversCmd)
	rootCmd.AddCommand(deleteCmd)
}

// connect builds a console over the configured back end and loads it.
func connect(ctx context.Context) (*console.Console, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	gw := gateway.NewClient(gateway.Options{
		BaseURL:   cfg.BackendURL,
		Timeout:   cfg.GatewayTimeout,
		PageSize:  cfg.GatewayPageSize,
		RateLimit: cfg.GatewayRateLimit,
		Burst:     cfg.GatewayBurst,
	})
	cons := console.New(gw, store.New(), console.Options{})
	if err := cons.Refresh(ctx); err != nil {
		return nil, err
	}
	return cons, nil
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
