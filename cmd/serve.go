package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/kwscope/internal/server"
	"github.com/sw33tLie/kwscope/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the aggregator over a JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sched, err := a.Schedule(viper.GetString("cache.sweep"), viper.GetString("db.prune"), viper.GetDuration("db.retention"))
		if err != nil {
			return err
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(a, viper.GetString("server.username"), viper.GetString("server.password"), utils.Log)
		return srv.Start(ctx, listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
}
