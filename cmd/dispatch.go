package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dispatchWorker bool

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Deliver due deferred calls",
	Long:  "Run the deferred-call dispatcher without the HTTP server: one delivery pass by default, or continuously with --worker.",
	Run:   runDispatch,
}

func init() {
	rootCmd.AddCommand(dispatchCmd)
	dispatchCmd.Flags().BoolVar(&dispatchWorker, "worker", false, "Run continuously using the configured poll interval")
}

func runDispatch(_ *cobra.Command, _ []string) {
	_, stack := mustBuildLedgerStack()
	defer stack.cleanup()

	if dispatchWorker {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go stack.dispatcher.Run(ctx)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logrus.WithField("job", "dispatch").Info("Worker shutdown requested")
		return
	}

	runJob("dispatch", func() error {
		return stack.dispatcher.Tick(context.Background())
	})
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
