// Package control implements the main run mode: log in, start the
// polling scheduler and keep the station controller alive until
// interrupted.
package control

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/acesco/vigia/internal/api"
	"github.com/acesco/vigia/internal/conf"
	"github.com/acesco/vigia/internal/eventlog"
	"github.com/acesco/vigia/internal/httpclient"
	"github.com/acesco/vigia/internal/logging"
	"github.com/acesco/vigia/internal/poller"
	"github.com/acesco/vigia/internal/station"
)

// Command creates the control command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "control",
		Short: "Connect to the station server and run the control loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings)
		},
	}

	cmd.PersistentFlags().DurationVar(&settings.Station.DetectionInterval, "detection-interval", settings.Station.DetectionInterval, "Cadence of the detection poll")
	cmd.PersistentFlags().DurationVar(&settings.Station.VideoInterval, "video-interval", settings.Station.VideoInterval, "Cadence of the recorded-video discovery poll")

	return cmd
}

func run(ctx context.Context, settings *conf.Settings) error {
	logging.Init()
	logger := logging.ForService("control")

	if settings.Station.Username == "" || settings.Station.Password == "" {
		return fmt.Errorf("station credentials are not configured")
	}

	hc := httpclient.New(&httpclient.Config{DefaultTimeout: settings.Server.Timeout})
	defer hc.Close()
	client := api.NewClient(settings.Server.BaseURL, hc)

	feed := eventlog.NewLog()
	defer feed.Close()

	controller := station.NewController(client, feed, settings)
	if err := controller.Login(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	sess := controller.Session()
	logger.Info("logged in", "identity", sess.Identity, "role", string(sess.Role))

	snapshots := station.NewSnapshotStore(settings.Station.DetectionInterval)
	scheduler, err := poller.New(poller.Config{
		DetectionInterval: settings.Station.DetectionInterval,
		VideoInterval:     settings.Station.VideoInterval,
		Station:           controller,
		API:               client,
		Feed:              feed,
		Snapshots:         snapshots,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("station control running",
		"server", settings.Server.BaseURL,
		"detection_interval", settings.Station.DetectionInterval,
		"video_interval", settings.Station.VideoInterval)

	return scheduler.Run(ctx)
}
