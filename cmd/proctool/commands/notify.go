package commands

import (
	"github.com/spf13/cobra"

	"github.com/cartops/proctools/config"
	"github.com/cartops/proctools/logger"
	"github.com/cartops/proctools/notify"
	"github.com/cartops/proctools/track"
)

// NotifyCmd represents the notify command.
var NotifyCmd = &cobra.Command{
	Use:   "notify <batch>",
	Short: "Send a batch's last-run notification email",
	Long: `Render the batch's last-run summary and email it to the batch's
configured recipients. Sending is skipped when the batch has no to, copy, or
blind-copy addresses configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runNotify,
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	database, err := openRunResults(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	batch, err := track.NewBatch(track.NewRunStore(database), args[0])
	if err != nil {
		return err
	}

	// SendGrid when configured, SMTP otherwise.
	var mailer notify.Mailer
	if cfg.SendGrid.APIKey != "" {
		mailer = notify.NewSendGridMailer(cfg.SendGrid, logger.Logger)
	} else {
		mailer = notify.NewSMTPMailer(cfg.SMTP, logger.Logger)
	}
	return batch.SendNotification(cmd.Context(), mailer, cfg.SMTP.FromAddress)
}
