package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_dir", defaultBaseDir())

	// Database defaults; empty path defers to <base_dir>/logs/Run_Results.sqlite3
	v.SetDefault("database.path", "")

	// SMTP defaults
	v.SetDefault("smtp.port", 25)

	// Transfer defaults
	v.SetDefault("transfer.s3.use_ssl", true)
	v.SetDefault("transfer.sftp.port", 22)
	v.SetDefault("transfer.ftp.port", 21)

	// Media defaults
	v.SetDefault("media.convert_wait_seconds", 30.0)

	// Sensitive values come from the environment, never the config file.
	v.BindEnv("smtp.password", "PROC_SMTP_PASSWORD")
	v.BindEnv("sendgrid.api_key", "PROC_SENDGRID_API_KEY")
	v.BindEnv("transfer.s3.secret_key", "PROC_TRANSFER_S3_SECRET_KEY")
	v.BindEnv("transfer.sftp.password", "PROC_TRANSFER_SFTP_PASSWORD")
	v.BindEnv("transfer.ftp.password", "PROC_TRANSFER_FTP_PASSWORD")
	v.BindEnv("portal.token", "PROC_PORTAL_TOKEN")
}
