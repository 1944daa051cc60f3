// Package config provides proctools configuration management.
//
// Configuration is resolved once at process start (by the CLI layer) from
// defaults, an optional proctools.toml, and PROC_-prefixed environment
// variables, then passed down to constructors as explicit structs. Library
// code never reads the environment directly.
package config

// Config represents the core proctools configuration.
type Config struct {
	BaseDir  string         `mapstructure:"base_dir"` // processing environment root
	Database DatabaseConfig `mapstructure:"database"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SendGrid SendGridConfig `mapstructure:"sendgrid"`
	Transfer TransferConfig `mapstructure:"transfer"`
	Media    MediaConfig    `mapstructure:"media"`
	Portal   PortalConfig   `mapstructure:"portal"`
}

// DatabaseConfig configures the run-results SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"` // empty = <base_dir>/logs/Run_Results.sqlite3
}

// SMTPConfig configures the SMTP notification mailer.
type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"` // empty = host authenticates by IP
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
}

// SendGridConfig configures the SendGrid notification mailer.
type SendGridConfig struct {
	APIKey     string `mapstructure:"api_key"`
	SenderName string `mapstructure:"sender_name"`
}

// TransferConfig configures artifact upload targets.
type TransferConfig struct {
	S3   S3Config   `mapstructure:"s3"`
	SFTP SFTPConfig `mapstructure:"sftp"`
	FTP  FTPConfig  `mapstructure:"ftp"`
}

// S3Config configures S3-compatible object storage upload.
type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// SFTPConfig configures secure FTP upload.
type SFTPConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
}

// FTPConfig configures plain FTP upload.
type FTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// MediaConfig configures external media conversion tooling.
type MediaConfig struct {
	// ImageToPDFCommand is the converter tool path plus any fixed flags,
	// shell-quoted, e.g. `image2pdf.exe -r LICENSEKEY`. Input/output
	// arguments are appended per conversion.
	ImageToPDFCommand string `mapstructure:"image_to_pdf_command"`
	// ConvertWaitSeconds bounds the poll-wait for the converter's output
	// file to appear after the command returns.
	ConvertWaitSeconds float64 `mapstructure:"convert_wait_seconds"`
}

// PortalConfig configures the web GIS portal REST client.
type PortalConfig struct {
	URL      string `mapstructure:"url"` // sharing root, e.g. https://gis.example.com/portal
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
}
