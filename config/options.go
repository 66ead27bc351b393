package config

const (
	defaultLogFile           = "bookhub.log"
	defaultLogLevel          = "info"
	defaultLogFileMaxSize    = 20
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAge     = 28
	defaultLogCompress       = false
	defaultPort              = 8080
	defaultHost              = "0.0.0.0"
	defaultData              = "/var/opt/bookhub"
	defaultDSN               = defaultData + "/bookhub.db"

	defaultLoanPeriodDays        = 14
	defaultMaxRenewals           = 2
	defaultMaxActiveLoans        = 5
	defaultMaxActiveReservations = 3
	defaultReservationExpiryDays = 7
	defaultDueSoonDays           = 3
	defaultWorkerPoolSize        = 4
	defaultNotifyInterval        = 60
)

var Opts *Options

// Why use mapstructure instead of json, if use json as field tags, it can't
// recgnize the field, since the viper use mapstructure.
// see: https://pkg.go.dev/github.com/mitchellh/mapstructure#hdr-Field_Tags
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFileMaxSize is the maximum size of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// DSN is the path of the sqlite database
	DSN string `mapstructure:"dsn_uri"`
	// Port is the port to listen on
	Port int `mapstructure:"port"`
	// Host is the host to listen on
	Host string `mapstructure:"host"`
	// Data is the directory to store data
	Data string `mapstructure:"data"`

	// Lending policy. The approval workflow is always on; the flags below
	// cover the points where the workflow is configurable.
	//
	// LoanPeriodDays is the loan period granted on approval and on renewal.
	LoanPeriodDays int `mapstructure:"loan_period_days"`
	// MaxRenewals is the maximum renewals for a single loan.
	MaxRenewals int `mapstructure:"max_renewals"`
	// MaxActiveLoans is the maximum non-terminal loans a user can hold.
	MaxActiveLoans int `mapstructure:"max_active_loans"`
	// MaxActiveReservations is the maximum live reservations a user can hold.
	MaxActiveReservations int `mapstructure:"max_active_reservations"`
	// ReservationExpiryDays is how long a reservation stays valid.
	ReservationExpiryDays int `mapstructure:"reservation_expiry_days"`
	// AllowRenewal toggles renewals entirely.
	AllowRenewal bool `mapstructure:"allow_renewal"`
	// SelfReturn lets members return their own loans without a librarian.
	SelfReturn bool `mapstructure:"self_return"`
	// SelfRenew lets members renew their own loans without a librarian.
	SelfRenew bool `mapstructure:"self_renew"`
	// ReserveOnlyWhenUnavailable restricts reservations to books with no
	// free copies.
	ReserveOnlyWhenUnavailable bool `mapstructure:"reserve_only_when_unavailable"`
	// DueSoonDays is the window used for due-soon listings and notifications.
	DueSoonDays int `mapstructure:"due_soon_days"`

	// WorkerPoolSize is the number of background notification workers.
	WorkerPoolSize int `mapstructure:"worker_pool_size"`
	// NotifyIntervalMinutes is how often the due-soon scan runs.
	NotifyIntervalMinutes int `mapstructure:"notify_interval_minutes"`

	// JWTSecret signs access tokens. Generated on first start when empty.
	JWTSecret string `mapstructure:"jwt_secret"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:           defaultLogFile,
		LogLevel:          defaultLogLevel,
		LogFileMaxSize:    defaultLogFileMaxSize,
		LogFileMaxBackups: defaultLogFileMaxBackups,
		LogFileMaxAge:     defaultLogFileMaxAge,
		LogCompress:       defaultLogCompress,
		DSN:               defaultDSN,
		Port:              defaultPort,
		Host:              defaultHost,
		Data:              defaultData,

		LoanPeriodDays:             defaultLoanPeriodDays,
		MaxRenewals:                defaultMaxRenewals,
		MaxActiveLoans:             defaultMaxActiveLoans,
		MaxActiveReservations:      defaultMaxActiveReservations,
		ReservationExpiryDays:      defaultReservationExpiryDays,
		AllowRenewal:               true,
		SelfReturn:                 true,
		SelfRenew:                  true,
		ReserveOnlyWhenUnavailable: false,
		DueSoonDays:                defaultDueSoonDays,

		WorkerPoolSize:        defaultWorkerPoolSize,
		NotifyIntervalMinutes: defaultNotifyInterval,
	}
	return Opts
}
