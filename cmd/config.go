package cmd

import "fmt"

// Config carries every runtime setting of the service. Values are read
// from the environment in main and parsed there; the composition root
// only consumes the typed result.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaBrokers            []string
	KafkaNotificationsTopic string

	PaystackBaseURL        string
	PaystackSecretKey      string
	PaystackTimeoutSeconds int

	TariffRatePerKm        float64
	TariffRatePerKg        float64
	TariffDemandMultiplier float64

	LocationFreshnessMinutes int
	RetryIntervalMinutes     int
	RetryMaxAttempts         int

	UploadDir string
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode,
	)
}
