package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/securelinks/internal/flagx"
	"github.com/dmitrijs2005/securelinks/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "10s" strings and integer nanoseconds via timex.Duration. Pointer fields
// distinguish "absent" from the zero value so a partial file only overrides
// what it names.
type JsonConfig struct {
	EndpointAddrHTTP   *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC   *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN        *string         `json:"database_dsn"`
	SecretKey          *string         `json:"secret_key"`
	SecureLinksEnabled *bool           `json:"secure_links_enabled"`
	PublicBaseURL      *string         `json:"public_base_url"`
	ViewPath           *string         `json:"view_path"`
	DownloadPath       *string         `json:"download_path"`
	LoginURL           *string         `json:"login_url"`
	HomeURL            *string         `json:"home_url"`
	BlobBackend        *string         `json:"blob_backend"`
	BlobDir            *string         `json:"blob_dir"`
	S3RootUser         *string         `json:"s3_root_user"`
	S3RootPassword     *string         `json:"s3_root_password"`
	S3Bucket           *string         `json:"s3_bucket"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
	AnalyticsBuffer    *int            `json:"analytics_buffer"`
	ShutdownTimeout    *timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Without the flag nothing is loaded. An unreadable file or invalid JSON
// panics: the server must not start on a half-read configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	set(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.SecureLinksEnabled, c.SecureLinksEnabled)
	set(&config.PublicBaseURL, c.PublicBaseURL)
	set(&config.ViewPath, c.ViewPath)
	set(&config.DownloadPath, c.DownloadPath)
	set(&config.LoginURL, c.LoginURL)
	set(&config.HomeURL, c.HomeURL)
	set(&config.BlobBackend, c.BlobBackend)
	set(&config.BlobDir, c.BlobDir)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.AnalyticsBuffer, c.AnalyticsBuffer)
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
