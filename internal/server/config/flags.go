package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/securelinks/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-l bool     secure links enabled (use -l=false to disable)
//	-url string public base URL used in minted links
//	-blob string blob backend ("s3" or "dir")
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-r string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// os.Args is filtered through flagx.FilterArgs first so the -c/-config flag
// handled by parseJson does not make parsing fail.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-g", "-d", "-s", "-l", "-url", "-blob", "-u", "-p", "-b", "-r", "-e"},
		"-l")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to serve links on")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port of the admin gRPC service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")
	fs.BoolVar(&config.SecureLinksEnabled, "l", config.SecureLinksEnabled, "secure links enabled")
	fs.StringVar(&config.PublicBaseURL, "url", config.PublicBaseURL, "public base URL for minted links")
	fs.StringVar(&config.BlobBackend, "blob", config.BlobBackend, "blob backend: s3 or dir")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
