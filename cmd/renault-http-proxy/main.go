package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/renault-community/renault-command/internal/log"
	"github.com/renault-community/renault-command/pkg/cli"
	"github.com/renault-community/renault-command/pkg/proxy"
)

const defaultPort = 8080

const (
	EnvTlsCert         = "RENAULT_HTTP_PROXY_TLS_CERT"
	EnvTlsKey          = "RENAULT_HTTP_PROXY_TLS_KEY"
	EnvHost            = "RENAULT_HTTP_PROXY_HOST"
	EnvPort            = "RENAULT_HTTP_PROXY_PORT"
	EnvTimeout         = "RENAULT_HTTP_PROXY_TIMEOUT"
	EnvStateFile       = "RENAULT_HTTP_PROXY_STATE_FILE"
	EnvClimateDuration = "RENAULT_HTTP_PROXY_CLIMATE_DURATION"
	EnvLogLevel        = "RENAULT_HTTP_PROXY_LOG_LEVEL"
	EnvVerbose         = "RENAULT_VERBOSE"
)

const nonLocalhostWarning = `
Do not listen on a network interface without adding client authentication. Unauthorized clients may
be used to create excessive traffic from your IP address to Renault's servers, which Renault may
respond to by rate limiting or locking your account.`

type HttpProxyConfig struct {
	keyFilename     string
	certFilename    string
	verbose         bool
	logLevel        string
	host            string
	port            int
	timeout         time.Duration
	stateFilename   string
	climateDuration time.Duration
}

var (
	httpConfig = &HttpProxyConfig{}
)

func init() {
	flag.StringVar(&httpConfig.certFilename, "cert", "", "TLS certificate chain `file` with concatenated server, intermediate CA, and root CA certificates")
	flag.StringVar(&httpConfig.keyFilename, "tls-key", "", "Server TLS private key `file`")
	flag.BoolVar(&httpConfig.verbose, "verbose", false, "Enable verbose logging. Equivalent to -log-level debug.")
	flag.StringVar(&httpConfig.logLevel, "log-level", "", "Log `level`: debug, info, warn, error, or none")
	flag.StringVar(&httpConfig.host, "host", "localhost", "Proxy server `hostname`")
	flag.IntVar(&httpConfig.port, "port", defaultPort, "`Port` to listen on")
	flag.DurationVar(&httpConfig.timeout, "timeout", proxy.DefaultTimeout, "Timeout interval when talking to the gateway")
	flag.StringVar(&httpConfig.stateFilename, "state-file", "", "`File` for the preconditioning countdown record. Defaults to a per-user cache path.")
	flag.DurationVar(&httpConfig.climateDuration, "climate-duration", proxy.DefaultClimateDuration, "Assumed duration of a preconditioning run")
}

func Usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [OPTION...]\n", os.Args[0])
	fmt.Fprintf(out, "\nA server that exposes a REST API for monitoring and preconditioning Renault vehicles")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, nonLocalhostWarning)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
}

func main() {
	config, err := cli.NewConfig(cli.FlagCredentials | cli.FlagVIN | cli.FlagCache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credential configuration: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}()

	flag.Usage = Usage
	config.RegisterCommandLineFlags()
	flag.Parse()
	if err = readFromEnvironment(); err != nil {
		return
	}
	config.ReadFromEnvironment()

	if err = applyLogLevel(); err != nil {
		return
	}

	if httpConfig.host != "localhost" {
		fmt.Fprintln(os.Stderr, nonLocalhostWarning)
	}

	if err = config.LoadCredentials(); err != nil {
		return
	}

	acct, err := config.Account()
	if err != nil {
		return
	}

	store, err := stateStore()
	if err != nil {
		return
	}

	log.Debug("Creating proxy")
	p := proxy.New(proxy.LiveAccount(acct), config.SnapshotCache(), store)
	p.Timeout = httpConfig.timeout
	p.ClimateDuration = httpConfig.climateDuration

	addr := fmt.Sprintf("%s:%d", httpConfig.host, httpConfig.port)
	log.Info("Listening on %s", addr)

	// To add more application logic, such as client authentication, create an
	// http.HandlerFunc that performs your business logic and then, if the request
	// is authorized, invokes p.ServeHTTP.
	if httpConfig.certFilename != "" || httpConfig.keyFilename != "" {
		log.Error("Server stopped: %s", http.ListenAndServeTLS(addr, httpConfig.certFilename, httpConfig.keyFilename, p))
	} else {
		log.Error("Server stopped: %s", http.ListenAndServe(addr, p))
	}
}

// stateStore builds the countdown record store, creating the parent directory of
// the default per-user path when needed.
func stateStore() (*proxy.FileStateStore, error) {
	path := httpConfig.stateFilename
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine state file location: %s (set -state-file)", err)
		}
		path = filepath.Join(dir, "renault-http-proxy", "hvac-state.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create state directory: %s", err)
	}
	log.Debug("Keeping preconditioning state in %s", path)
	return &proxy.FileStateStore{Path: path}, nil
}

// applyLogLevel configures the logger from -log-level, falling back to -verbose.
func applyLogLevel() error {
	if httpConfig.logLevel == "" {
		if httpConfig.verbose {
			log.SetLevel(log.LevelDebug)
		}
		return nil
	}
	level, ok := log.LevelFromName(httpConfig.logLevel)
	if !ok {
		return fmt.Errorf("unrecognized log level: %s", httpConfig.logLevel)
	}
	log.SetLevel(level)
	return nil
}

// readFromEnvironment applies configuration from environment variables. Values are
// not overwritten.
func readFromEnvironment() error {
	if httpConfig.certFilename == "" {
		httpConfig.certFilename = os.Getenv(EnvTlsCert)
	}
	if httpConfig.keyFilename == "" {
		httpConfig.keyFilename = os.Getenv(EnvTlsKey)
	}
	if httpConfig.stateFilename == "" {
		httpConfig.stateFilename = os.Getenv(EnvStateFile)
	}
	if httpConfig.logLevel == "" {
		httpConfig.logLevel = os.Getenv(EnvLogLevel)
	}
	if httpConfig.host == "localhost" {
		if host, ok := os.LookupEnv(EnvHost); ok {
			httpConfig.host = host
		}
	}
	if !httpConfig.verbose {
		if verbose, ok := os.LookupEnv(EnvVerbose); ok {
			httpConfig.verbose = verbose != "false" && verbose != "0"
		}
	}

	var err error
	if httpConfig.port == defaultPort {
		if port, ok := os.LookupEnv(EnvPort); ok {
			httpConfig.port, err = strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("invalid port: %s", port)
			}
		}
	}
	if httpConfig.timeout == proxy.DefaultTimeout {
		if timeoutEnv, ok := os.LookupEnv(EnvTimeout); ok {
			httpConfig.timeout, err = time.ParseDuration(timeoutEnv)
			if err != nil {
				return fmt.Errorf("invalid timeout: %s", timeoutEnv)
			}
		}
	}
	if httpConfig.climateDuration == proxy.DefaultClimateDuration {
		if durationEnv, ok := os.LookupEnv(EnvClimateDuration); ok {
			httpConfig.climateDuration, err = time.ParseDuration(durationEnv)
			if err != nil {
				return fmt.Errorf("invalid climate duration: %s", durationEnv)
			}
		}
	}
	return nil
}
