package main

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/renault-community/renault-command/pkg/proxy"
)

// assertEquals should be replaced with a real assertion library
func assertEquals(t *testing.T, expected, actual interface{}, message string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", message, expected, actual)
	}
}

func TestParseConfig(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"cmd"}
	defer func() {
		os.Args = origArgs
	}()

	t.Run("default values", func(t *testing.T) {
		err := readFromEnvironment()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		assertEquals(t, "localhost", httpConfig.host, "host")
		assertEquals(t, defaultPort, httpConfig.port, "port")
		assertEquals(t, proxy.DefaultTimeout, httpConfig.timeout, "timeout")
		assertEquals(t, proxy.DefaultClimateDuration, httpConfig.climateDuration, "climateDuration")
		assertEquals(t, "", httpConfig.certFilename, "certFilename")
		assertEquals(t, "", httpConfig.keyFilename, "keyFilename")
		assertEquals(t, "", httpConfig.stateFilename, "stateFilename")
		assertEquals(t, "", httpConfig.logLevel, "logLevel")
		assertEquals(t, false, httpConfig.verbose, "verbose")
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv(EnvTlsCert, "/env/cert.pem")
		t.Setenv(EnvTlsKey, "/env/key.pem")
		t.Setenv(EnvHost, "envhost")
		t.Setenv(EnvPort, "8443")
		t.Setenv(EnvVerbose, "true")
		t.Setenv(EnvTimeout, "30s")
		t.Setenv(EnvStateFile, "/env/state.json")
		t.Setenv(EnvClimateDuration, "10m")
		t.Setenv(EnvLogLevel, "warn")

		err := readFromEnvironment()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		assertEquals(t, "/env/cert.pem", httpConfig.certFilename, "certFilename")
		assertEquals(t, "/env/key.pem", httpConfig.keyFilename, "keyFilename")
		assertEquals(t, "envhost", httpConfig.host, "host")
		assertEquals(t, 8443, httpConfig.port, "port")
		assertEquals(t, 30*time.Second, httpConfig.timeout, "timeout")
		assertEquals(t, "/env/state.json", httpConfig.stateFilename, "stateFilename")
		assertEquals(t, 10*time.Minute, httpConfig.climateDuration, "climateDuration")
		assertEquals(t, "warn", httpConfig.logLevel, "logLevel")
		assertEquals(t, true, httpConfig.verbose, "verbose")
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		origLevel := httpConfig.logLevel
		defer func() {
			httpConfig.logLevel = origLevel
		}()
		httpConfig.logLevel = "shout"
		if err := applyLogLevel(); err == nil {
			t.Error("applyLogLevel accepted an unknown level name")
		}
	})

	t.Run("flags override environment variables", func(t *testing.T) {
		t.Setenv(EnvTlsCert, "/env/cert.pem")
		t.Setenv(EnvTlsKey, "/env/key.pem")
		t.Setenv(EnvHost, "envhost")
		t.Setenv(EnvPort, "8443")
		t.Setenv(EnvTimeout, "30s")
		t.Setenv(EnvStateFile, "/env/state.json")
		t.Setenv(EnvClimateDuration, "10m")
		os.Args = []string{"cmd", "-cert", "/flag/cert.pem", "-tls-key", "/flag/key.pem", "-host", "flaghost", "-port", "9090", "-timeout", "60s", "-state-file", "/flag/state.json", "-climate-duration", "15m"}

		flag.Parse()
		err := readFromEnvironment()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		assertEquals(t, "/flag/cert.pem", httpConfig.certFilename, "certFilename")
		assertEquals(t, "/flag/key.pem", httpConfig.keyFilename, "keyFilename")
		assertEquals(t, "flaghost", httpConfig.host, "host")
		assertEquals(t, 9090, httpConfig.port, "port")
		assertEquals(t, 60*time.Second, httpConfig.timeout, "timeout")
		assertEquals(t, "/flag/state.json", httpConfig.stateFilename, "stateFilename")
		assertEquals(t, 15*time.Minute, httpConfig.climateDuration, "climateDuration")
	})
}
