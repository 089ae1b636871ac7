// Utility for enrolling MyRenault account passwords in the system keyring

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/renault-community/renault-command/internal/log"
	"github.com/renault-community/renault-command/pkg/cli"
	"github.com/renault-community/renault-command/pkg/protocol"
)

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "usage: %s -email EMAIL [-credentials-name NAME] [file]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Reads a MyRenault account password from file, stdin (when piped), or an")
	fmt.Fprintln(w, "interactive prompt, verifies it against the identity service, and saves it in")
	fmt.Fprintf(w, "the system keyring. The entry name defaults to $%s, then the\n", cli.EnvRenaultCredentialsName)
	fmt.Fprintln(w, "account email.")
}

func readPassword(config *cli.Config) (string, error) {
	switch flag.NArg() {
	case 0:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return cli.PromptSecret(fmt.Sprintf("MyRenault password for %s", config.Email))
		}
		password, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("error reading password from stdin: %s", err)
		}
		return strings.TrimSpace(string(password)), nil
	case 1:
		password, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			return "", fmt.Errorf("error reading password from file: %s", err)
		}
		return strings.TrimSpace(string(password)), nil
	default:
		return "", fmt.Errorf("too many command-line arguments")
	}
}

func main() {
	returnCode := 1
	defer func() {
		os.Exit(returnCode)
	}()

	config, err := cli.NewConfig(cli.FlagCredentials)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credential configuration: %s\n", err)
		return
	}

	var (
		noVerify bool
		timeout  time.Duration
	)
	flag.BoolVar(&noVerify, "no-verify", false, "Skip checking the password against the identity service")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for the verification login")
	flag.Usage = usage
	config.RegisterCommandLineFlags()
	flag.Parse()
	if config.Debug {
		log.SetLevel(log.LevelDebug)
	}
	config.ReadFromEnvironment()

	if config.Email == "" {
		fmt.Fprintf(os.Stderr, "Must provide an account email with -email or $%s\n", cli.EnvRenaultEmail)
		return
	}

	password, err := readPassword(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return
	}
	if password == "" {
		fmt.Fprintln(os.Stderr, "Refusing to store an empty password")
		return
	}
	config.SetPassword(password)

	if !noVerify {
		acct, err := config.Account()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fmt.Println("Verifying credentials...")
		if _, err := acct.Session(ctx); err != nil {
			if protocol.IsUnauthorized(err) {
				fmt.Fprintf(os.Stderr, "Verification failed: %s\n", err)
				return
			}
			// The login itself succeeded. Directory problems, such as an account
			// with no vehicles yet, do not block enrollment.
			fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
		}
	}

	if err := config.SaveCredentialsToKeyring(password); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving password to keyring: %s\n", err)
		return
	}
	fmt.Printf("Password for %s enrolled in the system keyring.\n", config.Email)

	returnCode = 0
}
