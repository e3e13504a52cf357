// Command qilodb launches the installation's passphrase protocol and the
// interactive command shell.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tech-hunter-mainak/qilodb/internal/config"
	"github.com/tech-hunter-mainak/qilodb/internal/crypto"
	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
	"github.com/tech-hunter-mainak/qilodb/internal/session"
	"github.com/tech-hunter-mainak/qilodb/internal/shell"
)

const (
	appName    = "qilodb"
	appVersion = "0.1.0"
)

func main() {
	var showLoc bool
	var forgot bool

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "A disk-backed relational database engine with an interactive command shell.",
		Version: appVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if showLoc {
				fmt.Println(cfg.DataRoot)
				return nil
			}
			if forgot {
				return runForgot(cfg)
			}
			return runShell(cfg)
		},
	}
	rootCmd.Flags().BoolVar(&showLoc, "loc", false, "print the data root's absolute path and exit")
	rootCmd.Flags().BoolVar(&forgot, "forgot", false, "rotate the installation's passphrase and re-key every table")
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s %s\n", appName, appVersion))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatStartupError(err))
		os.Exit(1)
	}
}

// formatStartupError renders a startup failure the same way the shell
// renders a tagged error, or plainly if it is not one.
func formatStartupError(err error) string {
	if qe, ok := err.(*qerrors.Error); ok {
		return fmt.Sprintf("%s: %s", qe.Kind, qe.Message)
	}
	return err.Error()
}

// runShell runs the passphrase protocol and, on success, the REPL.
func runShell(cfg *config.Config) error {
	passPath := cfg.DataRoot + string(os.PathSeparator) + crypto.PassphraseFileName

	if _, err := os.Stat(passPath); os.IsNotExist(err) {
		if err := firstLaunch(passPath); err != nil {
			return err
		}
	}

	storedHash, err := crypto.ReadStoredHash(passPath)
	if err != nil {
		return err
	}

	key, wipeRequested, err := crypto.Authenticate(os.Stdin, os.Stdout, storedHash, cfg.MaxTries)
	if err != nil {
		if wipeRequested {
			if wipeErr := wipeInstallation(cfg.DataRoot); wipeErr != nil {
				return wipeErr
			}
		}
		return err
	}

	sess := session.New(cfg.DataRoot, key, cfg.MaxTries)
	shell.Run(sess, os.Stdin, os.Stdout)
	return nil
}

// firstLaunch prompts for a new installation's passphrase twice and writes
// its digest to path.
func firstLaunch(path string) error {
	fmt.Println("No installation found. Choose a passphrase to initialize one.")
	passphrase, err := promptMatching(os.Stdin, os.Stdout, "Choose passphrase: ", "Confirm passphrase: ")
	if err != nil {
		return err
	}
	return crypto.InitStoredHash(path, passphrase)
}

// runForgot rotates the installation's passphrase: the operator must
// authenticate with the current passphrase, then supply a matching new one
// twice before every table file is re-encrypted under the new key.
func runForgot(cfg *config.Config) error {
	passPath := cfg.DataRoot + string(os.PathSeparator) + crypto.PassphraseFileName
	storedHash, err := crypto.ReadStoredHash(passPath)
	if err != nil {
		return err
	}

	oldKey, wipeRequested, err := crypto.Authenticate(os.Stdin, os.Stdout, storedHash, cfg.MaxTries)
	if err != nil {
		if wipeRequested {
			if wipeErr := wipeInstallation(cfg.DataRoot); wipeErr != nil {
				return wipeErr
			}
		}
		return err
	}

	newPassphrase, err := promptMatching(os.Stdin, os.Stdout, "Enter new passphrase: ", "Confirm new passphrase: ")
	if err != nil {
		return err
	}
	newHash := crypto.StoreHash(newPassphrase)
	newKey := crypto.DeriveKey(newHash)

	report, err := crypto.RotateAll(cfg.DataRoot, oldKey, newKey)
	if err != nil {
		return err
	}
	for _, w := range report.Skipped {
		fmt.Fprintln(os.Stderr, w.Error())
	}
	fmt.Printf("Rotated %d table file(s).\n", len(report.Rotated))

	return crypto.WriteStoredHash(passPath, newPassphrase)
}

// promptMatching prompts twice via in/out until the two entries match,
// returning the agreed-upon value.
func promptMatching(in *os.File, out *os.File, firstPrompt, secondPrompt string) (string, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, firstPrompt)
		if !scanner.Scan() {
			return "", qerrors.Programf("no input provided")
		}
		first := scanner.Text()

		fmt.Fprint(out, secondPrompt)
		if !scanner.Scan() {
			return "", qerrors.Programf("no input provided")
		}
		second := scanner.Text()

		if first == second && first != "" {
			return first, nil
		}
		fmt.Fprintln(out, "Passphrases did not match, try again.")
	}
}

// wipeInstallation deletes every entry under root after the final failed
// passphrase attempt, leaving the (now empty) data root itself in place.
func wipeInstallation(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return qerrors.Programf("could not read data root during wipe: %v", err)
	}
	for _, entry := range entries {
		path := root + string(os.PathSeparator) + entry.Name()
		if err := os.RemoveAll(path); err != nil {
			return qerrors.Programf("could not wipe %s: %v", path, err)
		}
	}
	return nil
}
