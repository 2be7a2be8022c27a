package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"make-it-right/config"
	"make-it-right/stellar"
	"make-it-right/styles"
	"make-it-right/wallet"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stellar/go/keypair"
)

const minPassphraseLength = 8

// -------------------- KEYSTORE COMMANDS --------------------

func newKeystoreCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keystore",
		Short: "Manage the encrypted keystore that signs payments",
	}

	var fund bool
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a new account and store it encrypted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath, cmd.Flags())
			if err != nil {
				return err
			}
			kp, err := keypair.Random()
			if err != nil {
				return errors.Wrap(err, "generating keypair")
			}
			if err := storeKeypair(cmd.OutOrStdout(), cfg.Keystore, kp); err != nil {
				return err
			}
			if fund {
				return fundAccount(cmd.OutOrStdout(), cfg, kp.Address())
			}
			return nil
		},
	}
	newCmd.Flags().BoolVar(&fund, "fund", false, "fund the new account with friendbot (testnet only)")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Encrypt an existing secret seed into the keystore",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath, cmd.Flags())
			if err != nil {
				return err
			}
			var seed string
			err = huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Secret seed").
					Description("Starts with S, 56 characters").
					EchoMode(huh.EchoModePassword).
					Value(&seed).
					Validate(func(s string) error {
						if _, err := keypair.ParseFull(strings.TrimSpace(s)); err != nil {
							return errors.New("not a valid secret seed")
						}
						return nil
					}),
			)).WithTheme(huh.ThemeCatppuccin()).Run()
			if err != nil {
				return err
			}
			kp, err := keypair.ParseFull(strings.TrimSpace(seed))
			if err != nil {
				return errors.Wrap(err, "parsing secret seed")
			}
			return storeKeypair(cmd.OutOrStdout(), cfg.Keystore, kp)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the keystore's public address",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath, cmd.Flags())
			if err != nil {
				return err
			}
			addr, err := wallet.Open(cfg.Keystore).Address()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styles.TitleStyle.Render("Address"))
			fmt.Fprintln(out, addr)
			fmt.Fprintln(out, stellar.GenerateQRCode(addr))
			return nil
		},
	}

	cmd.AddCommand(newCmd, importCmd, showCmd)
	return cmd
}

// storeKeypair asks for a passphrase and writes kp to path
func storeKeypair(out io.Writer, path string, kp *keypair.Full) error {
	pass, err := promptPassphrase()
	if err != nil {
		return err
	}
	if err := wallet.Create(path, pass, kp); err != nil {
		return err
	}
	fmt.Fprintln(out, styles.SuccessStyle.Render("Keystore written to "+path))
	fmt.Fprintln(out, "Address: "+kp.Address())
	return nil
}

func promptPassphrase() (string, error) {
	var pass, again string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Passphrase").
			EchoMode(huh.EchoModePassword).
			Value(&pass).
			Validate(func(s string) error {
				if len(s) < minPassphraseLength {
					return errors.Errorf("use at least %d characters", minPassphraseLength)
				}
				return nil
			}),
		huh.NewInput().
			Title("Repeat passphrase").
			EchoMode(huh.EchoModePassword).
			Value(&again).
			Validate(func(s string) error {
				if s != pass {
					return errors.New("passphrases do not match")
				}
				return nil
			}),
	)).WithTheme(huh.ThemeCatppuccin()).Run()
	if err != nil {
		return "", err
	}
	return pass, nil
}

func fundAccount(out io.Writer, cfg config.Config, address string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, TimeFormat: "15:04:05"})
	client := stellar.New(stellar.Options{
		Network:    stellar.Network(cfg.Network),
		HorizonURL: cfg.HorizonURL,
		Timeout:    cfg.RequestTimeout,
		Logger:     logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	logger.Info("Funding account with friendbot", "network", client.Network(), "address", address)
	hash, err := client.Fund(ctx, address)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, styles.SuccessStyle.Render("Funded"))
	fmt.Fprintln(out, client.ExplorerLink(hash, stellar.LinkTx))
	return nil
}
