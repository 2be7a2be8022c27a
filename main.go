package main

import (
	"fmt"
	"os"

	"make-it-right/config"
	"make-it-right/refresh"
	"make-it-right/stellar"
	"make-it-right/wallet"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// -------------------- MAIN --------------------

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree; the bare command runs the TUI.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "make-it-right",
		Short:         "Send an on-chain apology on the Stellar network",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrCreate(configPath, cmd.Flags())
			if err != nil {
				return errors.Wrap(err, "loading config")
			}
			return runTUI(cfg, configPath)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file")
	addConfigFlags(root.PersistentFlags())

	root.AddCommand(newKeystoreCmd(&configPath))
	return root
}

// addConfigFlags registers one flag per config key. Only flags the user
// sets override the file and environment.
func addConfigFlags(fs *pflag.FlagSet) {
	def := config.DefaultConfig()
	fs.String(config.FlagName(config.KeyNetwork), def.Network, "stellar network (testnet or public)")
	fs.String(config.FlagName(config.KeyHorizonURL), def.HorizonURL, "horizon URL override")
	fs.String(config.FlagName(config.KeyKeystore), def.Keystore, "keystore file")
	fs.Int(config.FlagName(config.KeyHistoryLimit), def.HistoryLimit, "number of recent payments to show")
	fs.Duration(config.FlagName(config.KeyRequestTimeout), def.RequestTimeout, "timeout for ledger requests")
	fs.Bool(config.FlagName(config.KeyLogger), def.Logger, "show the activity log panel")
	fs.Bool(config.FlagName(config.KeyStrictAddresses), def.StrictAddresses, "verify address checksums")
}

func runTUI(cfg config.Config, configPath string) error {
	ks := wallet.Open(cfg.Keystore)
	client := stellar.New(stellar.Options{
		Network:    stellar.Network(cfg.Network),
		HorizonURL: cfg.HorizonURL,
		Timeout:    cfg.RequestTimeout,
		Signer:     ks,
	})

	m := newModel(deps{
		cfg:        cfg,
		configPath: configPath,
		ledger:     client,
		connector:  ks,
		notifier:   refresh.NewNotifier(),
	})
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
