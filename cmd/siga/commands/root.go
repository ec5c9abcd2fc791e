package commands

import (
	"context"
	"fatec-api/internal/components/chrono"
	"fatec-api/internal/components/telemetry"
	"fatec-api/internal/config"
	"fatec-api/internal/siga"
	"fatec-api/pkg/restyutil"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	debug      *bool
	jsonOutput *bool
	dumpDir    *string
)

// state is created once per invocation by the root command.
var state struct {
	config    config.Config
	clock     chrono.API
	tel       telemetry.API
	telemetry telemetry.Telemetry
}

var rootCmd = &cobra.Command{
	Use:   "siga",
	Short: "siga is a CLI for reading a student's data out of the SIGA portal.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*debug)

		cfg, err := config.Read(*configPath)
		if err != nil {
			return err
		}
		if *dumpDir != "" {
			cfg.Portal.DumpDir = *dumpDir
		}
		state.config = cfg

		state.telemetry, err = telemetry.Setup(cmd.Context(), "siga", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		clock, err := chrono.NewStandardImpl()
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}
		state.clock = clock
		state.tel = telemetry.SlogAPI{}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := state.telemetry.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
	SilenceUsage: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", config.DEFAULT_PATH, "The config file to read.")
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging.")
	jsonOutput = rootCmd.PersistentFlags().Bool("json", false, "Print results as json instead of tables.")
	dumpDir = rootCmd.PersistentFlags().String("dump", "", "Write every http exchange with the portal to this directory.")
}

// newAccount creates an account from the config's credentials.
func newAccount() (*siga.Account, error) {
	err := state.config.Validate()
	if err != nil {
		return nil, err
	}

	var output telemetry.MessageOutput
	if state.config.Portal.DumpDir != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(state.config.Portal.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("create dump dir: %w", err)
		}
		output = fsOutput
	}

	return siga.NewAccount(
		state.config.Username,
		state.config.Password,
		state.config.ClientOptions(output),
		state.clock,
		state.tel,
	)
}

// login creates an account and makes sure the portal accepted it.
func login(ctx context.Context) (*siga.Account, error) {
	account, err := newAccount()
	if err != nil {
		return nil, err
	}
	err = account.Login(ctx)
	if err != nil {
		return nil, err
	}
	if account.IsDenied() {
		return nil, fmt.Errorf("%w: %s", siga.ErrAuthenticationDenied, account.DeniedReason())
	}
	return account, nil
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
