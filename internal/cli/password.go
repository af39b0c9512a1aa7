package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thruflo/turing/internal/auth"
	"github.com/thruflo/turing/internal/config"
)

var passwordClear bool

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Set the password required by 'turing serve'",
	Long: `Prompts for a password twice and stores its argon2id hash in
.turing/config.yaml. Clients then authenticate with POST /auth before
calling the API. Use --clear to remove the password and open the API.`,
	Args: cobra.NoArgs,
	RunE: runPassword,
}

func init() {
	passwordCmd.Flags().BoolVar(&passwordClear, "clear", false, "remove the server password")
	rootCmd.AddCommand(passwordCmd)
}

func runPassword(cmd *cobra.Command, args []string) error {
	dir, err := baseDir()
	if err != nil {
		return err
	}

	fileCfg, err := config.LoadFile(dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if passwordClear {
		fileCfg.Server.PasswordHash = ""
		if err := config.Save(dir, fileCfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Server password removed.")
		return nil
	}

	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		in = os.Stdin
	}
	prompter := &auth.Prompter{In: in, Out: cmd.ErrOrStderr()}

	password, err := prompter.PromptAndConfirm()
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	fileCfg.Server.PasswordHash = hash
	if err := config.Save(dir, fileCfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Server password saved to %s.\n", config.Path(dir))
	return nil
}
