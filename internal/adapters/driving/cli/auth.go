package cli

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	authClientID     string
	authClientSecret string
	authSandbox      bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store marketplace application credentials",
	Long: `Stores the marketplace application client id and secret used by the
taxonomy client.

Run without flags for interactive entry (the secret is read without
echo), or pass both flags for non-interactive use:

  relist auth
  relist auth --client-id "YOUR_ID" --client-secret "YOUR_SECRET"
  relist auth --sandbox`,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().StringVar(&authClientID, "client-id", "", "application client id")
	authCmd.Flags().StringVar(&authClientSecret, "client-secret", "", "application client secret")
	authCmd.Flags().BoolVar(&authSandbox, "sandbox", false, "use the sandbox environment")
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	clientID := authClientID
	clientSecret := authClientSecret

	if clientID == "" {
		cmd.Print("Client ID: ")
		clientID = readLine()
	}
	if clientSecret == "" {
		cmd.Print("Client secret (hidden): ")
		clientSecret = readSecret()
		cmd.Println()
	}

	if err := settingsService.SetMarketplaceCredentials(clientID, clientSecret); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	settings.Marketplace.Sandbox = authSandbox
	if err := settingsService.Save(settings); err != nil {
		return err
	}

	env := "production"
	if authSandbox {
		env = "sandbox"
	}
	cmd.Printf("Credentials saved (%s environment).\n", env)
	return nil
}

func readLine() string {
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine()
}
