package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"question-index/internal/config"
	"question-index/internal/infra/logx"
)

// Terminal access, replaced in tests.
var (
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readPassword    = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
)

func newLoginCmd(o *options) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Create a session and store it in the rc file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			closer, err := setupLogging(o, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			in := bufio.NewReader(cmd.InOrStdin())
			interactive := !passwordStdin && stdinIsTerminal()
			if username == "" {
				username = cfg.Username
			}
			if username == "" {
				if username, err = readLine(in, cmd.ErrOrStderr(), "Email: ", interactive); err != nil {
					return err
				}
			}
			password, err := readSecret(in, cmd.ErrOrStderr(), interactive)
			if err != nil {
				return err
			}

			cfg.Session = ""
			client := newClient(cfg, o)
			session, err := client.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			cfg.Session = session
			cfg.Username = username
			if err := config.Save(o.path(), cfg); err != nil {
				return fmt.Errorf("save %s: %w", o.path(), err)
			}
			logx.Infow("session stored", "path", o.path(), "user", username)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", cfg.Host, username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account email (default from rc file)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin without prompting")
	return cmd
}

// readSecret reads the password with echo disabled on a terminal, and as a
// plain line from in otherwise.
func readSecret(in *bufio.Reader, prompt io.Writer, interactive bool) (string, error) {
	if !interactive {
		return readLine(in, prompt, "Password: ", false)
	}
	_, _ = fmt.Fprint(prompt, "Password: ")
	b, err := readPassword()
	_, _ = fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(b) == 0 {
		return "", errors.New("password empty")
	}
	return string(b), nil
}

// readLine reads one trimmed line, printing label first when prompt is set.
func readLine(in *bufio.Reader, out io.Writer, label string, prompt bool) (string, error) {
	if prompt {
		_, _ = fmt.Fprint(out, label)
	}
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%s empty", strings.TrimSuffix(strings.ToLower(label), ": "))
	}
	return line, nil
}
