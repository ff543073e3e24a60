package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/videofonik/vfconsole/pkg/api"
	"github.com/videofonik/vfconsole/pkg/config"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/session"
)

// sessionTTL is how long a CLI login is kept (7 days).
const sessionTTL = 7 * 24 * time.Hour

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to the backend",
		Long: `Sign in with your console account. The access token is stored in
~/.config/vfconsole/sessions/ and used by every other command.

Setting ` + config.EnvToken + ` bypasses the stored session.`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authRegisterCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authWhoamiCommand())

	return cmd
}

func (c *CLI) authLoginCommand() *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in with email and password. Missing values are asked for
interactively; use --password-stdin in scripts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var password string
			if passwordStdin {
				var err error
				if password, err = readSecret(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				vals, err := prompt(ctx, "Sign in",
					formField{Label: "Email", Placeholder: "you@example.com", Value: email},
					formField{Label: "Password", Secret: true, Value: password})
				if err != nil {
					return err
				}
				email, password = strings.TrimSpace(vals[0]), vals[1]
			}

			sess, err := c.login(ctx, email, password)
			if err != nil {
				return err
			}
			printSuccess("Signed in as %s", StyleHighlight.Render(sess.User.Email))
			printDetail("Session stored until %s", sess.ExpiresAt.Format("Jan 2, 2006"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

// login exchanges the credentials for a token and stores the session.
func (c *CLI) login(ctx context.Context, email, password string) (*session.Session, error) {
	if err := vferrors.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := vferrors.ValidatePassword(password); err != nil {
		return nil, err
	}

	client := c.newClientWith(nil)
	tok, err := spin(ctx, "Signing in...", func(ctx context.Context) (*api.Token, error) {
		return client.Login(ctx, email, password)
	})
	if err != nil {
		return nil, explain(err)
	}

	user, err := c.newClientWith(api.StaticToken(tok.AccessToken)).CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", explain(err))
	}

	sess, err := session.New(tok.AccessToken, user, sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sess.APIURL = client.BaseURL()

	store, err := c.sessionStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if err := store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.Logger.Debug("session saved", "path", store.Path(), "user", user.ID)
	return sess, nil
}

func (c *CLI) authRegisterCommand() *cobra.Command {
	var reg api.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with a registration code",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if reg.Email == "" || reg.FullName == "" || reg.RegistrationCode == "" || reg.Password == "" {
				vals, err := prompt(ctx, "Create account",
					formField{Label: "Email", Value: reg.Email},
					formField{Label: "Full name", Value: reg.FullName},
					formField{Label: "Registration code", Value: reg.RegistrationCode},
					formField{Label: "Password", Secret: true})
				if err != nil {
					return err
				}
				reg.Email = strings.TrimSpace(vals[0])
				reg.FullName = strings.TrimSpace(vals[1])
				reg.RegistrationCode = strings.TrimSpace(vals[2])
				reg.Password = vals[3]
			}

			client := c.newClientWith(nil)
			user, err := spin(ctx, "Creating account...", func(ctx context.Context) (*api.User, error) {
				return client.Register(ctx, reg)
			})
			if err != nil {
				return explain(err)
			}

			printSuccess("Account created for %s", StyleHighlight.Render(user.Email))
			printNextStep("Sign in", appName+" auth login --email "+user.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&reg.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&reg.RegistrationCode, "code", "", "registration code")
	return cmd
}

func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.sessionStore()
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if err := store.DeleteSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			if c.settings().Token != "" {
				printWarning("%s is still set", config.EnvToken)
			}
			return nil
		},
	}
}

func (c *CLI) authWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var sess *session.Session
			if c.settings().Token == "" {
				store, err := c.sessionStore()
				if err != nil {
					return fmt.Errorf("open session store: %w", err)
				}
				if sess, err = store.GetSession(ctx); err != nil {
					return fmt.Errorf("get session: %w", err)
				}
				if sess == nil {
					return fmt.Errorf("not logged in (run '%s auth login' first)", appName)
				}
			}

			client, err := c.newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Verifying session...")
			spinner.Start()
			user, err := client.CurrentUser(ctx)
			if err != nil {
				spinner.StopWithError("Session invalid")
				return explain(err)
			}
			spinner.Stop()

			printSuccess("Console session")
			printKeyValue("Email", user.Email)
			if user.FullName != "" {
				printKeyValue("Name", user.FullName)
			}
			printKeyValue("User ID", user.ID)
			printKeyValue("Backend", client.BaseURL())
			if sess == nil {
				printKeyValue("Token", "from "+config.EnvToken)
				return nil
			}
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			if sess.APIURL != "" && sess.APIURL != client.BaseURL() {
				printWarning("Session was issued by %s", sess.APIURL)
			}
			return nil
		},
	}
}

// readSecret reads a single line from r, as piped to --password-stdin.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
