// cmd/babo/config.go
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jason-s-yu/babo/internal/client"
	"github.com/jason-s-yu/babo/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	server   string
	sessions string
	interval time.Duration
	timeout  time.Duration
	verbose  bool
}

func (c *Config) validate() error {
	if c.server == "" {
		return errors.New("--server must not be empty")
	}
	if c.interval <= 0 {
		return fmt.Errorf("invalid poll interval: %s", c.interval)
	}
	return nil
}

func (c *Config) client() (*client.Client, error) {
	return client.New(c.server)
}

func (c *Config) store() (*session.FileStore, error) {
	path := c.sessions
	if path == "" {
		var err error
		if path, err = session.DefaultPath(); err != nil {
			return nil, fmt.Errorf("cannot locate session file, pass --sessions: %w", err)
		}
	}
	return session.NewFileStore(path), nil
}

func (c *Config) logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	if c.verbose {
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// bindEnv lets every flag in fs be set through a BABO_ environment variable.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BABO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "babo",
		Short:         "Play the fool-word party game from the terminal.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(v, cmd.Flags())
			return cfg.validate()
		},
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.server, "server", "s", "http://localhost:8080", "room server URL (env: BABO_SERVER)")
	fs.StringVar(&cfg.sessions, "sessions", "", "session file path, defaults to the user config dir (env: BABO_SESSIONS)")
	fs.DurationVar(&cfg.interval, "interval", time.Second, "poll interval for watch (env: BABO_INTERVAL)")
	fs.DurationVar(&cfg.timeout, "timeout", 10*time.Second, "timeout for a single command (env: BABO_TIMEOUT)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log requests and poll results to stderr (env: BABO_VERBOSE)")

	cmd.AddCommand(
		createCmd(cfg),
		joinCmd(cfg),
		startCmd(cfg),
		resetCmd(cfg),
		leaveCmd(cfg),
		kickCmd(cfg),
		watchCmd(cfg),
		categoriesCmd(cfg),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("babo v{{.Version}}\n")

	return cmd
}
