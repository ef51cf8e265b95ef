// Package cli implements socialctl, a terminal client for sellog.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Jaemnie/sellog/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	noColor bool

	rawIn  io.Reader
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	cfg     config.Config
	printer *Printer
	app     *app
}

// Execute runs socialctl with args.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	c := &cli{
		v:      viper.New(),
		rawIn:  in,
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
	defer c.close()

	root := c.rootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "socialctl",
		Short: "Terminal client for sellog",
		Long: `socialctl talks to the sellog backend: browse the feed, post, follow and search.

The session lives as long as the process unless a Redis store is configured, in which
case every socialctl sharing the store shares the session.

Example usage:
  socialctl shell                      # interactive session
  socialctl --store redis login alice  # log in and share the session
  socialctl --store redis feed         # use it from another process`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colours")
	flags.String("api-url", "", "backend base URL")
	flags.String("store", "", "session store: memory or redis")
	flags.String("redis-addr", "", "redis address for the redis store")

	_ = c.v.BindPFlag("api.url", flags.Lookup("api-url"))
	_ = c.v.BindPFlag("session.store", flags.Lookup("store"))
	_ = c.v.BindPFlag("redis.addr", flags.Lookup("redis-addr"))

	root.AddCommand(c.commands()...)
	root.AddCommand(c.shellCommand())
	return root
}

// commands are the session commands shared by the command line and the shell.
func (c *cli) commands() []*cobra.Command {
	return []*cobra.Command{
		c.loginCommand(),
		c.logoutCommand(),
		c.statusCommand(),
		c.feedCommand(),
		c.postCommand(),
		c.followCommand(),
		c.blockCommand(),
		c.searchCommand(),
	}
}

func (c *cli) setup(ctx context.Context) error {
	if c.app != nil {
		return nil
	}

	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.printer = NewPrinter(c.out, c.errOut, c.noColor)
	c.setupLogging()

	log.Debug().
		Str("api", cfg.GetAPIBaseURL()).
		Str("store", cfg.GetStoreBackend()).
		Str("env", cfg.GetEnv()).
		Msg("configuration loaded")

	a, err := newApp(ctx, cfg, c.printer)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) setupLogging() {
	level, err := zerolog.ParseLevel(strings.ToLower(c.cfg.GetLogLevel()))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: c.errOut, TimeFormat: time.Kitchen, NoColor: c.noColor}
	log.Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func (c *cli) close() {
	if c.app != nil {
		c.app.close()
	}
}

func (c *cli) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo on a terminal, and as a plain line otherwise.
func (c *cli) readPassword(prompt string) (string, error) {
	if f, ok := c.rawIn.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.out, prompt)
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		return string(pw), err
	}
	return c.readLine(prompt)
}
