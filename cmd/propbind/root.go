// FILE: lixenwraith/propbind/cmd/propbind/root.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/propbind"
)

// cli holds the state shared by all subcommands.
type cli struct {
	settingsPath string
	discovery    DiscoveryOptions
	settings     Settings
	logger       *zap.Logger
}

// NewRootCommand assembles the propbind command tree.
func NewRootCommand() *cobra.Command {
	c := &cli{
		discovery: DefaultDiscoveryOptions("propbind"),
		settings:  DefaultSettings(),
		logger:    zap.NewNop(),
	}

	rootCmd := &cobra.Command{
		Use:   "propbind",
		Short: "Inspect and edit property stores",
		Long: `propbind reads and edits the property stores used by applications that
bind configuration with the propbind library: line-format files, embedded
SQLite collections and MongoDB collections.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: c.prepare,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = c.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.settingsPath, "config", "", "settings file (.toml, .yaml); searched for when unset")
	flags.String("store", c.settings.Store, "store kind: file, sqlite or mongo")
	flags.String("path", c.settings.Path, "property file or SQLite database path")
	flags.String("collection", c.settings.Collection, "document collection name")
	flags.String("uri", c.settings.URI, "MongoDB connection URI")
	flags.String("database", c.settings.Database, "MongoDB database name")
	flags.String("comment", c.settings.CommentSign, "comment sign of property files")
	flags.String("log-level", c.settings.Log.Level, "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		c.newGetCommand(),
		c.newSetCommand(),
		c.newListCommand(),
		c.newFmtCommand(),
		c.newWatchCommand(),
	)
	return rootCmd
}

// prepare loads settings, applies flag overrides and builds the logger.
func (c *cli) prepare(cmd *cobra.Command, _ []string) error {
	if c.settingsPath == "" {
		c.settingsPath = DiscoverSettings(c.discovery)
	}
	if c.settingsPath != "" {
		s, err := LoadSettings(c.settingsPath)
		if err != nil {
			return err
		}
		c.settings = s
	}

	flags := cmd.Flags()
	overrides := map[string]*string{
		"store":      &c.settings.Store,
		"path":       &c.settings.Path,
		"collection": &c.settings.Collection,
		"uri":        &c.settings.URI,
		"database":   &c.settings.Database,
		"comment":    &c.settings.CommentSign,
		"log-level":  &c.settings.Log.Level,
	}
	for name, target := range overrides {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = value
	}

	if err := c.settings.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(c.settings.Log.Level, c.settings.Log.Development)
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func (c *cli) manager(cmd *cobra.Command, editable bool) (*propbind.Manager, error) {
	return c.settings.Builder().
		WithEditable(editable).
		WithLogger(c.logger).
		Build(cmd.Context())
}

func (c *cli) newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.manager(cmd, false)
			if err != nil {
				return err
			}
			if !m.ContainsKey(args[0]) {
				return fmt.Errorf("%w: %q", propbind.ErrKeyNotFound, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Lookup(args[0]))
			return nil
		},
	}
}

func (c *cli) newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Replace the value of an existing key and save the store",
		Long: `Replace the value of an existing key. The new value is parsed with the
store's inference rules and must have the same kind as the stored value.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.manager(cmd, true)
			if err != nil {
				return err
			}
			if err := setParsed(m, args[0], propbind.ParseValue(args[1])); err != nil {
				return err
			}
			if err := m.Save(cmd.Context()); err != nil {
				return err
			}
			c.logger.Info("Property updated", zap.String("key", args[0]))
			return nil
		},
	}
}

// setParsed dispatches v to SetValue with the Go type of its kind.
func setParsed(m *propbind.Manager, key string, v propbind.Value) error {
	switch v.Kind() {
	case propbind.KindInt:
		i, _ := v.Int()
		return propbind.SetValue(m, key, i)
	case propbind.KindFloat:
		f, _ := v.Float()
		return propbind.SetValue(m, key, f)
	case propbind.KindBool:
		b, _ := v.Bool()
		return propbind.SetValue(m, key, b)
	default:
		s, _ := v.Str()
		return propbind.SetValue(m, key, s)
	}
}

func (c *cli) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all entries of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := c.manager(cmd, false)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Options(
				tablewriter.WithHeader([]string{"Path", "Kind", "Value", "Flags"}),
				tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
			)
			for _, e := range m.Entries() {
				if e.Passthrough {
					continue
				}
				if err := table.Append([]string{
					e.Path,
					e.Kind().String(),
					propbind.FormatValue(e.Value),
					entryFlags(e),
				}); err != nil {
					return fmt.Errorf("failed to append row: %w", err)
				}
			}
			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}
			return nil
		},
	}
}

func entryFlags(e propbind.Entry) string {
	var flags []string
	if e.IsStatic {
		flags = append(flags, "static")
	}
	if e.IsField {
		flags = append(flags, "field")
	}
	return strings.Join(flags, " ")
}

func (c *cli) newFmtCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt",
		Short: "Rewrite the store in canonical form",
		Long: `Load the store and save it back unchanged. Property files come out with
one canonical "[static] [field] path = value" line per binding; comments and
blank lines are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := c.manager(cmd, true)
			if err != nil {
				return err
			}
			return m.Save(cmd.Context())
		},
	}
}

func (c *cli) newWatchCommand() *cobra.Command {
	var interval, debounce time.Duration
	var notify bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print keys whose values change in a property file",
		Long: `Poll the property file and print "key = value" for every key that
changes, or "key removed" for keys that disappear. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if propbind.StoreKind(c.settings.Store) != propbind.StoreFile {
				return fmt.Errorf("watch requires the file store, got %q", c.settings.Store)
			}

			ctx := cmd.Context()
			m, err := c.manager(cmd, false)
			if err != nil {
				return err
			}

			opts := propbind.DefaultWatchOptions()
			opts.PollInterval = interval
			opts.Debounce = debounce
			opts.Notify = notify
			opts.Logger = c.logger
			events, err := propbind.WatchFile(ctx, c.settings.Path, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for ev := range events {
				if ev.Kind != propbind.FileModified {
					c.logger.Warn("Property file event",
						zap.String("path", ev.Path),
						zap.Stringer("change", ev.Kind))
					continue
				}

				before := m.Entries()
				if err := m.Reload(ctx); err != nil {
					c.logger.Warn("Reload failed", zap.String("path", ev.Path), zap.Error(err))
					continue
				}
				for _, key := range propbind.ChangedKeys(before, m.Entries()) {
					if m.ContainsKey(key) {
						fmt.Fprintf(out, "%s = %s\n", key, m.Lookup(key))
					} else {
						fmt.Fprintf(out, "%s removed\n", key)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", propbind.DefaultPollInterval, "file poll interval")
	cmd.Flags().DurationVar(&debounce, "debounce", propbind.DefaultDebounce, "quiet period before a change is reported")
	cmd.Flags().BoolVar(&notify, "notify", true, "also react to filesystem notifications between polls")
	return cmd
}
