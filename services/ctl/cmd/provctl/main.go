package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"provsync/pkg/content"
	"provsync/pkg/provisioner"
	gos3 "provsync/pkg/s3"
	"provsync/services/ctl"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	instance   string
}

func (f *rootFlags) client() (*provisioner.Client, ctl.Config, error) {
	cfg, err := ctl.Load(f.configPath, f.instance)
	if err != nil {
		return nil, ctl.Config{}, err
	}
	client, err := provisioner.New(cfg.URL, cfg.Token)
	if err != nil {
		return nil, ctl.Config{}, err
	}
	return client, cfg, nil
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "provctl",
		Short:         "Drive a provisioner inventory from automation pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to the config file (default "+ctl.DefaultPath+")")
	cmd.PersistentFlags().StringVar(&flags.instance, "instance", "", "Named provisioner instance from the config file")

	cmd.AddCommand(newMachineIPCommand(flags))
	cmd.AddCommand(newNetbootCommand(flags))
	cmd.AddCommand(newPreseedCommand(flags))
	return cmd
}

func newMachineIPCommand(flags *rootFlags) *cobra.Command {
	var iface string

	cmd := &cobra.Command{
		Use:   "machine-ip <machine-name>",
		Short: "Print the effective IPv4 address of a machine's interface",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := flags.client()
			if err != nil {
				return err
			}
			if iface == "" {
				iface = cfg.Interface
			}

			ctx := commandContext(cmd)
			machine, err := client.LookupMachine(ctx, args[0])
			if err != nil {
				return err
			}
			ip, err := client.MachineIPv4(ctx, machine.ID, iface)
			if err != nil {
				return err
			}

			return printJSON(map[string]any{
				"machine_id": machine.ID,
				"name":       machine.Name,
				"ip":         ip,
			})
		},
	}

	cmd.Flags().StringVar(&iface, "interface", "", "Interface to read (default "+provisioner.DefaultInterface+")")
	return cmd
}

func newNetbootCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "netboot",
		Short: "Netboot flag operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newNetbootDisableCommand(flags))
	return cmd
}

func newNetbootDisableCommand(flags *rootFlags) *cobra.Command {
	var delaySeconds int

	cmd := &cobra.Command{
		Use:   "disable <machine-name>",
		Short: "Clear a machine's netboot flag after a delay",
		Long: "Clears the netboot flag after waiting the configured delay, so a machine\n" +
			"mid-netboot finishes before the flag goes away. The wait blocks; interrupt\n" +
			"the process to abort before the update is sent.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if delaySeconds < 0 {
				return errors.New("--delay must not be negative")
			}

			client, _, err := flags.client()
			if err != nil {
				return err
			}

			machine, err := client.DisableNetbootAfter(commandContext(cmd), args[0], time.Duration(delaySeconds)*time.Second)
			if err != nil {
				return err
			}

			return printJSON(map[string]any{
				"machine_id":      machine.ID,
				"name":            machine.Name,
				"netboot_enabled": machine.NetbootEnabled,
			})
		},
	}

	cmd.Flags().IntVar(&delaySeconds, "delay", 300, "Seconds to wait before clearing the flag")
	return cmd
}

func newPreseedCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preseed",
		Short: "Preseed reconciliation operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newPreseedUpsertCommand(flags))
	return cmd
}

func newPreseedUpsertCommand(flags *rootFlags) *cobra.Command {
	var (
		location    string
		discover    bool
		preseedType string
		description string
		knownGood   bool
		public      bool
	)

	cmd := &cobra.Command{
		Use:   "upsert <preseed-name>",
		Short: "Create or update a preseed from a file or object store",
		Long: "Reconciles the named preseed: creates it when absent, replaces it when\n" +
			"present. With --discover no content is uploaded and the existing resource\n" +
			"is printed as-is. --from accepts a local path or an s3://bucket/key URI.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if discover == (location != "") {
				return errors.New("exactly one of --from or --discover is required")
			}

			client, _, err := flags.client()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			var body *string
			if !discover {
				source, err := resolveSource(location)
				if err != nil {
					return err
				}
				text, err := source.Read(ctx)
				if err != nil {
					return err
				}
				body = &text
			}

			preseed, outcome, err := client.UpsertPreseed(ctx, provisioner.PreseedParams{
				Name:        args[0],
				Type:        preseedType,
				Content:     body,
				Description: description,
				KnownGood:   knownGood,
				Public:      public,
			})
			if err != nil {
				return err
			}

			return printJSON(map[string]any{
				"preseed": preseed,
				"outcome": outcome,
			})
		},
	}

	cmd.Flags().StringVar(&location, "from", "", "Content location: local path or s3://bucket/key")
	cmd.Flags().BoolVar(&discover, "discover", false, "Only look up the existing preseed, never write")
	cmd.Flags().StringVar(&preseedType, "type", "preseed", "Preseed type")
	cmd.Flags().StringVar(&description, "description", "", "Preseed description")
	cmd.Flags().BoolVar(&knownGood, "known-good", false, "Mark the preseed known good")
	cmd.Flags().BoolVar(&public, "public", false, "Mark the preseed public")
	return cmd
}

// resolveSource builds the content source, dialling the object store only
// when the location actually needs it.
func resolveSource(location string) (*content.Source, error) {
	var fetcher content.Fetcher
	if strings.HasPrefix(location, "s3://") {
		client, err := gos3.NewClientFromEnv()
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		fetcher = client
	}
	return content.Resolve(location, fetcher)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
