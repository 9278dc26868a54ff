package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clawbridge/internal/app"
)

type ExitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ex, ok := err.(ExitCoder); ok {
			os.Exit(ex.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var jsonOutput bool

	newSvc := func() (*app.Service, error) {
		return app.New(app.Options{ConfigPath: configPath})
	}

	cmd := &cobra.Command{
		Use:           "clawbridge",
		Short:         "Channel-plugin bridge for OpenClaw agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(newChannelsCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newRunCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newEnsureCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newSecretsCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newDoctorCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newAuditCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newVersionCmd(newSvc, &jsonOutput))

	return cmd
}

func newChannelsCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	channelsCmd := &cobra.Command{Use: "channels", Aliases: []string{"ch", "channel"}, Short: "Manage channel plugins"}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List enabled channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			defer svc.Close()
			names := svc.ChannelNames()
			if *jsonOutput {
				return print(true, names, "")
			}
			if len(names) == 0 {
				fmt.Println("no channels enabled")
				return nil
			}
			for _, name := range names {
				fmt.Printf("- %s\n", name)
			}
			return nil
		},
	}

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe channel availability without connecting",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			defer svc.Close()
			probes, err := svc.ProbeChannels(cmd.Context())
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(true, probes, "")
			}
			for _, p := range probes {
				status := color.GreenString("available")
				if !p.Available {
					status = color.RedString("unavailable")
					if p.Message != "" {
						status += " (" + p.Message + ")"
					}
				}
				fmt.Printf("- %s: %s\n", p.Name, status)
			}
			return nil
		},
	}

	channelsCmd.AddCommand(listCmd, probeCmd)
	return channelsCmd
}

func newRunCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var channelName string
	var echo bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a channel's event loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if channelName == "" {
				return &exitError{code: 2, msg: "--channel is required"}
			}
			svc, err := newSvc()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := svc.ChannelRun(ctx, channelName, echo); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&channelName, "channel", "", "channel to run (e.g. slack)")
	cmd.Flags().BoolVar(&echo, "echo", false, "echo inbound messages back to their thread")
	return cmd
}

func newEnsureCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var command string
	var expect string
	var dir string
	var noInstall bool
	var checkOnly bool
	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Ensure the acpx helper is installed at the expected version",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			defer svc.Close()
			if command != "" {
				svc.Config.Acpx.Command = command
			}
			if expect != "" {
				svc.Config.Acpx.ExpectedVersion = expect
			}
			if dir != "" {
				svc.Config.Acpx.InstallDir = dir
			}
			if noInstall {
				allowed := false
				svc.Config.Acpx.InstallAllowed = &allowed
			}

			if checkOnly {
				res, err := svc.AcpxCheck(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return print(true, res, "")
				}
				if res.OK {
					fmt.Printf("%s %s\n", svc.Config.Acpx.Command, res.Version)
					return nil
				}
				fmt.Printf("%s: %s\nrun: %s\n", color.RedString(string(res.Reason)), res.Message, res.InstallCommand)
				return nil
			}

			res, err := svc.EnsureAcpx(cmd.Context())
			if err != nil {
				return err
			}
			return print(*jsonOutput, res, fmt.Sprintf("%s %s ready", svc.Config.Acpx.Command, res.Version))
		},
	}
	cmd.Flags().StringVar(&command, "command", "", "helper command to probe (default from config)")
	cmd.Flags().StringVar(&expect, "expect", "", "expected exact version")
	cmd.Flags().StringVar(&dir, "dir", "", "working directory for probes and installs")
	cmd.Flags().BoolVar(&noInstall, "no-install", false, "fail instead of installing")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "probe only, never install")
	return cmd
}

func newSecretsCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	secretsCmd := &cobra.Command{Use: "secrets", Aliases: []string{"sec"}, Short: "Manage the bridge secrets store"}

	validateCmd := &cobra.Command{
		Use:   "validate <plan>",
		Short: "Validate a secrets apply plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			defer svc.Close()
			plan, err := svc.SecretsValidate(args[0])
			if err != nil {
				return err
			}
			return print(*jsonOutput, plan, fmt.Sprintf("plan is valid: %d secrets", len(plan.Secrets)))
		},
	}

	var dryRun bool
	applyCmd := &cobra.Command{
		Use:   "apply <plan>",
		Short: "Resolve a plan and write the secrets store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			defer svc.Close()
			result, err := svc.SecretsApply(args[0], dryRun)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("applied %d secrets to %s", len(result.Applied), result.StorePath)
			if result.DryRun {
				msg = fmt.Sprintf("dry run: %d secrets would be applied to %s", len(result.Applied), result.StorePath)
			}
			return print(*jsonOutput, result, msg)
		},
	}
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve the plan without writing the store")

	secretsCmd.AddCommand(validateCmd, applyCmd)
	return secretsCmd
}

func newDoctorCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"diag", "checkup"},
		Short:   "Run diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			defer svc.Close()
			report := svc.DoctorRun(cmd.Context())
			if *jsonOutput {
				return print(true, report, "")
			}
			if report.Healthy {
				fmt.Println(color.GreenString("healthy"))
			} else {
				fmt.Println(color.RedString("issues found:"))
			}
			for _, f := range report.Findings {
				label := color.YellowString(f.Code)
				if f.Level == "error" {
					label = color.RedString(f.Code)
				}
				fmt.Printf("- [%s] %s\n", label, f.Message)
			}
			return nil
		},
	}
}

func newAuditCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit events",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			defer svc.Close()
			events, err := svc.AuditTail(limit)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(true, events, "")
			}
			if len(events) == 0 {
				fmt.Println("no audit events")
				return nil
			}
			for _, ev := range events {
				fmt.Printf("%s %s/%s %s %s\n", ev.Timestamp, ev.Operation, ev.Phase, ev.Status, ev.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of events to show")
	return cmd
}

func print(jsonOutput bool, payload any, message string) error {
	if jsonOutput {
		blob, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(blob))
		return nil
	}
	if message != "" {
		fmt.Println(message)
	}
	return nil
}
