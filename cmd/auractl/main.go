package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/dfgitn4j/auractl/internal/models"
	"github.com/dfgitn4j/auractl/internal/version"
	"github.com/dfgitn4j/auractl/pkg/aura"
	"github.com/dfgitn4j/auractl/pkg/config"
	"github.com/dfgitn4j/auractl/pkg/formatter"
	"github.com/dfgitn4j/auractl/pkg/utils"
)

// DefaultConfigFile is the credentials file looked up when --config is
// not given, matching the file name the Aura console examples use.
const DefaultConfigFile = "neo4jConfig.ini"

// DefaultWaitTimeout bounds a pause/resume wait. Aura transitions
// normally finish within a few minutes.
const DefaultWaitTimeout = 30 * time.Minute

var (
	configFile   string
	instanceID   string
	pollInterval time.Duration
	waitTimeout  time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "auractl",
		Short: "CLI tool to control Neo4j Aura instance state",
		Long: `auractl is a CLI tool that pauses and resumes Neo4j Aura instances
through the Aura API and shows instance status in a table format.

Credentials are read from an .ini file ([AURA] section with AURA_API,
AURA_URL, AURA_TOKEN_URL, AURA_API_CLIENT_ID, AURA_CLIENT_SECRET keys);
AURA_* environment variables override file values.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", DefaultConfigFile,
		"path to the Aura credentials .ini file")

	rootCmd.AddCommand(
		newStatusCmd(),
		newStateCmd("pause", aura.StatusPaused),
		newStateCmd("resume", aura.StatusRunning),
		newListCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current status of the instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			_, info, err := connect(ctx)
			if err != nil {
				return err
			}

			formatter.PrintInstanceTable(info)
			return nil
		},
	}

	addInstanceFlag(cmd)
	return cmd
}

func newStateCmd(use, target string) *cobra.Command {
	short := map[string]string{
		"pause":  "Pause a running instance and wait until it is paused",
		"resume": "Resume a paused instance and wait until it is running",
	}[use]

	long := short + "."
	if use == "pause" {
		long += `

Note: there is no check for queries still running on the instance;
pausing interrupts any in-flight workload.`
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, info, err := connect(ctx)
			if err != nil {
				return err
			}

			return changeState(ctx, client, info, target)
		},
	}

	addInstanceFlag(cmd)
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", aura.DefaultPollInterval,
		"delay between status polls while waiting")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", DefaultWaitTimeout,
		"maximum time to wait for the transition (0 waits forever)")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all instances visible to the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			client := aura.NewClient(ctx, cfg)
			instances, err := client.ListInstances(ctx)
			if err != nil {
				return err
			}

			formatter.PrintInstanceList(instances)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("auractl version %s\n", version.Get())
		},
	}
}

// addInstanceFlag registers the instance id override shared by the
// per-instance commands.
func addInstanceFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&instanceID, "instance", "i", "",
		"instance id (default: derived from AURA_URL)")
}

// connect loads credentials, resolves the instance id and fetches the
// initial instance info.
func connect(ctx context.Context) (*aura.Client, *models.InstanceInfo, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}

	client := aura.NewClient(ctx, cfg)

	id := instanceID
	if id == "" {
		id, err = aura.InstanceIDFromURL(cfg.ConnectionURL)
		if err != nil {
			return nil, nil, err
		}
	}

	info, err := client.GetInstance(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return client, info, nil
}

// changeState requests the transition and reports progress and elapsed
// time on the console.
func changeState(ctx context.Context, client *aura.Client, info *models.InstanceInfo, target string) error {
	start := time.Now()
	fmt.Printf("%s : Requesting state change for instance '%s' (id: %s) from '%s' to '%s'\n",
		start.Format(utils.TimestampFormat), info.Name, info.ID, info.Status, target)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" Waiting for instance to become '%s' ...", target)
	s.Color("green")
	s.Start()

	result, err := client.RequestStateChange(ctx, info, target, aura.WaitOptions{
		Interval: pollInterval,
		Timeout:  waitTimeout,
		OnPoll: func(status string) {
			s.Suffix = fmt.Sprintf(" Waiting for instance to become '%s' (currently '%s') ...", target, status)
		},
	})
	s.Stop()
	if err != nil {
		return err
	}

	if !result.Changed {
		fmt.Printf("Instance '%s' (id: %s) is already '%s'.\n", info.Name, info.ID, info.Status)
		return nil
	}

	end := time.Now()
	fmt.Printf("%s : Instance '%s' (id: %s) is now '%s'\n",
		end.Format(utils.TimestampFormat), info.Name, info.ID, info.Status)
	fmt.Printf("Elapsed time to change state %s\n", utils.FormatElapsed(result.Elapsed))

	return nil
}
