// slipbarctl controls a running slipbar instance: it sends commands over the
// websocket bridge when one is listening, falls back to the command file
// otherwise, and reads the published status snapshot.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/slipbar/slipbar/internal/autoupdate"
	"github.com/slipbar/slipbar/internal/bridge"
	"github.com/slipbar/slipbar/internal/config"
	"github.com/slipbar/slipbar/internal/ipc"
	"github.com/slipbar/slipbar/internal/layout"
)

const (
	githubOwner = "slipbar"
	githubRepo  = "slipbar"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

var bridgeAddr string

var rootCmd = &cobra.Command{
	Use:   "slipbarctl",
	Short: "Control a running Slipbar instance",
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current section and feature state",
	Run: func(cmd *cobra.Command, args []string) {
		asJSON, _ := cmd.Flags().GetBool("json")

		status, err := ipc.ReadStatus()
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("No status available. Is slipbar running?")
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Error reading status: %v\n", err)
			os.Exit(1)
		}

		if asJSON {
			out, _ := json.MarshalIndent(status, "", "  ")
			fmt.Println(string(out))
			return
		}
		printStatus(status)
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the hidden section",
	Run: func(cmd *cobra.Command, args []string) {
		alwaysHidden, _ := cmd.Flags().GetBool("always-hidden")
		if alwaysHidden {
			sendCommand(ipc.CmdShowAlwaysHidden)
			return
		}
		sendCommand(ipc.CmdShow)
	},
}

var hideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide the hidden section (and the always-hidden section with it)",
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.CmdHide)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle the hidden section",
	Run: func(cmd *cobra.Command, args []string) {
		alwaysHidden, _ := cmd.Flags().GetBool("always-hidden")
		if alwaysHidden {
			sendCommand(ipc.CmdToggleAlwaysHidden)
			return
		}
		sendCommand(ipc.CmdToggle)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Suspend event handling (hover, click, scroll, rehide)",
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.CmdPause)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume event handling",
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.CmdResume)
	},
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Shut the running slipbar instance down",
	Run: func(cmd *cobra.Command, args []string) {
		sendCommand(ipc.CmdQuit)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live status updates from the bridge",
	Run: func(cmd *cobra.Command, args []string) {
		addr := resolveBridgeAddr()
		if addr == "" {
			fmt.Fprintln(os.Stderr, "The bridge is disabled (bridge_listen_addr is empty)")
			os.Exit(1)
		}
		client, err := bridge.Dial(addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to %s: %v\n", addr, err)
			fmt.Fprintln(os.Stderr, "Is slipbar running with the bridge enabled?")
			os.Exit(1)
		}
		defer client.Close()

		fmt.Printf("Watching %s (Ctrl-C to stop)\n\n", addr)
		for {
			snap, err := client.Next()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Stream closed: %v\n", err)
				os.Exit(1)
			}
			printStatus(&snap)
			fmt.Println("---")
		}
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Export or import the menu bar layout as YAML",
}

var layoutExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the current layout to a YAML file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings()
		if err := layout.Export(args[0], layout.FromSettings(settings)); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Layout written to %s\n", args[0])
	},
}

var layoutImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Apply a layout file to the settings (the app reloads live)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		l, err := layout.Import(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
		settings, err := l.ToSettings()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Layout rejected: %v\n", err)
			os.Exit(1)
		}
		path, err := config.Path()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := config.Save(path, settings); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save settings: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Layout applied; settings written to %s\n", path)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("slipbarctl version %s\n", Version)
	},
}

var versionCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check GitHub for a newer release",
	Run: func(cmd *cobra.Command, args []string) {
		preRelease, _ := cmd.Flags().GetBool("pre-release")

		checker := autoupdate.NewChecker(githubOwner, githubRepo, Version)
		if preRelease {
			checker.SetChannel(autoupdate.ChannelPrerelease)
		}
		fmt.Println("Checking for updates...")
		available, release, err := checker.IsUpdateAvailable()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error checking for updates: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Current version: %s\n", Version)
		if available {
			fmt.Printf("Latest version:  %s\n", release.TagName)
			fmt.Printf("\nUpdate available: %s\n", release.HTMLURL)
		} else {
			fmt.Println("\nYou are running the latest version")
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&bridgeAddr, "addr", "", "bridge address (default: bridge_listen_addr from settings)")

	statusCmd.Flags().Bool("json", false, "print the raw status snapshot")
	showCmd.Flags().Bool("always-hidden", false, "target the always-hidden section")
	toggleCmd.Flags().Bool("always-hidden", false, "target the always-hidden section")
	versionCheckCmd.Flags().Bool("pre-release", false, "include pre-release versions")

	layoutCmd.AddCommand(layoutExportCmd)
	layoutCmd.AddCommand(layoutImportCmd)
	versionCmd.AddCommand(versionCheckCmd)

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(quitCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(versionCmd)
}

// sendCommand delivers cmd over the bridge when one is reachable, falling
// back to the command file the app polls.
func sendCommand(cmd ipc.Command) {
	if addr := resolveBridgeAddr(); addr != "" {
		if client, err := bridge.Dial(addr); err == nil {
			defer client.Close()
			if err := client.Send(cmd); err == nil {
				fmt.Printf("Sent %q via bridge\n", cmd)
				return
			}
		}
	}
	if err := ipc.WriteCommand(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to queue command: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Queued %q\n", cmd)
}

// resolveBridgeAddr prefers the --addr flag, then the settings file.
func resolveBridgeAddr() string {
	if bridgeAddr != "" {
		return bridgeAddr
	}
	return loadSettings().BridgeListenAddr
}

func loadSettings() config.Settings {
	path, err := config.Path()
	if err != nil {
		return config.DefaultSettings()
	}
	settings, err := config.Load(path)
	if err != nil {
		return config.DefaultSettings()
	}
	return settings
}

func printStatus(status *ipc.StatusSnapshot) {
	fmt.Printf("Updated:  %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Events:   %s\n", onOff(status.EventsEnabled, "enabled", "paused"))
	if status.Dragging {
		fmt.Println("Dragging: yes")
	}

	names := make([]string, 0, len(status.Sections))
	for name := range status.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("Sections:")
	for _, name := range names {
		s := status.Sections[name]
		state := "shown"
		if s.Hidden {
			state = "hidden"
		}
		if !s.Enabled {
			state = "disabled"
		}
		fmt.Printf("  %-15s %s\n", name, state)
	}

	fmt.Printf("Features: hover=%s click=%s scroll=%s rehide=%s",
		onOff(status.ShowOnHover, "on", "off"),
		onOff(status.ShowOnClick, "on", "off"),
		onOff(status.ShowOnScroll, "on", "off"),
		onOff(status.AutoRehide, "on", "off"))
	if status.AutoRehide && status.Strategy != "" {
		fmt.Printf(" (%s)", status.Strategy)
	}
	fmt.Println()

	if status.LastAction != "" {
		fmt.Printf("Last action: %s\n", status.LastAction)
	}
	if status.LastError != "" {
		fmt.Printf("Last error:  %s\n", status.LastError)
	}
}

func onOff(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
