//go:build darwin

package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/progrium/darwinkit/macos/appkit"

	"github.com/slipbar/slipbar/internal/autoupdate"
	"github.com/slipbar/slipbar/internal/bridge"
	"github.com/slipbar/slipbar/internal/capture"
	"github.com/slipbar/slipbar/internal/config"
	"github.com/slipbar/slipbar/internal/coordinator"
	"github.com/slipbar/slipbar/internal/diaglog"
	"github.com/slipbar/slipbar/internal/ipc"
	"github.com/slipbar/slipbar/internal/pidfile"
	"github.com/slipbar/slipbar/internal/section"
	"github.com/slipbar/slipbar/pkg/macos"
)

const (
	githubOwner = "slipbar"
	githubRepo  = "slipbar"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=..."
	Version = "dev"

	app      appkit.Application
	dispatch macos.MainDispatcher

	store     *config.Store
	sections  *section.Manager
	coord     *coordinator.Coordinator
	desktop   *macos.Desktop
	panel     *macos.BarPanel
	bridgeSrv *bridge.Server
	diag      *diaglog.Logger

	// alwaysVisibleItem is the app's own icon; its frame feeds the
	// coordinator's suppression checks.
	alwaysVisibleItem *macos.StatusItem

	lastAction string
	lastError  string
)

func main() {
	// --export-diag: read the debug log, write a redacted bundle, exit.
	if len(os.Args) > 1 && os.Args[1] == "--export-diag" {
		diaglog.Version = Version
		path, n, err := diaglog.Export(debugLogPath(), ".")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			if os.IsNotExist(err) {
				fmt.Fprintln(os.Stderr, "hint: run with SLIPBAR_DEBUG_EVENTS=true to enable logging")
				os.Exit(1)
			}
			os.Exit(2)
		}
		fmt.Printf("Wrote: %s (%d lines)\n", path, n)
		os.Exit(0)
	}

	// AppKit requires all GUI work on the main thread.
	runtime.LockOSThread()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC: slipbar crashed: %v", r)
			fmt.Fprintf(os.Stderr, "FATAL: slipbar panicked: %v\n", r)
			os.Exit(1)
		}
	}()

	log.Println("===========================================")
	log.Println("Slipbar starting (version " + Version + ")...")
	log.Printf("PID: %d", os.Getpid())
	log.Printf("Timestamp: %s", time.Now().Format(time.RFC3339))
	log.Println("===========================================")

	pidPath := pidfile.Path("slipbar")
	pf, err := pidfile.Acquire(pidPath)
	if err != nil {
		log.Printf("Failed to acquire PID file: %v", err)
		log.Printf("If you're sure no other instance is running, remove: %s", pidPath)
		os.Exit(1)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to remove PID file: %v", err)
		}
	}()

	diaglog.Version = Version
	diag, err = diaglog.New(debugLogPath())
	if err != nil {
		log.Printf("Warning: could not open diagnostic log: %v (continuing)", err)
		diag = diaglog.NewNoOp()
	}
	defer func() { _ = diag.Close() }()

	// Settings: load, or write the defaults on first run.
	settingsPath, err := config.Path()
	if err != nil {
		log.Printf("Failed to resolve settings path: %v", err)
		os.Exit(1)
	}
	settings, err := config.Load(settingsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to load settings (using defaults): %v", err)
		}
		settings = config.DefaultSettings()
		if err := config.Save(settingsPath, settings); err != nil {
			log.Printf("Warning: failed to write default settings: %v", err)
		}
	}
	store = config.NewStore(settings)
	log.Printf("[STARTUP] Settings loaded from %s", settingsPath)

	// GUI initialization, main thread only from here on.
	log.Println("[STARTUP] Initializing macOS application...")
	app = macos.InitApp()

	// Creation order matters: macOS inserts each new status item to the left
	// of existing ones, so the primary icon goes in first (rightmost), then
	// the hidden divider, then the always-hidden divider (leftmost).
	log.Println("[STARTUP] Creating section control items...")
	alwaysVisibleItem = macos.NewStatusItem(macos.SymbolPrimary)
	hiddenItem := macos.NewStatusItem(macos.SymbolDivider)
	alwaysHiddenItem := macos.NewStatusItem(macos.SymbolDivider)

	sections = section.NewManager(alwaysVisibleItem, hiddenItem, alwaysHiddenItem)
	sections.SetShowsDividers(settings.ShowSectionDividers)
	if !settings.AlwaysHiddenEnabled {
		sections.SetEnabled(section.AlwaysHidden, false)
	}

	desktop = macos.NewDesktop()
	defer desktop.Close()
	panel = macos.NewBarPanel()

	updater := autoupdate.NewChecker(githubOwner, githubRepo, Version)

	menu := macos.NewContextMenu(macos.MenuActions{
		ToggleHidden:       func() { sections.Toggle(section.Hidden); publishStatus("menu_toggle_hidden") },
		ToggleAlwaysHidden: func() { sections.Toggle(section.AlwaysHidden); publishStatus("menu_toggle_always_hidden") },
		ToggleBarPanel:     toggleBarPanel,
		OpenSettings:       func() { openSettings(settingsPath) },
		CheckForUpdates:    func() { go checkForUpdates(updater) },
		Quit:               func() { macos.Terminate(app) },
	})
	alwaysVisibleItem.SetMenu(menu.Menu())

	coord = coordinator.New(coordinator.Config{
		Desktop:      desktop,
		Sections:     sections,
		Settings:     store.Get,
		Factory:      macos.NewSourceFactory(diag),
		Dispatcher:   dispatch,
		Menu:         menu,
		PanelFrame:   panel.Frame,
		OwnIconFrame: alwaysVisibleItem.Frame,
		Log:          diag,
	})

	log.Println("[STARTUP] Installing event sources...")
	coord.PerformSetup()
	defer coord.TearDown()

	// Every section change re-publishes the status file and bridge stream.
	unobserve := sections.Observe(func(section.Name) { publishStatus("section_change") })
	defer unobserve()
	removeDrag := coord.OnDragChanged(func(bool) { publishStatus("drag_change") })
	defer removeDrag()

	if addr := settings.BridgeListenAddr; addr != "" {
		bridgeSrv = bridge.NewServer(func(cmd ipc.Command) {
			dispatch.Dispatch(func() { handleCommand(cmd) })
		}, diag)
		go func() {
			log.Printf("[STARTUP] Bridge listening on %s", addr)
			if err := bridgeSrv.ListenAndServe(addr); err != nil {
				log.Printf("Bridge server stopped: %v", err)
			}
		}()
	}

	publishStatus("initialized")

	log.Println("[STARTUP] Starting command file watcher...")
	go watchCommands()
	log.Println("[STARTUP] Starting settings watcher...")
	go watchSettings(settingsPath)

	// Signal handling: ask AppKit to exit; cleanup runs after Run returns.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("[SHUTDOWN] Received signal %v, terminating...", sig)
		macos.Terminate(app)
	}()

	log.Println("===========================================")
	log.Println("[RUNNING] Slipbar is running")
	log.Println("===========================================")

	macos.Run(app)

	log.Println("[SHUTDOWN] Event loop exited, cleaning up...")
}

func debugLogPath() string {
	if p := os.Getenv("SLIPBAR_LOG_PATH"); p != "" {
		return p
	}
	return "/tmp/slipbar-debug.log"
}

// handleCommand executes one control command. Runs on the main thread.
func handleCommand(cmd ipc.Command) {
	log.Printf("Received command: %s", cmd)
	switch cmd {
	case ipc.CmdShow:
		sections.Show(section.Hidden)
	case ipc.CmdHide:
		sections.Hide(section.Hidden)
	case ipc.CmdToggle:
		sections.Toggle(section.Hidden)
	case ipc.CmdShowAlwaysHidden:
		sections.Show(section.AlwaysHidden)
	case ipc.CmdToggleAlwaysHidden:
		sections.Toggle(section.AlwaysHidden)
	case ipc.CmdPause:
		coord.StopAll()
	case ipc.CmdResume:
		coord.StartAll()
	case ipc.CmdQuit:
		macos.Terminate(app)
		return
	}
	publishStatus("command_" + string(cmd))
}

// publishStatus writes status.json and fans the snapshot out to bridge
// clients. Called from the main thread only.
func publishStatus(action string) {
	lastAction = action
	st := store.Get()

	snap := ipc.StatusSnapshot{
		Sections:      make(map[string]ipc.SectionStatus, 3),
		EventsEnabled: coord.IsEnabled(),
		Dragging:      coord.IsDraggingMenuBarItem(),
		ShowOnHover:   st.ShowOnHover,
		ShowOnClick:   st.ShowOnClick,
		ShowOnScroll:  st.ShowOnScroll,
		AutoRehide:    st.AutoRehide,
		Strategy:      string(st.RehideStrategy),
		LastAction:    lastAction,
		LastError:     lastError,
		Timestamp:     time.Now(),
	}
	for _, name := range section.Names() {
		s := sections.Section(name)
		snap.Sections[name.String()] = ipc.SectionStatus{
			Hidden:  s.IsHidden(),
			Enabled: s.Enabled(),
		}
	}

	if err := ipc.WriteStatus(&snap); err != nil {
		log.Printf("Failed to write status: %v", err)
	}
	if bridgeSrv != nil {
		bridgeSrv.Publish(snap)
	}
}

// toggleBarPanel shows or hides the overflow strip under the menu bar,
// tinted to blend with the wallpaper behind the bar.
func toggleBarPanel() {
	if panel.Visible() {
		panel.Hide()
		publishStatus("bar_panel_hidden")
		return
	}
	screen, ok := desktop.MainScreen()
	if !ok {
		return
	}
	// The strip trailing the primary icon is where the hidden items live;
	// fall back to a fixed width when the icon position is unknown.
	width := 360.0
	primary := sections.Section(section.AlwaysVisible).ControlItem()
	if pos, ok := primary.Position(); ok {
		if w := screen.Frame.MaxX() - pos; w >= 1 {
			width = w
		}
	}
	barStrip := screen.MenuBarFrame()
	if img, err := macos.CaptureRect(barStrip, screen.Frame.Size.Height); err == nil {
		if avg, err := capture.AverageColor(img); err == nil {
			panel.SetTint(avg)
		}
	} else {
		log.Printf("Bar panel tint capture failed: %v", err)
	}
	panel.Show(screen, width)
	publishStatus("bar_panel_shown")
}

func openSettings(path string) {
	if err := exec.Command("open", path).Start(); err != nil {
		log.Printf("Failed to open settings file: %v", err)
	}
}

func checkForUpdates(updater *autoupdate.Checker) {
	available, release, err := updater.IsUpdateAvailable()
	dispatch.Dispatch(func() {
		switch {
		case err != nil:
			lastError = err.Error()
			log.Printf("Update check failed: %v", err)
			publishStatus("update_check_failed")
		case available:
			log.Printf("Update available: %s (%s)", release.TagName, release.HTMLURL)
			publishStatus("update_available_" + release.TagName)
		default:
			log.Printf("Slipbar is up to date (version %s)", Version)
			publishStatus("up_to_date")
		}
	})
}

// watchCommands drains cmd.txt whenever it changes. fsnotify with a polling
// fallback, because the cache directory may live on a filesystem that drops
// events.
func watchCommands() {
	cmdPath := ipc.CommandPath()
	cmdDir := filepath.Dir(cmdPath)
	if err := os.MkdirAll(cmdDir, 0755); err != nil {
		log.Printf("Warning: failed to create command directory: %v", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("fsnotify not available, falling back to polling: %v", err)
		pollCommands(cmdPath)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(cmdDir); err != nil {
		log.Printf("Failed to watch command directory, falling back to polling: %v", err)
		pollCommands(cmdPath)
		return
	}

	log.Println("Command watcher started (using fsnotify)")

	pollTicker := time.NewTicker(1 * time.Second)
	defer pollTicker.Stop()
	lastCheck := time.Now()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				pollCommands(cmdPath)
				return
			}
			if event.Name == cmdPath && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Small delay so the writer finishes before we read.
				time.Sleep(50 * time.Millisecond)
				drainCommand()
				lastCheck = time.Now()
			}

		case <-pollTicker.C:
			if info, err := os.Stat(cmdPath); err == nil && info.ModTime().After(lastCheck) {
				time.Sleep(50 * time.Millisecond)
				drainCommand()
				lastCheck = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				pollCommands(cmdPath)
				return
			}
			log.Printf("Command watcher error: %v", err)
		}
	}
}

func pollCommands(cmdPath string) {
	log.Println("Command watcher started (polling, 1s interval)")
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	lastCheck := time.Now()
	for range ticker.C {
		info, err := os.Stat(cmdPath)
		if err != nil {
			continue
		}
		if info.ModTime().After(lastCheck) {
			time.Sleep(50 * time.Millisecond)
			drainCommand()
			lastCheck = time.Now()
		}
	}
}

func drainCommand() {
	cmd, err := ipc.ReadCommand()
	if err != nil || cmd == "" {
		return
	}
	dispatch.Dispatch(func() { handleCommand(cmd) })
}

// watchSettings live-reloads settings.json. The coordinator reads the store
// on every decision, so most changes take effect with no further plumbing;
// section enablement and dividers are applied explicitly.
func watchSettings(settingsPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("Settings watcher unavailable: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(settingsPath)); err != nil {
		log.Printf("Failed to watch settings directory: %v", err)
		return
	}

	log.Println("Settings watcher started")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != settingsPath || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			time.Sleep(50 * time.Millisecond)
			settings, err := config.Load(settingsPath)
			if err != nil {
				log.Printf("Settings reload failed (keeping previous): %v", err)
				continue
			}
			store.Set(settings)
			dispatch.Dispatch(func() {
				sections.SetShowsDividers(settings.ShowSectionDividers)
				sections.SetEnabled(section.AlwaysHidden, settings.AlwaysHiddenEnabled)
				publishStatus("settings_reloaded")
			})
			log.Println("Settings reloaded")

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Settings watcher error: %v", err)
		}
	}
}
