package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/tabula/internal/adapters/clipboard"
	"github.com/hylla/tabula/internal/adapters/host"
	"github.com/hylla/tabula/internal/adapters/storage/csvfile"
	"github.com/hylla/tabula/internal/config"
	"github.com/hylla/tabula/internal/platform"
	"github.com/hylla/tabula/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("tabula", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath  string
		appName     string
		devMode     bool
		showVer     bool
		connectAddr string
		csvPath     string
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TABULA_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("TABULA_APP_NAME")); envApp != "" {
		appName = envApp
	} else {
		appName = "tabula"
	}
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	fs.StringVar(&connectAddr, "connect", "", "host address to dial (tcp://host:port or unix:///path)")
	fs.StringVar(&csvPath, "csv", "", "CSV file to open with an in-process host")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "tabula %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return err
	}

	command := firstArg(fs.Args())
	switch command {
	case "paths":
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
		_, _ = fmt.Fprintf(stdout, "socket: %s\n", paths.SocketPath)
		return nil
	case "":
		// Continue.
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TABULA_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
			if err := config.EnsureConfigDir(configPath); err != nil {
				return fmt.Errorf("ensure config dir: %w", err)
			}
		}
	}

	cfg, err := config.Load(configPath, config.Default(""))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if strings.TrimSpace(connectAddr) == "" {
		connectAddr = cfg.Host.Dial
	}

	csvPath = strings.TrimSpace(csvPath)
	connectAddr = strings.TrimSpace(connectAddr)
	switch {
	case csvPath != "" && connectAddr != "":
		return fmt.Errorf("-csv and -connect are mutually exclusive")
	case csvPath == "" && connectAddr == "":
		return fmt.Errorf("a table source is required: pass -csv <file> or -connect <addr>")
	}

	logger, err := newRuntimeLogger(stderr, appName, devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the grid is active.
	logger.SetConsoleEnabled(false)
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "csv", csvPath, "connect", connectAddr)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir)
	logger.Info("configuration loaded", "config_path", configPath, "page_size", cfg.Host.PageSize, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var rwc io.ReadWriteCloser
	if csvPath != "" {
		clientEnd, serverEnd := net.Pipe()
		rwc = clientEnd
		store := csvfile.NewStore(csvPath)
		logger.Info("starting in-process host", "csv_path", csvPath)
		go func() {
			serveErr := host.Serve(ctx, host.NewConn(serverEnd, logger.FileSink()), store, host.ServeOptions{
				PageSize: cfg.Host.PageSize,
				Logger:   logger.FileSink(),
			})
			if serveErr != nil {
				logger.Error("in-process host terminated", "csv_path", csvPath, "err", serveErr)
			}
		}()
	} else {
		network, target := parseHostAddr(connectAddr)
		logger.Info("dialing host", "network", network, "addr", target)
		dialConn, dialErr := (&net.Dialer{}).DialContext(ctx, network, target)
		if dialErr != nil {
			logger.Error("host dial failed", "network", network, "addr", target, "err", dialErr)
			return fmt.Errorf("dial host %q: %w", connectAddr, dialErr)
		}
		rwc = dialConn
	}

	conn := host.NewConn(rwc, logger.FileSink())
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("host connection close failed", "err", closeErr)
		}
	}()

	m := tui.NewModel(
		host.NewClient(conn),
		clipboard.NewSystemWriter(stderr),
		tui.WithClipboardChunkSize(cfg.Clipboard.ChunkSize),
		tui.WithCopyFlash(time.Duration(cfg.Clipboard.FlashMillis)*time.Millisecond),
		tui.WithToastDuration(time.Duration(cfg.UI.ToastMillis)*time.Millisecond),
		tui.WithPlaceholder(cfg.UI.Placeholder),
		tui.WithMaxColumnWidth(cfg.UI.MaxColumnWidth),
		tui.WithKeyOverrides(tui.KeyConfig{
			EditMode:   cfg.Keys.EditMode,
			ToggleView: cfg.Keys.ToggleView,
			SelectAll:  cfg.Keys.SelectAll,
			Copy:       cfg.Keys.Copy,
			Undo:       cfg.Keys.Undo,
			Redo:       cfg.Keys.Redo,
		}),
		tui.WithLogger(logger.FileSink()),
	)

	p := programFactory(m)
	go func() {
		listenErr := conn.Listen(ctx, func(env host.Envelope) {
			msg, ok := tui.MsgFromEnvelope(env)
			if !ok {
				return
			}
			p.Send(msg)
		})
		p.Send(tui.HostClosedMsg{Err: listenErr})
	}()

	logger.Info("command flow start", "command", "tui")
	if _, err := p.Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// parseHostAddr splits a host address into a dial network and target.
func parseHostAddr(addr string) (network, target string) {
	if rest, ok := strings.CutPrefix(addr, "unix://"); ok {
		return "unix", rest
	}
	if rest, ok := strings.CutPrefix(addr, "tcp://"); ok {
		return "tcp", rest
	}
	return "tcp", addr
}

// firstArg returns the first positional argument, if any.
func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// runtimeLogger fans log events to a styled console sink and an optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	fileSink       *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}

	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	// Keep file output parseable and unstyled while preserving styled console logs.
	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.fileSink = fileLogger
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// FileSink returns a charm logger safe to hand to subsystems while the TUI owns the terminal.
func (l *runtimeLogger) FileSink() *charmLog.Logger {
	if l == nil || l.fileSink == nil {
		return charmLog.New(io.Discard)
	}
	return l.fileSink
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil {
		return false
	}
	if sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Debug(msg, keyvals...)
	}
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Info(msg, keyvals...)
	}
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Warn(msg, keyvals...)
	}
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Error(msg, keyvals...)
	}
}

// devLogFilePath resolves a workspace-local dev log file path for the current run day.
func devLogFilePath(configDir, appName string, now time.Time) (string, error) {
	baseDir := strings.TrimSpace(configDir)
	if baseDir == "" {
		baseDir = ".tabula/log"
	}
	if !filepath.IsAbs(baseDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		baseDir = filepath.Join(workspaceRootFrom(cwd), baseDir)
	}
	fileStem := sanitizeLogFileStem(appName)
	fileName := fmt.Sprintf("%s-%s.log", fileStem, now.Format("20060102"))
	return filepath.Join(filepath.Clean(baseDir), fileName), nil
}

// workspaceRootFrom resolves the nearest ancestor workspace marker for stable local log placement.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" {
		return "."
	}
	dir := start
	for {
		if hasWorkspaceMarker(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// hasWorkspaceMarker reports whether a directory looks like a project workspace root.
func hasWorkspaceMarker(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	return false
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	stem := strings.TrimSpace(appName)
	if stem == "" {
		return "tabula"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem = strings.Trim(replacer.Replace(stem), "-")
	if stem == "" {
		return "tabula"
	}
	return stem
}
