package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/tabula/internal/adapters/host"
	"github.com/hylla/tabula/internal/adapters/server"
	"github.com/hylla/tabula/internal/adapters/server/common"
	"github.com/hylla/tabula/internal/adapters/storage/csvfile"
	"github.com/hylla/tabula/internal/adapters/storage/sqlite"
	"github.com/hylla/tabula/internal/app"
	"github.com/hylla/tabula/internal/config"
	"github.com/hylla/tabula/internal/platform"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// defaultListenAddr defines the localhost-first host listener default.
const defaultListenAddr = "tcp://127.0.0.1:7411"

// main handles main.
func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(version),
	); err != nil {
		os.Exit(1)
	}
}

// rootFlags holds the persistent flag values shared by every subcommand.
type rootFlags struct {
	configPath string
	appName    string
	devMode    bool
	dbPath     string
}

// daemonEnv bundles the resolved runtime state subcommands operate on.
type daemonEnv struct {
	appName    string
	devMode    bool
	configPath string
	dbPath     string
	socketPath string
	cfg        config.Config
	logger     *charmLog.Logger
}

// newRootCommand builds the tabulad command tree.
func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TABULAD_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultAppName := "tabula"
	if envApp := strings.TrimSpace(os.Getenv("TABULAD_APP_NAME")); envApp != "" {
		defaultAppName = envApp
	}

	root := &cobra.Command{
		Use:           "tabulad",
		Short:         "Table host daemon for the tabula grid client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&flags.appName, "app", defaultAppName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&flags.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "path to sqlite database")

	root.AddCommand(
		newServeCommand(flags),
		newImportCommand(flags),
		newExportCommand(flags),
		newSheetsCommand(flags),
	)
	return root
}

// resolveDaemonEnv loads paths, config, and the runtime logger for one command run.
func resolveDaemonEnv(flags *rootFlags, stderr io.Writer) (*daemonEnv, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(flags.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TABULAD_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
			if err := config.EnsureConfigDir(configPath); err != nil {
				return nil, fmt.Errorf("ensure config dir: %w", err)
			}
		}
	}
	dbPath := strings.TrimSpace(flags.dbPath)
	if dbPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TABULAD_DB_PATH")); envPath != "" {
			dbPath = envPath
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(defaultListenAddr))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}

	level, err := charmLog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Logging.Level, err)
	}
	logger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          "tabulad",
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	return &daemonEnv{
		appName:    flags.appName,
		devMode:    flags.devMode,
		configPath: configPath,
		dbPath:     dbPath,
		socketPath: paths.SocketPath,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// openRepo opens the sqlite repository behind the resolved database path.
func openRepo(env *daemonEnv) (*sqlite.Repository, error) {
	env.logger.Info("opening sqlite repository", "db_path", env.dbPath)
	repo, err := sqlite.Open(env.dbPath)
	if err != nil {
		env.logger.Error("sqlite open failed", "db_path", env.dbPath, "err", err)
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	return repo, nil
}

// newServeCommand builds the host listener command.
func newServeCommand(flags *rootFlags) *cobra.Command {
	var (
		listenAddr string
		csvPath    string
		sheetName  string
		httpBind   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen for grid clients and serve one sheet over the host protocol",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := resolveDaemonEnv(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), env, serveOptions{
				listenAddr: resolveListenAddr(listenAddr, env.cfg.Host.Listen, env.socketPath),
				csvPath:    strings.TrimSpace(csvPath),
				sheetName:  sheetName,
				httpBind:   strings.TrimSpace(httpBind),
			})
		},
	}
	cmd.Flags().StringVar(&listenAddr, "listen", "", `listen address (tcp://host:port, unix:///path, or "unix" for the per-app socket)`)
	cmd.Flags().StringVar(&csvPath, "csv", "", "serve one CSV file instead of the sqlite store")
	cmd.Flags().StringVar(&sheetName, "sheet", "default", "sheet name to bind when serving from sqlite")
	cmd.Flags().StringVar(&httpBind, "http", "", "bind address for the REST/MCP admin surface (sqlite store only)")
	return cmd
}

// serveOptions carries resolved serve-mode settings.
type serveOptions struct {
	listenAddr string
	csvPath    string
	sheetName  string
	httpBind   string
}

// runServe wires the store, the host listener, and the optional admin surface.
func runServe(ctx context.Context, env *daemonEnv, opts serveOptions) error {
	var (
		store    host.Store
		sheetSvc common.SheetService
	)
	if opts.csvPath != "" {
		if opts.httpBind != "" {
			return errors.New("the admin surface requires the sqlite store; drop --csv or --http")
		}
		env.logger.Info("serving csv-backed sheet", "csv_path", opts.csvPath)
		store = csvfile.NewStore(opts.csvPath)
	} else {
		repo, err := openRepo(env)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := repo.Close(); closeErr != nil {
				env.logger.Warn("sqlite close failed", "db_path", env.dbPath, "err", closeErr)
			}
		}()
		env.logger.Info("serving sqlite-backed sheet", "db_path", env.dbPath, "sheet", opts.sheetName)
		store = sqlite.NewSheetStore(repo, opts.sheetName)
		sheetSvc = common.NewRepositoryService(repo)
	}

	network, target, err := parseListenAddr(opts.listenAddr)
	if err != nil {
		return err
	}
	if network == "unix" {
		// A previous unclean shutdown may have left the socket file behind.
		_ = os.Remove(target)
	}
	ln, err := net.Listen(network, target)
	if err != nil {
		return fmt.Errorf("listen on %q: %w", opts.listenAddr, err)
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	env.logger.Info("host listener ready", "network", network, "addr", ln.Addr().String(), "page_size", env.cfg.Host.PageSize)

	connErrCh := make(chan error, 1)
	go func() {
		connErrCh <- serveConnections(ctx, ln, store, env.cfg.Host.PageSize, env.logger)
	}()

	var adminErrCh chan error
	if opts.httpBind != "" {
		adminErrCh = make(chan error, 1)
		env.logger.Info("admin surface starting", "http_bind", opts.httpBind)
		go func() {
			adminErrCh <- server.Run(ctx, server.Config{
				HTTPBind:      opts.httpBind,
				ServerName:    "tabulad",
				ServerVersion: version,
			}, server.Dependencies{Sheets: sheetSvc})
		}()
	}

	select {
	case err := <-connErrCh:
		return err
	case err := <-adminErrCh:
		if err != nil {
			return fmt.Errorf("run admin surface: %w", err)
		}
		return <-connErrCh
	}
}

// serveConnections accepts grid clients until the listener closes.
func serveConnections(ctx context.Context, ln net.Listener, store host.Store, pageSize int, logger *charmLog.Logger) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept host connection: %w", err)
		}
		logger.Info("host connection accepted", "remote", conn.RemoteAddr().String())
		go func() {
			serveErr := host.Serve(ctx, host.NewConn(conn, logger), store, host.ServeOptions{
				PageSize: pageSize,
				Logger:   logger,
			})
			if serveErr != nil {
				logger.Warn("host connection ended with error", "remote", conn.RemoteAddr().String(), "err", serveErr)
				return
			}
			logger.Info("host connection closed", "remote", conn.RemoteAddr().String())
		}()
	}
}

// newImportCommand builds the CSV-to-sqlite import command.
func newImportCommand(flags *rootFlags) *cobra.Command {
	var (
		inPath    string
		sheetName string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV file into the sqlite store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := resolveDaemonEnv(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if strings.TrimSpace(inPath) == "" {
				return errors.New("an input file is required: pass --csv <file>")
			}
			return runImport(cmd.Context(), env, inPath, sheetName, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&inPath, "csv", "", "input CSV file")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "sheet name (defaults to the file name)")
	return cmd
}

// runImport parses one CSV file and upserts it as a named sheet.
func runImport(ctx context.Context, env *daemonEnv, inPath, sheetName string, stdout io.Writer) error {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	if strings.TrimSpace(sheetName) == "" {
		base := filepath.Base(inPath)
		sheetName = strings.TrimSuffix(base, filepath.Ext(base))
	}
	sheet, err := host.SheetFromCSV(sheetName, string(content))
	if err != nil {
		return fmt.Errorf("parse import file: %w", err)
	}

	repo, err := openRepo(env)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			env.logger.Warn("sqlite close failed", "db_path", env.dbPath, "err", closeErr)
		}
	}()

	env.logger.Info("command flow start", "command", "import", "sheet", sheetName, "rows", len(sheet.Rows))
	if err := repo.SaveSheet(ctx, sheet, string(content)); err != nil {
		env.logger.Error("command flow failed", "command", "import", "sheet", sheetName, "err", err)
		return fmt.Errorf("save imported sheet: %w", err)
	}
	env.logger.Info("command flow complete", "command", "import", "sheet", sheetName)
	_, _ = fmt.Fprintf(stdout, "imported %s (%d rows, %d columns)\n", sheetName, len(sheet.Rows), len(sheet.Header))
	return nil
}

// newExportCommand builds the sqlite-to-CSV export command.
func newExportCommand(flags *rootFlags) *cobra.Command {
	var (
		sheetName string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one stored sheet as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := resolveDaemonEnv(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if strings.TrimSpace(sheetName) == "" {
				return errors.New("a sheet name is required: pass --sheet <name>")
			}
			return runExport(cmd.Context(), env, sheetName, outPath, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&sheetName, "sheet", "", "sheet name to export")
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

// runExport serializes one stored sheet, header row first.
func runExport(ctx context.Context, env *daemonEnv, sheetName, outPath string, stdout io.Writer) error {
	repo, err := openRepo(env)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			env.logger.Warn("sqlite close failed", "db_path", env.dbPath, "err", closeErr)
		}
	}()

	env.logger.Info("command flow start", "command", "export", "sheet", sheetName)
	sheet, err := repo.LoadSheet(ctx, sheetName)
	if err != nil {
		env.logger.Error("command flow failed", "command", "export", "sheet", sheetName, "err", err)
		return fmt.Errorf("load sheet %q: %w", sheetName, err)
	}
	records := make([][]string, 0, len(sheet.Rows)+1)
	records = append(records, sheet.Header)
	records = append(records, sheet.Rows...)
	csvText, err := app.MarshalCSV(records)
	if err != nil {
		return fmt.Errorf("serialize sheet %q: %w", sheetName, err)
	}

	if outPath == "-" {
		if _, err := io.WriteString(stdout, csvText); err != nil {
			return fmt.Errorf("write csv to stdout: %w", err)
		}
		env.logger.Info("command flow complete", "command", "export", "sheet", sheetName)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(csvText), 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	env.logger.Info("command flow complete", "command", "export", "sheet", sheetName, "out", outPath)
	return nil
}

// newSheetsCommand builds the stored-sheet listing command.
func newSheetsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "List stored sheets with their dimensions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := resolveDaemonEnv(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			repo, err := openRepo(env)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := repo.Close(); closeErr != nil {
					env.logger.Warn("sqlite close failed", "db_path", env.dbPath, "err", closeErr)
				}
			}()

			summaries, err := common.NewRepositoryService(repo).ListSheets(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sheets: %w", err)
			}
			for _, summary := range summaries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows\t%d columns\n", summary.Name, summary.Rows, summary.Cols)
			}
			return nil
		},
	}
}

// resolveListenAddr picks the serve listener address: flag first, then
// config, then the localhost tcp default. The bare literal "unix" selects
// the per-app socket under the data dir.
func resolveListenAddr(flagAddr, cfgAddr, socketPath string) string {
	addr := strings.TrimSpace(flagAddr)
	if addr == "" {
		addr = strings.TrimSpace(cfgAddr)
	}
	switch addr {
	case "":
		return defaultListenAddr
	case "unix":
		return "unix://" + socketPath
	default:
		return addr
	}
}

// parseListenAddr splits a listen address into a network and target.
func parseListenAddr(addr string) (network, target string, err error) {
	addr = strings.TrimSpace(addr)
	if rest, ok := strings.CutPrefix(addr, "unix://"); ok {
		return "unix", rest, nil
	}
	if rest, ok := strings.CutPrefix(addr, "tcp://"); ok {
		return "tcp", rest, nil
	}
	if addr == "" {
		return "", "", errors.New("a listen address is required")
	}
	return "tcp", addr, nil
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
