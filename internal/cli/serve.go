package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidframe/frameserver/internal/config"
	"github.com/vidframe/frameserver/internal/daemonctl"
	"github.com/vidframe/frameserver/internal/decode"
	"github.com/vidframe/frameserver/internal/decoderpool"
	"github.com/vidframe/frameserver/internal/docroot"
	"github.com/vidframe/frameserver/internal/fileid"
	"github.com/vidframe/frameserver/internal/framecache"
	"github.com/vidframe/frameserver/internal/pixfmt"
	"github.com/vidframe/frameserver/internal/server"
)

// assumedFrameWidth/Height size the reference frame used to estimate
// bytes-per-cache-line for the startup memory budget warning; actual
// per-line usage depends on the geometries clients actually request.
const (
	assumedFrameWidth  = 1920
	assumedFrameHeight = 1080
)

var (
	serveConfigFlag    string
	servePortFlag      string
	serveListenIPFlag  string
	serveDaemonizeFlag bool
	serveChrootFlag    string
	serveUserFlag      string
	serveGroupFlag     string
	serveCacheSizeFlag int
	serveAllowFlag     []string
	serveFFmpegFlag    string
	serveFrameRateFlag float64
)

func addServeCommand(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve DOCROOT",
		Short: "Start the frame server",
		Long: `Start the HTTP frame server, rooted at DOCROOT.`,
		Args: cobra.ExactArgs(1),
		RunE: runServe,
	}

	flags := cmd.Flags()
	flags.StringVar(&serveConfigFlag, "config", "", "path to a TOML config file (flags override its values)")
	flags.StringVarP(&servePortFlag, "port", "p", "", "listen address, e.g. :8080")
	flags.StringVarP(&serveListenIPFlag, "listenip", "P", "", "bind IP, combined with --port if both set")
	flags.BoolVarP(&serveDaemonizeFlag, "daemonize", "D", false, "run in the background (unsupported: serve exits with an error if set)")
	flags.StringVarP(&serveChrootFlag, "chroot", "c", "", "chroot directory to enter before serving")
	flags.StringVarP(&serveUserFlag, "user", "u", "", "drop privileges to this user after chroot")
	flags.StringVarP(&serveGroupFlag, "group", "g", "", "drop privileges to this group after chroot")
	flags.IntVarP(&serveCacheSizeFlag, "cache-size", "C", 0, "number of cache lines, clamped to [2,8192]")
	flags.StringSliceVar(&serveAllowFlag, "allow", nil, "doublestar glob allow-list; repeatable")
	flags.StringVar(&serveFFmpegFlag, "ffmpeg", "", "path to the ffmpeg binary")
	flags.Float64Var(&serveFrameRateFlag, "framerate", 0, "assumed frame rate for seek math when unknown")

	parent.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// daemonize can't be honored: Go cannot safely fork() once the
	// runtime has started goroutines, so this is a startup error, not a
	// silent no-op or an unsafe fork attempt.
	if serveDaemonizeFlag {
		return fmt.Errorf("frameserver: --daemonize is not supported; run under a process supervisor (systemd, runit, a container) instead")
	}

	cfg := config.Default()
	if serveConfigFlag != "" {
		loaded, err := config.Load(serveConfigFlag)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.DocRoot = args[0]
	applyServeFlagOverrides(&cfg)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))

	root, err := docroot.New(cfg.DocRoot, cfg.Allow)
	if err != nil {
		return fmt.Errorf("frameserver: %w", err)
	}

	if err := (daemonctl.PrivilegeDrop{
		ChrootDir: cfg.Chroot,
		Username:  cfg.Username,
		Groupname: cfg.Groupname,
	}).Apply(); err != nil {
		return fmt.Errorf("frameserver: %w", err)
	}

	if bytesPerLine, err := pixfmt.ByteSize(pixfmt.RGBA32, assumedFrameWidth, assumedFrameHeight); err == nil {
		if err := config.CheckCapacityBudget(cfg.ClampedCapacity(), int64(bytesPerLine), config.MemoryBudgetBytes()); err != nil {
			logger.Warn("configured cache capacity exceeds advisory memory budget", "error", err)
		}
	}

	paths := fileid.NewRegistry()
	cache := framecache.New(func() int64 { return time.Now().Unix() }, logger)
	cache.Resize(cfg.ClampedCapacity())

	pool := decoderpool.New(cfg.ClampedCapacity(), func(_ fileid.ID, s decoderpool.Slot) { s.Close() })
	decoder := decode.FFmpeg{
		Binary:    cfg.FFmpegBin,
		Paths:     paths,
		FrameRate: cfg.FrameRate,
		Pool:      pool,
	}

	handler := &server.Handler{
		Cache:   cache,
		Root:    root,
		Paths:   paths,
		Decoder: &decoder,
		Logger: func(r *http.Request, err error) {
			if err != nil {
				logger.Warn("request", "method", r.Method, "path", r.URL.Path, "error", err)
			}
		},
	}

	logger.Info("frameserver starting", "listen", cfg.Listen, "docroot", cfg.DocRoot, "capacity", cfg.ClampedCapacity())
	return http.ListenAndServe(cfg.Listen, handler)
}

// parseLogLevel maps a config log_level name to a slog.Level,
// defaulting to Info for an empty or unrecognised value.
func parseLogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func applyServeFlagOverrides(cfg *config.Config) {
	if servePortFlag != "" {
		cfg.Listen = servePortFlag
	}
	if serveListenIPFlag != "" {
		cfg.Listen = serveListenIPFlag + cfg.Listen
	}
	if serveChrootFlag != "" {
		cfg.Chroot = serveChrootFlag
	}
	if serveUserFlag != "" {
		cfg.Username = serveUserFlag
	}
	if serveGroupFlag != "" {
		cfg.Groupname = serveGroupFlag
	}
	if serveCacheSizeFlag != 0 {
		cfg.Capacity = serveCacheSizeFlag
	}
	if len(serveAllowFlag) > 0 {
		cfg.Allow = serveAllowFlag
	}
	if serveFFmpegFlag != "" {
		cfg.FFmpegBin = serveFFmpegFlag
	}
	if serveFrameRateFlag != 0 {
		cfg.FrameRate = serveFrameRateFlag
	}
}
