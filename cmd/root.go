package cmd

import (
	"fmt"
	u "net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tanq16/paraget/internal/config"
	"github.com/tanq16/paraget/internal/output"
	"github.com/tanq16/paraget/internal/transfer"
	"github.com/tanq16/paraget/internal/utils"
)

var (
	outputPath    string
	parts         int
	connections   int
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	configPath    string
	noProgress    bool
	debug         bool
)

var rootCmd = &cobra.Command{
	Use:           "paraget [URL] [--parts N] [--output OUTPUT_PATH]",
	Short:         "Paraget downloads a file over HTTP(S) with parallel range requests",
	Version:       utils.ToolVersion,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(os.Stderr, debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(cmd, args[0])
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintErrorChain(err)
		os.Exit(1)
	}
}

func init() {
	addDownloadFlags(rootCmd)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newCleanCmd())
}

// addDownloadFlags binds the download flags to their package variables and
// resets each variable to its default.
func addDownloadFlags(cmd *cobra.Command) {
	defaults := config.Default()
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (defaults to the last URL path segment)")
	cmd.Flags().IntVarP(&parts, "parts", "p", defaults.Parts, "Number of byte ranges to split the download into")
	cmd.Flags().IntVarP(&connections, "connections", "c", defaults.Connections, "Maximum concurrent range requests (0 means one per part, up to 64)")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", defaults.Timeout, "Timeout for connecting and for response headers; body transfers are not bounded (eg. 5s, 10m)")
	cmd.Flags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", defaults.KeepAliveTimeout, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	cmd.Flags().StringVarP(&userAgent, "user-agent", "a", defaults.UserAgent, "User agent")
	cmd.Flags().StringVar(&proxyURL, "proxy", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	cmd.Flags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	cmd.Flags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML file with default settings")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
}

func runDownload(cmd *cobra.Command, rawURL string) error {
	log := utils.GetLogger("cli")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	parsedURL, err := u.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %q", parsedURL.Scheme)
	}
	dest := outputPath
	if dest == "" {
		if dest, err = utils.OutputFromURL(rawURL); err != nil {
			return err
		}
	}

	clientConfig := httpClientConfig(cfg)
	client, err := utils.NewHTTPClient(clientConfig)
	if err != nil {
		return err
	}
	reporter := newProgressReporter(!cfg.NoProgress && term.IsTerminal(int(os.Stdout.Fd())))
	tc := transfer.NewTransferContext(client, rawURL, cfg.UserAgent, reporter)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var coordinator *transfer.Coordinator
	coordinator = transfer.NewCoordinator(tc, dest, transfer.Options{
		Parts:       cfg.Parts,
		Concurrency: cfg.Connections,
		OnStateChange: func(s transfer.State) {
			if s == transfer.StateFetching {
				reporter.Start(coordinator.Info().TotalLength)
			}
		},
	})
	output.PrintInfo(fmt.Sprintf("Downloading %s to %s", rawURL, dest))
	log.Debug().Str("url", rawURL).Str("output", dest).Int("parts", cfg.Parts).Int("connections", cfg.Connections).Str("downloadId", coordinator.ID()).Msg("Initiating download")
	err = coordinator.Run(ctx)
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("download of %s failed: %w", rawURL, err)
	}
	if info := coordinator.Info(); !info.SupportsPartial && cfg.Parts > 1 {
		output.PrintWarning("Server does not accept byte ranges; used a single stream")
	}
	output.PrintSuccess(fmt.Sprintf("Downloaded %s (%s)", dest, utils.FormatBytes(coordinator.Info().TotalLength)))
	return nil
}

// loadConfig layers explicitly set flags over the YAML file over defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, required := configPath, flags.Changed("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return cfg, err
	}
	if flags.Changed("parts") {
		cfg.Parts = parts
	}
	if flags.Changed("connections") {
		cfg.Connections = connections
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("keep-alive-timeout") {
		cfg.KeepAliveTimeout = kaTimeout
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = userAgent
	}
	if flags.Changed("proxy") {
		cfg.Proxy = proxyURL
	}
	if flags.Changed("proxy-username") {
		cfg.ProxyUsername = proxyUsername
	}
	if flags.Changed("proxy-password") {
		cfg.ProxyPassword = proxyPassword
	}
	if flags.Changed("no-progress") {
		cfg.NoProgress = noProgress
	}
	for k, v := range utils.ParseHeaderArgs(headers) {
		cfg.Headers[k] = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func httpClientConfig(cfg config.Config) utils.HTTPClientConfig {
	proxy, username, password := cfg.Proxy, cfg.ProxyUsername, cfg.ProxyPassword
	// Check if proxy URL contains auth
	if parsedProxy, err := u.Parse(proxy); err == nil && parsedProxy.User != nil && username == "" {
		username = parsedProxy.User.Username()
		if p, set := parsedProxy.User.Password(); set {
			password = p
		}
		parsedProxy.User = nil
		proxy = parsedProxy.String()
	}
	inFlight := cfg.Connections
	if inFlight == 0 {
		inFlight = min(cfg.Parts, utils.MaxConnections)
	}
	return utils.HTTPClientConfig{
		Timeout:        cfg.Timeout,
		KATimeout:      cfg.KeepAliveTimeout,
		ProxyURL:       proxy,
		ProxyUsername:  username,
		ProxyPassword:  password,
		Headers:        cfg.Headers,
		HighThreadMode: inFlight > utils.HighThreadThreshold,
	}
}
