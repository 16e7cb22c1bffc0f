package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thpox/caltimist/internal/app"
	"github.com/thpox/caltimist/internal/cache"
	"github.com/thpox/caltimist/internal/config"
	"github.com/thpox/caltimist/internal/fetch"
	"github.com/thpox/caltimist/internal/report"
	"github.com/thpox/caltimist/internal/server"
)

var (
	flagYear    int
	flagMonth   int
	flagUser    string
	flagProject string
	flagFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "caltimist",
	Short: "Calendar time statistics",
	Long: `Caltimist fetches ICS calendars over HTTP and aggregates their events
into onsite/remote work hours, vacation days, and billing amounts per
user and project. Timed events become work slots, day events become
vacation, and the user-less public-holiday calendar shapes the workday
table the vacation accounting runs against.`,
	RunE: runReport,
}

func main() {
	cobra.OnInitialize(initConfig)
	addFlags()
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(projectsCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tokenCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("CALTIMIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addFlags() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "config file (default ~/.config/caltimist/caltimist.yml)")
	pf.String("cache-dir", "", "calendar cache directory (default user cache dir)")
	pf.Bool("no-cache", false, "disable the calendar cache")
	pf.CountP("verbose", "v", "verbosity")
	_ = viper.BindPFlag("config", pf.Lookup("config"))
	_ = viper.BindPFlag("cache-dir", pf.Lookup("cache-dir"))
	_ = viper.BindPFlag("no-cache", pf.Lookup("no-cache"))
	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))

	f := rootCmd.Flags()
	f.IntVarP(&flagYear, "year", "y", -1, "report year (-1 for the current one)")
	f.IntVarP(&flagMonth, "month", "m", -1, "report month (-1 current, 0 whole year)")
	f.StringVarP(&flagUser, "user", "u", "", "limit the report to one user")
	f.StringVarP(&flagProject, "project", "p", "", "limit the report to one project")
	f.StringVarP(&flagFormat, "output", "o", "text", "output format (text or html)")
}

func loadConfig() (*config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// newRunner assembles the fetch/parse/aggregate pipeline. The returned
// cleanup closes the calendar cache.
func newRunner(cfg *config.Config) (*app.Runner, func(), error) {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	var store *cache.Store
	cleanup := func() {}
	if !viper.GetBool("no-cache") {
		dir := viper.GetString("cache-dir")
		if dir == "" {
			base, err := os.UserCacheDir()
			if err != nil {
				return nil, nil, err
			}
			dir = filepath.Join(base, "caltimist")
		}
		var err error
		store, err = cache.Open(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening calendar cache: %w", err)
		}
		cleanup = func() { store.Close() }
	}

	var fetchLog *log.Logger
	if viper.GetInt("verbose") > 0 {
		fetchLog = logger
	}
	client := fetch.New(store, cfg.General.Username, cfg.General.Password, fetchLog)
	return &app.Runner{Config: cfg, Fetch: client, Log: logger}, cleanup, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := app.Options{
		Year:    flagYear,
		Month:   flagMonth,
		User:    flagUser,
		Project: flagProject,
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	renderer, err := report.New(flagFormat, os.Stdout)
	if err != nil {
		return err
	}
	runner, cleanup, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return runner.Report(cmd.Context(), opts, renderer)
}

func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List configured users",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, u := range cfg.Users {
				fmt.Println(u.Name)
			}
			return nil
		},
	}
}

func projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List configured projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, p := range cfg.Projects {
				fmt.Println(p.Name)
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			runner, cleanup, err := newRunner(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			authCfg := server.AuthConfig{
				JWTSecret: os.Getenv("CALTIMIST_JWT_SECRET"),
				Logger:    runner.Log,
			}
			if authCfg.JWTSecret == "" {
				return fmt.Errorf("CALTIMIST_JWT_SECRET is required for bearer auth")
			}
			handler, err := server.New(server.Config{
				Runner:   runner,
				BasePath: basePath,
				Auth:     authCfg,
				Logger:   runner.Log,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Caltimist API on http://%s%s (OpenAPI at %s/openapi.json)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user>",
		Short: "Mint a bearer token for the serve mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, ok := cfg.UserByName(args[0]); !ok {
				return fmt.Errorf("unknown user %q", args[0])
			}
			secret := os.Getenv("CALTIMIST_JWT_SECRET")
			token, err := server.SignToken(secret, args[0])
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
