package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"paceboard/internal/auth"
	"paceboard/internal/config"
	"paceboard/internal/logging"
	"paceboard/internal/service"
	"paceboard/internal/store"
	"paceboard/internal/strava"
	"paceboard/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		cfg, err = firstRunSetup()
		if err != nil {
			return fmt.Errorf("initial setup: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Config needs attention: %v\n\n", err)
		cfg, err = firstRunSetup()
		if err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}

	dataDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	logging.Setup(filepath.Join(dataDir, "paceboard.log"), cfg.LogLevel)

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", auth.CallbackPort),
	})

	storedAuth, err := db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("No Strava connection found. Starting authorization...")
		if err := authenticate(ctx, db, oauthCfg); err != nil {
			return fmt.Errorf("authentication: %w", err)
		}
		storedAuth, err = db.GetAuth()
		if err != nil {
			return fmt.Errorf("fetching auth after login: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("checking auth: %w", err)
	}

	persist := func(newToken *oauth2.Token) error {
		return db.UpdateTokens(newToken)
	}
	tokenSource := auth.NewTokenSource(oauthCfg, storedAuth.Token(), persist)

	if _, err := tokenSource.Token(); err != nil {
		fmt.Println("Stored token is invalid or expired. Re-authorizing...")
		if err := authenticate(ctx, db, oauthCfg); err != nil {
			return fmt.Errorf("re-authentication: %w", err)
		}
		// The old source still wraps the dead grant; rebuild it around
		// the one the flow just stored.
		storedAuth, err = db.GetAuth()
		if err != nil {
			return fmt.Errorf("fetching auth after re-login: %w", err)
		}
		tokenSource = auth.NewTokenSource(oauthCfg, storedAuth.Token(), persist)
	}

	clock := clockwork.NewRealClock()
	client := strava.NewClient(tokenSource)
	activityStore := store.New(db, client, clock, cfg.Cache)
	querySvc := service.New(activityStore, clock, cfg.Analytics)

	logrus.WithField("data_dir", dataDir).Info("starting")

	app := tui.NewApp(querySvc, cfg.Display)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// firstRunSetup collects Strava API credentials interactively and writes
// the config file.
func firstRunSetup() (*config.Config, error) {
	cfg := config.DefaultConfig()

	fmt.Println("Paceboard needs a Strava API application.")
	fmt.Println("Create one at https://www.strava.com/settings/api, then enter its credentials.")
	fmt.Println()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Client ID").
				Value(&cfg.Strava.ClientID).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("client ID is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Strava.ClientSecret).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("client secret is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	if err := config.Save(&cfg); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	path, _ := config.GetConfigDir()
	fmt.Printf("Saved config to %s/config.json\n\n", path)
	return &cfg, nil
}

func authenticate(ctx context.Context, db *store.DB, oauthCfg *oauth2.Config) error {
	result, err := auth.Authenticate(ctx, oauthCfg)
	if err != nil {
		return err
	}

	if err := db.SaveAuth(result.AthleteID, result.Token); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}

	// A new grant may belong to a different athlete; drop any cached
	// history so the next view syncs from scratch.
	if err := db.ClearCache(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	fmt.Println()
	fmt.Printf("Connected as athlete %d.\n", result.AthleteID)
	return nil
}
