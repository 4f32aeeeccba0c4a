package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/api"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/notes"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/storage"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/sync"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	dataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "notas",
	Short: "Offline-first notes client",
	Long: `notas keeps your notes in a local cache, queues every change,
and syncs with the server whenever it is reachable.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaultDir := ".notas"
	if home, err := os.UserHomeDir(); err == nil {
		defaultDir = filepath.Join(home, ".notas")
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		envOr("NOTAS_SERVER", "http://localhost:3000"), "base URL of the notes API")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir",
		envOr("NOTAS_DATA_DIR", defaultDir), "directory for the local cache and session")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// session is the locally cached login.
type session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func sessionPath() string {
	return filepath.Join(dataDir, "session.json")
}

func loadSession() (*session, error) {
	raw, err := os.ReadFile(sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("not logged in; run `notas login` first")
		}
		return nil, err
	}
	var s session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func saveSession(s *session) error {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(sessionPath(), raw, 0o600)
}

func clearSession() error {
	err := os.Remove(sessionPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// env bundles everything a command needs against one logged-in user.
type env struct {
	sess     *session
	api      *api.Client
	notes    *notes.Service
	queue    *sync.Queue
	syncer   *sync.Syncer
	reconcer *sync.Reconciler
}

func newEnv() (*env, error) {
	sess, err := loadSession()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFileStorage(dataDir)
	if err != nil {
		return nil, err
	}

	apiClient := api.New(serverURL)
	apiClient.SetToken(sess.Token)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	queue := sync.NewQueue(store)
	noteService := notes.NewService(store, apiClient, queue, logger)
	syncer := sync.NewSyncer(queue, apiClient, noteService, logger)
	reconciler := sync.NewReconciler(apiClient, syncer, defaultPingInterval, logger)

	return &env{
		sess:     sess,
		api:      apiClient,
		notes:    noteService,
		queue:    queue,
		syncer:   syncer,
		reconcer: reconciler,
	}, nil
}
