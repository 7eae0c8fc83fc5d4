package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"taskdesk-backend/internal/auth"
	"taskdesk-backend/internal/config"
	"taskdesk-backend/internal/db"
	"taskdesk-backend/internal/feed"
	"taskdesk-backend/internal/reminder"
	"taskdesk-backend/internal/tasks"
	"taskdesk-backend/internal/taskview"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	secret := []byte(cfg.JWTSecret)

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		log.Fatal("failed to connect DB: ", err)
	}
	defer database.Close()
	log.Println("connected to PostgreSQL")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := tasks.NewSQLStore(database)
	hub := feed.NewHub()

	registry := reminder.NewRegistry(func(userID string) *reminder.Engine {
		list, err := store.ListByUser(ctx, userID)
		if err != nil {
			log.Printf("[WARN] initial task fetch user=%s: %v", userID, err)
		}
		snap := tasks.NewSnapshot(userID, list)
		go snap.Follow(ctx, hub.Subscribe(userID), store)

		eng := reminder.NewEngine(snap, reminder.LogNotifier{}, reminder.Options{
			CheckInterval:   cfg.CheckInterval(),
			RefreshInterval: cfg.ViewRefreshInterval(),
			RearmAfter:      cfg.RearmAfter(),
			UpcomingWindow:  cfg.UpcomingWindow(),
			Refresh: func(ctx context.Context) {
				list, err := store.ListByUser(ctx, userID)
				if err != nil {
					log.Printf("[WARN] snapshot refresh user=%s: %v", userID, err)
					return
				}
				snap.Replace(list)
			},
		})
		eng.Start(ctx)
		return eng
	})

	authHandler := auth.NewHandler(database, secret)
	taskHandler := tasks.NewHandler(store, hub, database)
	viewHandler := taskview.NewHandler(store)
	notifHandler := reminder.NewHandler(registry, database)
	mw := auth.New(secret)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- AUTH API -----
	mux.HandleFunc("/auth/register", authHandler.Register)
	mux.HandleFunc("/auth/login", authHandler.Login)
	mux.HandleFunc("/auth/me", mw.Wrap(authHandler.Me))

	// ----- TASKS API -----
	mux.HandleFunc("/tasks", mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			taskHandler.List(w, r)
		case http.MethodPost:
			taskHandler.Create(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.HandleFunc("/tasks/update", mw.Wrap(requireMethod(http.MethodPut, taskHandler.Update)))
	mux.HandleFunc("/tasks/delete", mw.Wrap(requireMethod(http.MethodDelete, taskHandler.Delete)))
	mux.HandleFunc("/tasks/view", mw.Wrap(requireMethod(http.MethodGet, viewHandler.View)))

	// ----- NOTIFICATIONS API -----
	mux.HandleFunc("/notifications", mw.Wrap(requireMethod(http.MethodGet, notifHandler.Open)))
	mux.HandleFunc("/notifications/badge", mw.Wrap(requireMethod(http.MethodGet, notifHandler.Badge)))
	mux.HandleFunc("/notifications/dismiss", mw.Wrap(requireMethod(http.MethodDelete, notifHandler.Dismiss)))
	mux.HandleFunc("/notifications/clear", mw.Wrap(requireMethod(http.MethodDelete, notifHandler.Clear)))

	// ----- CHANGE FEED -----
	wsHandler := feed.ServeWS(hub)
	mux.HandleFunc("/feed", mw.Wrap(wsHandler.ServeHTTP))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: c.Handler(mux),
	}

	go func() {
		log.Println("API server is running on " + cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] server shutdown: %v", err)
	}

	hub.Close()
	registry.Shutdown()
}

func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}
