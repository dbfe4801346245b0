package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"auction-house/internal/auth"
	auctionend "auction-house/internal/auctionEndService"
	auction "auction-house/internal/auctionService"
	auctionstatus "auction-house/internal/auctionStatusService"
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/config"
	"auction-house/internal/email"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/internal/ws"
	"auction-house/utils"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		utils.Fatal("failed to parse configuration", map[string]any{"error": err.Error()})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := repository.NewMemoryRepo()
	hub := ws.NewHub()

	authSvc := auth.NewAuthService(repo, cfg.JWTSecret)
	hub.SetTokenValidator(func(token string) (string, error) {
		userID, _, err := authSvc.ResolveIdentity(token)
		return userID, err
	})

	endSvc := auctionend.NewAuctionEndService(repo, hub, email.NewLogNotifier())
	statusSvc := auctionstatus.NewStatusService(repo, hub, endSvc, cfg.SweepInterval)
	scheduler := auctionstatus.NewScheduler(statusSvc)
	auctionSvc := auction.NewAuctionService(repo, scheduler)
	biddingSvc := bidding.NewBiddingService(repo, hub)

	statusSvc.Start(ctx)

	router := server.SetupRouter(authSvc, auctionSvc, biddingSvc, authSvc, hub, cfg.ProbeInterval)

	srv := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: router,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{"address": cfg.RunAddress})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("server failed", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server shutdown failed", map[string]any{"error": err.Error()})
	}

	scheduler.Shutdown()
	hub.Close()
}
