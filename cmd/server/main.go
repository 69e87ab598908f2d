package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"pongmatch/internal/config"
	"pongmatch/internal/logger"
	"pongmatch/internal/network"
	"pongmatch/internal/services/cluster"
	"pongmatch/internal/services/events"
	"pongmatch/internal/services/gameroom"
	"pongmatch/internal/services/queue"
	"pongmatch/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. CARREGA A CONFIGURAÇÃO
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	root, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Component(root, "Main")
	log.WithFields(logrus.Fields{
		"addr":      cfg.Server.Addr,
		"path":      cfg.Server.Path,
		"tick_rate": cfg.Game.TickRate,
		"countdown": cfg.Game.Countdown,
		"target":    cfg.Game.Settings.TargetScore,
		"nats":      cfg.NATS.Enabled,
		"consul":    cfg.Consul.Enabled,
	}).Info("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := cluster.NewHealthAggregator()

	// 2. EVENTOS DE PARTIDA (NATS)
	var pub events.Publisher = events.Nop{}
	if cfg.NATS.Enabled {
		np, err := events.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, cfg.Consul.ServiceName, logger.Component(root, "Events"))
		if err != nil {
			log.WithError(err).Fatal("nats")
		}
		defer np.Close()
		health.AddCheck("nats", np.Healthy)
		pub = np
	}

	// 3. LÓGICA DO JOGO
	// O hub precisa do handler e o handler precisa do manager, que usa o hub como Broadcaster.
	var handler lateHandler
	server := network.NewServer(&handler, root)

	rooms := gameroom.NewRoomManager(gameroom.Config{
		Countdown:    cfg.Game.Countdown,
		TickInterval: cfg.Game.TickInterval(),
		Game:         cfg.Game.Settings,
	}, server.Hub(), pub, root)
	matchQueue := queue.NewQueueMaster(rooms, root)
	rooms.AttachQueue(matchQueue)
	handler.EventHandler = session.NewGameHandler(rooms, matchQueue, root)

	// O hub vive um pouco mais que as salas para entregar o gameEnded de desligamento.
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()

	go rooms.Run(ctx)
	go matchQueue.Run(ctx)
	go server.Run(hubCtx)

	// 4. HANDLERS HTTP
	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, server)
	mux.HandleFunc("/health", health.Handler())
	gameroom.RegisterHandlers(mux, rooms)
	queue.RegisterQueueHandlers(mux, matchQueue)

	// 5. CLUSTER (CONSUL)
	if cfg.Consul.Enabled {
		registrar, err := registerInConsul(ctx, cfg, root)
		if err != nil {
			log.WithError(err).Fatal("consul")
		}
		defer func() {
			if err := registrar.Deregister(); err != nil {
				log.WithError(err).Warn("consul deregister")
			}
		}()
		health.AddCheck("consul", registrar.Healthy)
	}

	// 6. INICIA O SERVIDOR PRINCIPAL
	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: mux}
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	rooms.Wait()
	stopHub()
}

// lateHandler permite criar o Server antes do GameHandler.
type lateHandler struct {
	network.EventHandler
}

type consulRegistration struct {
	*cluster.Registrar
	mgr *cluster.ConsulManager
}

func (c consulRegistration) Healthy() error { return c.mgr.Healthy() }

func registerInConsul(ctx context.Context, cfg *config.Config, root logrus.FieldLogger) (consulRegistration, error) {
	_, portStr, err := net.SplitHostPort(cfg.Server.Addr)
	if err != nil {
		return consulRegistration{}, fmt.Errorf("server.addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return consulRegistration{}, fmt.Errorf("server.addr port: %w", err)
	}
	host := cfg.Consul.AdvertiseHost
	if host == "" {
		if host, err = os.Hostname(); err != nil {
			return consulRegistration{}, fmt.Errorf("hostname: %w", err)
		}
	}

	mgr, err := cluster.NewConsulManager(ctx, cfg.Consul.Addrs, root)
	if err != nil {
		return consulRegistration{}, err
	}
	registrar := cluster.NewRegistrar(mgr, cluster.Registration{
		ServiceName: cfg.Consul.ServiceName,
		Host:        host,
		Port:        port,
		HealthPath:  "/health",
	}, root)
	if err := registrar.Register(); err != nil {
		return consulRegistration{}, err
	}
	return consulRegistration{Registrar: registrar, mgr: mgr}, nil
}
