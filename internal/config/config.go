// Package config carrega a configuração do servidor a partir de variáveis de
// ambiente (prefixo PONG_), de um arquivo opcional e dos valores padrão.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"pongmatch/internal/game/pong"
)

// ErrInvalid é retornado (embrulhado) quando algum valor não passa na validação.
var ErrInvalid = errors.New("invalid configuration")

type Server struct {
	Addr string
	Path string
}

type Log struct {
	Level      string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type Game struct {
	Countdown time.Duration
	TickRate  int
	Settings  pong.Settings
}

// TickInterval é 1s/TickRate (16.67ms a 60 Hz).
func (g Game) TickInterval() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}

type NATS struct {
	Enabled       bool
	URL           string
	SubjectPrefix string
}

type Consul struct {
	Enabled       bool
	Addrs         string
	ServiceName   string
	AdvertiseHost string
}

type Config struct {
	Server Server
	Log    Log
	Game   Game
	NATS   NATS
	Consul Consul
}

func setDefaults(v *viper.Viper) {
	g := pong.DefaultSettings()

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.path", "/game")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)

	v.SetDefault("game.width", g.Width)
	v.SetDefault("game.height", g.Height)
	v.SetDefault("game.target_score", g.TargetScore)
	v.SetDefault("game.countdown", "5s")
	v.SetDefault("game.tick_rate", 60)
	v.SetDefault("game.ball_radius", g.BallRadius)
	v.SetDefault("game.ball_velocity_x", g.BallVelocityX)
	v.SetDefault("game.ball_velocity_y", g.BallVelocityY)
	v.SetDefault("game.ball_speed", g.BallSpeed)
	v.SetDefault("game.speed_increment", g.SpeedIncrement)
	v.SetDefault("game.paddle_width", g.PaddleWidth)
	v.SetDefault("game.paddle_height", g.PaddleHeight)
	v.SetDefault("game.paddle_speed", g.PaddleSpeed)

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.subject_prefix", "pong")

	v.SetDefault("consul.enabled", false)
	v.SetDefault("consul.addr", "127.0.0.1:8500")
	v.SetDefault("consul.service_name", "pong-game")
	v.SetDefault("consul.advertise_host", "")
}

// Load lê a configuração. O arquivo é opcional; PONG_CONFIG aponta para um caminho explícito.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PONG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("PONG_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pong")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/pong")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	countdown, err := cast.ToDurationE(v.Get("game.countdown"))
	if err != nil {
		return nil, fmt.Errorf("%w: game.countdown: %v", ErrInvalid, err)
	}

	cfg := &Config{
		Server: Server{
			Addr: cast.ToString(v.Get("server.addr")),
			Path: cast.ToString(v.Get("server.path")),
		},
		Log: Log{
			Level:      cast.ToString(v.Get("log.level")),
			File:       cast.ToString(v.Get("log.file")),
			MaxSize:    cast.ToInt(v.Get("log.max_size")),
			MaxBackups: cast.ToInt(v.Get("log.max_backups")),
			MaxAge:     cast.ToInt(v.Get("log.max_age")),
			Compress:   cast.ToBool(v.Get("log.compress")),
		},
		Game: Game{
			Countdown: countdown,
			TickRate:  cast.ToInt(v.Get("game.tick_rate")),
			Settings: pong.Settings{
				Width:          cast.ToFloat64(v.Get("game.width")),
				Height:         cast.ToFloat64(v.Get("game.height")),
				TargetScore:    cast.ToInt(v.Get("game.target_score")),
				BallRadius:     cast.ToFloat64(v.Get("game.ball_radius")),
				BallVelocityX:  cast.ToFloat64(v.Get("game.ball_velocity_x")),
				BallVelocityY:  cast.ToFloat64(v.Get("game.ball_velocity_y")),
				BallSpeed:      cast.ToFloat64(v.Get("game.ball_speed")),
				SpeedIncrement: cast.ToFloat64(v.Get("game.speed_increment")),
				PaddleWidth:    cast.ToFloat64(v.Get("game.paddle_width")),
				PaddleHeight:   cast.ToFloat64(v.Get("game.paddle_height")),
				PaddleSpeed:    cast.ToFloat64(v.Get("game.paddle_speed")),
			},
		},
		NATS: NATS{
			Enabled:       cast.ToBool(v.Get("nats.enabled")),
			URL:           cast.ToString(v.Get("nats.url")),
			SubjectPrefix: cast.ToString(v.Get("nats.subject_prefix")),
		},
		Consul: Consul{
			Enabled:       cast.ToBool(v.Get("consul.enabled")),
			Addrs:         cast.ToString(v.Get("consul.addr")),
			ServiceName:   cast.ToString(v.Get("consul.service_name")),
			AdvertiseHost: cast.ToString(v.Get("consul.advertise_host")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("%w: server.path %q must start with /", ErrInvalid, c.Server.Path)
	}
	if c.Game.TickRate <= 0 || c.Game.TickInterval() <= 0 {
		return fmt.Errorf("%w: game.tick_rate must be positive and at most %d", ErrInvalid, int64(time.Second))
	}
	if c.Game.Countdown < 0 {
		return fmt.Errorf("%w: game.countdown must not be negative", ErrInvalid)
	}
	if err := c.Game.Settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("%w: nats.url is empty", ErrInvalid)
	}
	if c.Consul.Enabled && (c.Consul.Addrs == "" || c.Consul.ServiceName == "") {
		return fmt.Errorf("%w: consul.addr and consul.service_name are required", ErrInvalid)
	}
	return nil
}
