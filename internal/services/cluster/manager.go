package cluster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	consul "github.com/hashicorp/consul/api"
	"github.com/sirupsen/logrus"
)

const monitorInterval = 10 * time.Second

var ErrNoConsul = errors.New("no consul node reachable")

// ConsulManager gerencia a conexão com o cluster Consul, trocando de nó quando
// o atual para de enxergar um líder.
type ConsulManager struct {
	addrs       string
	currentAddr string
	client      *consul.Client
	mu          sync.RWMutex
	onReconnect []func()
	log         *logrus.Entry
}

// NewConsulManager conecta no primeiro nó saudável de addrs (lista separada por vírgula)
// e monitora a conexão até ctx ser cancelado.
func NewConsulManager(ctx context.Context, addrs string, log logrus.FieldLogger) (*ConsulManager, error) {
	m := &ConsulManager{
		addrs: addrs,
		log:   log.WithField("component", "ConsulManager"),
	}
	if err := m.reconnect(); err != nil {
		return nil, err
	}
	go m.monitor(ctx)
	return m, nil
}

// OnReconnect registra uma função chamada a cada reconexão bem-sucedida.
func (m *ConsulManager) OnReconnect(callback func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnect = append(m.onReconnect, callback)
}

// GetClient retorna o cliente atual; nil enquanto nenhum nó responde.
func (m *ConsulManager) GetClient() *consul.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// Healthy serve como check do /health.
func (m *ConsulManager) Healthy() error {
	client := m.GetClient()
	if client == nil {
		return ErrNoConsul
	}
	if _, err := client.Status().Leader(); err != nil {
		return fmt.Errorf("consul leader: %w", err)
	}
	return nil
}

func (m *ConsulManager) reconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client = nil
	for _, node := range strings.Split(m.addrs, ",") {
		nodeAddr := strings.TrimSpace(node)
		if nodeAddr == "" {
			continue
		}

		cfg := consul.DefaultConfig()
		cfg.Address = nodeAddr
		client, err := consul.NewClient(cfg)
		if err != nil {
			continue
		}
		if _, err := client.Status().Leader(); err != nil {
			m.log.WithError(err).WithField("node", nodeAddr).Warn("consul node unavailable")
			continue
		}

		m.client = client
		m.currentAddr = nodeAddr
		m.log.WithField("node", nodeAddr).Info("connected to consul")
		for _, cb := range m.onReconnect {
			go cb()
		}
		return nil
	}
	return fmt.Errorf("%w in %s", ErrNoConsul, m.addrs)
}

// monitor verifica periodicamente a conexão e tenta reconectar se necessário.
func (m *ConsulManager) monitor(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := m.Healthy(); err != nil {
			m.log.WithError(err).WithField("node", m.currentNode()).Warn("consul health check failed, trying other nodes")
			if err := m.reconnect(); err != nil {
				m.log.WithError(err).Error("consul reconnect failed")
			}
		}
	}
}

func (m *ConsulManager) currentNode() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentAddr
}
