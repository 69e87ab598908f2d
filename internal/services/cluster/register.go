package cluster

import (
	"fmt"

	consul "github.com/hashicorp/consul/api"
	"github.com/sirupsen/logrus"
)

// Registration descreve esta instância do servidor de jogo no Consul.
type Registration struct {
	ServiceName string
	Host        string
	Port        int
	HealthPath  string
}

func (r Registration) ServiceID() string {
	return fmt.Sprintf("%s-%s-%d", r.ServiceName, r.Host, r.Port)
}

func (r Registration) agentRegistration() *consul.AgentServiceRegistration {
	return &consul.AgentServiceRegistration{
		ID:      r.ServiceID(),
		Name:    r.ServiceName,
		Address: r.Host,
		Port:    r.Port,
		Tags:    []string{"websocket", "game"},
		Check: &consul.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", r.Host, r.Port, r.HealthPath),
			Timeout:                        "5s",
			Interval:                       "10s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}

// Registrar registra o serviço e o registra de novo quando o ConsulManager troca de nó.
type Registrar struct {
	mgr *ConsulManager
	reg Registration
	log *logrus.Entry
}

func NewRegistrar(mgr *ConsulManager, reg Registration, log logrus.FieldLogger) *Registrar {
	r := &Registrar{
		mgr: mgr,
		reg: reg,
		log: log.WithFields(logrus.Fields{"component": "Registrar", "service_id": reg.ServiceID()}),
	}
	mgr.OnReconnect(func() {
		if err := r.Register(); err != nil {
			r.log.WithError(err).Error("re-register after reconnect")
		}
	})
	return r
}

func (r *Registrar) Register() error {
	client := r.mgr.GetClient()
	if client == nil {
		return ErrNoConsul
	}
	if err := client.Agent().ServiceRegister(r.reg.agentRegistration()); err != nil {
		return fmt.Errorf("register %s: %w", r.reg.ServiceID(), err)
	}
	r.log.Info("service registered in consul")
	return nil
}

func (r *Registrar) Deregister() error {
	client := r.mgr.GetClient()
	if client == nil {
		return ErrNoConsul
	}
	if err := client.Agent().ServiceDeregister(r.reg.ServiceID()); err != nil {
		return fmt.Errorf("deregister %s: %w", r.reg.ServiceID(), err)
	}
	r.log.Info("service deregistered from consul")
	return nil
}
