package cluster

import (
	"errors"
	"fmt"
	"math/rand"

	consul "github.com/hashicorp/consul/api"
)

var ErrNoInstance = errors.New("no healthy instance")

// Discover devolve host:port de uma instância saudável de service, escolhida
// ao acaso para espalhar bots e clientes entre os servidores de jogo.
func Discover(mgr *ConsulManager, service string) (string, error) {
	client := mgr.GetClient()
	if client == nil {
		return "", ErrNoConsul
	}
	return discoverWithClient(client, service)
}

func discoverWithClient(client *consul.Client, service string) (string, error) {
	entries, _, err := client.Health().Service(service, "", true, nil)
	if err != nil {
		return "", fmt.Errorf("consul health %s: %w", service, err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("%w for %q", ErrNoInstance, service)
	}
	s := entries[rand.Intn(len(entries))].Service
	return fmt.Sprintf("%s:%d", s.Address, s.Port), nil
}
