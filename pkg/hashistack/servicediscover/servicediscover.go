package servicediscover

import (
	"context"
	"fmt"
	"strconv"

	"creatorplane/pkg/config"

	"github.com/hashicorp/consul/api"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("servicediscover",
	fx.Provide(NewConfig, NewClient, NewRegistry),
	fx.Invoke(registerConsul),
)

type ServiceRegistry interface {
	Register(ctx context.Context) error
	Deregister(ctx context.Context) error
}

type serviceRegistry struct {
	client    *api.Client
	serviceID string
	service   *api.AgentServiceRegistration
}

func NewConfig(cfg *config.Config) *api.Config {
	config := api.DefaultConfig()
	config.Address = cfg.Consul.Addr

	return config
}

func NewClient(config *api.Config) (*api.Client, error) {
	return api.NewClient(config)
}

func NewRegistry(client *api.Client, cfg *config.Config) ServiceRegistry {
	port, _ := strconv.Atoi(cfg.Server.Addr)

	return &serviceRegistry{
		client:    client,
		serviceID: fmt.Sprintf("%s-%s", cfg.AppName, cfg.AppVersion),
		service: &api.AgentServiceRegistration{
			ID:      fmt.Sprintf("%s-%s", cfg.AppName, cfg.AppVersion),
			Name:    cfg.AppName,
			Address: "127.0.0.1",
			Port:    port,
			Check: &api.AgentServiceCheck{
				HTTP:     fmt.Sprintf("http://127.0.0.1:%s/health/readiness", cfg.Server.Addr),
				Interval: "10s",
				Timeout:  "5s",
			},
		},
	}
}

func registerConsul(lc fx.Lifecycle, cfg *config.Config, registry ServiceRegistry) {
	if cfg.Consul.Addr == "" {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := registry.Register(ctx); err != nil {
				zap.L().Warn("failed to register service in consul", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return registry.Deregister(ctx)
		},
	})
}

func (r *serviceRegistry) Register(ctx context.Context) error {
	return r.client.Agent().ServiceRegister(r.service)
}

func (r *serviceRegistry) Deregister(ctx context.Context) error {
	return r.client.Agent().ServiceDeregister(r.serviceID)
}
