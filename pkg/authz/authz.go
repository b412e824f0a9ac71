package authz

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"creatorplane/pkg/config"
)

var Module = fx.Module("authz", fx.Provide(NewGuard))

// rbacModel maps an actor role onto the review transition it may perform.
const rbacModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj
`

// defaultPolicies is the built-in role/transition matrix. A policy file from
// config replaces it entirely.
var defaultPolicies = [][]string{
	{"admin", "admin_approve"},
	{"admin", "admin_request_revision"},
	{"admin", "final_sign_off"},
	{"client", "client_approve"},
	{"client", "client_request_revision"},
	{"creator", "resubmit"},
	{"creator", "publish"},
}

// Guard answers whether a role may run a named review transition.
type Guard interface {
	Allow(role, transition string) bool
}

type casbinGuard struct {
	enforcer *casbin.Enforcer
}

func NewGuard(cfg *config.Config) (Guard, error) {
	if cfg.AccessControl.Model != "" && cfg.AccessControl.Policy != "" {
		e, err := casbin.NewEnforcer(cfg.AccessControl.Model, cfg.AccessControl.Policy)
		if err != nil {
			zap.L().Error("failed to load access control policy", zap.Error(err))
			return nil, err
		}
		return &casbinGuard{enforcer: e}, nil
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range defaultPolicies {
		if _, err := e.AddPolicy(p[0], p[1]); err != nil {
			return nil, err
		}
	}

	return &casbinGuard{enforcer: e}, nil
}

func (g *casbinGuard) Allow(role, transition string) bool {
	ok, err := g.enforcer.Enforce(role, transition)
	if err != nil {
		zap.L().Error("failed to enforce access control", zap.Error(err))
		return false
	}
	return ok
}
