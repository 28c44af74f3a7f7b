package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/licence-store/internal/authz"
	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/logger"
	"github.com/licence-store/internal/models"
)

// policyFlags 可重复的 role:METHOD:/admin/path 参数
type policyFlags []authz.Policy

func (p *policyFlags) String() string {
	parts := make([]string, 0, len(*p))
	for _, item := range *p {
		parts = append(parts, item.Subject+":"+item.Action+":"+item.Object)
	}
	return strings.Join(parts, ",")
}

func (p *policyFlags) Set(value string) error {
	policy, err := parsePolicyArg(value)
	if err != nil {
		return err
	}
	*p = append(*p, policy)
	return nil
}

func parsePolicyArg(value string) (authz.Policy, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 3)
	if len(parts) != 3 {
		return authz.Policy{}, errors.New("want role:METHOD:/admin/path")
	}
	role, err := authz.NormalizeRole(parts[0])
	if err != nil {
		return authz.Policy{}, err
	}
	action := authz.NormalizeAction(parts[1])
	object := authz.NormalizeObject(parts[2])
	if action == "" || object == "" {
		return authz.Policy{}, errors.New("method and path are required")
	}
	return authz.Policy{Subject: role, Object: object, Action: action}, nil
}

func main() {
	var grants, revokes policyFlags
	var listRole string
	flag.Var(&grants, "grant", "追加策略 role:METHOD:/admin/path，可重复")
	flag.Var(&revokes, "revoke", "撤销策略 role:METHOD:/admin/path，可重复")
	flag.StringVar(&listRole, "list", "", "输出指定角色的策略")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(models.DB); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	svc, err := authz.NewService(models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to init authz: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		stdLog.Fatalf("Failed to seed builtin roles: %v", err)
	}
	stdLog.Printf("Builtin roles seeded: %d", len(authz.BuiltinRoleSeeds()))

	for _, p := range grants {
		if err := svc.GrantRolePolicy(p.Subject, p.Object, p.Action); err != nil {
			stdLog.Fatalf("Failed to grant %s %s %s: %v", p.Subject, p.Action, p.Object, err)
		}
		stdLog.Printf("Granted: %s %s %s", p.Subject, p.Action, p.Object)
	}
	for _, p := range revokes {
		if err := svc.RevokeRolePolicy(p.Subject, p.Object, p.Action); err != nil {
			stdLog.Fatalf("Failed to revoke %s %s %s: %v", p.Subject, p.Action, p.Object, err)
		}
		stdLog.Printf("Revoked: %s %s %s", p.Subject, p.Action, p.Object)
	}

	if listRole != "" {
		policies, err := svc.ListRolePolicies(listRole)
		if err != nil {
			stdLog.Fatalf("Failed to list policies: %v", err)
		}
		for _, p := range policies {
			fmt.Printf("%s\t%s\t%s\n", p.Subject, p.Action, p.Object)
		}
	}
}
