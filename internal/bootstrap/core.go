package bootstrap

import (
	"github.com/yuqie6/GradeMirror/internal/eventbus"
	"github.com/yuqie6/GradeMirror/internal/pkg/config"
	"github.com/yuqie6/GradeMirror/internal/repository"
	"github.com/yuqie6/GradeMirror/internal/service"
)

// Core 持有跨二进制共享的核心依赖
type Core struct {
	Cfg *config.Config
	DB  *repository.Database
	Bus *eventbus.Bus

	Engines  *service.Engines
	Requests *service.RequestService
	Roles    service.RoleResolver
}

// NewCore 构建核心依赖
func NewCore(cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.App.LogLevel)

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{Cfg: cfg, DB: db}

	c.Bus = eventbus.New()
	c.Engines = service.NewEngines(db.DB, c.Bus)
	c.Roles = service.NewStaticRoleResolver(cfg.Access.AdminIDs...)
	c.Requests = service.NewRequestService(db.DB, c.Engines.Repos.Requests, c.Roles, c.Bus)

	return c, nil
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
