package main

import (
	"context"

	"github.com/judwhite/go-svc"
	"github.com/jxo-me/curl-dyndns/cmd/ddns/cliutil"
	"github.com/jxo-me/curl-dyndns/config"
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/jxo-me/curl-dyndns/pkg/metrics"
	"github.com/jxo-me/curl-dyndns/pkg/overwatch"
	"github.com/jxo-me/curl-dyndns/pkg/watcher"
	xservice "github.com/jxo-me/curl-dyndns/sdk/service"
)

type program struct {
	source    *configSource
	buildInfo *cliutil.BuildInfo
	cfg       config.Config
	log       logger.ILogger

	appService    *AppService
	configManager *config.FileManager
	cancel        context.CancelFunc
}

var _ svc.Service = (*program)(nil)

func (p *program) Init(env svc.Environment) error {
	cfg, err := p.source.Load()
	if err != nil {
		return err
	}
	p.cfg = cfg
	p.log = logFromConfig(cfg.Name, cfg.Log)
	logger.SetDefault(p.log)
	config.Set(&cfg)

	if p.buildInfo != nil {
		p.buildInfo.Log(p.log)
	}
	if env.IsWindowsService() {
		p.log.Info("Running as a Windows service")
	}
	return nil
}

func (p *program) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	var observer xservice.OutcomeObserver
	if p.cfg.Metrics != nil && p.cfg.Metrics.Addr != "" {
		collector := metrics.NewCollector()
		observer = collector
		go func() {
			if err := collector.Serve(ctx, p.cfg.Metrics.Addr, p.log); err != nil {
				p.log.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	serviceManager := overwatch.NewAppManager(func(name string, hash string, err error) {
		if err != nil {
			p.log.Errorf("ddns service %s encountered an error: %v", name, err)
		}
	})
	p.appService = NewAppService(serviceManager, observer, p.log)

	if !p.source.Watched() {
		p.log.Info("No config file found, running from flags and environment")
		p.appService.ConfigDidUpdate(p.cfg)
		return nil
	}

	// start the main run loop that reads from the config file
	f, err := watcher.NewFile()
	if err != nil {
		p.log.Errorf("Cannot watch config file: %v", err)
		return err
	}
	configManager, err := config.NewFileManager(f, p.source.path, p.log)
	if err != nil {
		p.log.Errorf("Cannot setup config file for monitoring: %v", err)
		return err
	}
	configManager.ReadConfig = p.source.Read
	p.configManager = configManager
	p.log.Infof("Monitoring config file at: %s", p.source.path)

	go func() {
		if err := configManager.Start(p.appService); err != nil {
			p.log.Errorf("Config manager stopped: %v", err)
		}
	}()
	return nil
}

func (p *program) Stop() error {
	if p.configManager != nil {
		p.configManager.Shutdown()
	}
	if p.appService != nil {
		p.appService.Shutdown()
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.log.Info("ddns service shutdown")
	return nil
}
