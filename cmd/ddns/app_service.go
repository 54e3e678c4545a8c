package main

import (
	"sync"

	"github.com/jxo-me/curl-dyndns/config"
	"github.com/jxo-me/curl-dyndns/config/parsing"
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/jxo-me/curl-dyndns/pkg/overwatch"
	xcache "github.com/jxo-me/curl-dyndns/sdk/cache"
	xservice "github.com/jxo-me/curl-dyndns/sdk/service"
)

// AppService is the main service that runs when no command lines flags are passed to ddns
// it manages all the running services such as the update worker
type AppService struct {
	serviceManager overwatch.Manager
	observer       xservice.OutcomeObserver
	logger         logger.ILogger

	mu     sync.Mutex
	url    string
	cache  *xcache.AddrCache
	closed bool
}

var _ config.Notifier = (*AppService)(nil)

// NewAppService creates a new AppService with needed supporting services
func NewAppService(serviceManager overwatch.Manager, observer xservice.OutcomeObserver, log logger.ILogger) *AppService {
	return &AppService{
		serviceManager: serviceManager,
		observer:       observer,
		logger:         log,
	}
}

// ConfigDidUpdate is a delegate notification from the config manager
// it is trigger when the config file has been updated and now the service needs
// to update its services accordingly
func (s *AppService) ConfigDidUpdate(c config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Debug("Ignoring config update after shutdown")
		return
	}

	// 更新地址不变时保留上次成功的记录, 避免重复请求
	addrCache := s.cache
	if addrCache == nil || c.URL != s.url {
		addrCache = &xcache.AddrCache{}
	}

	var opts []xservice.Option
	if s.observer != nil {
		opts = append(opts, xservice.ObserverOption(s.observer))
	}
	svc, err := parsing.ParseService(&c, addrCache, s.logger, opts...)
	if err != nil {
		s.logger.Errorf("Failed to build ddns service, keeping the current one: %v", err)
		return
	}
	s.url, s.cache = c.URL, addrCache
	config.Set(&c)

	for _, current := range s.serviceManager.Services() {
		if current.String() != svc.String() {
			s.serviceManager.Remove(current.String())
		}
	}
	s.serviceManager.Add(svc)
}

// Shutdown kills all the running services
// later config updates are ignored
func (s *AppService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.serviceManager.Shutdown()
}
