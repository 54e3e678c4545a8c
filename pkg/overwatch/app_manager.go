package overwatch

import (
	"sort"
	"sync"

	"github.com/jxo-me/curl-dyndns/core/service"
)

// ServiceCallback is a service notify it's run loop finished.
// the first parameter is the service name,
// the second parameter is the config hash of the service,
// the third parameter is an optional error if the service failed
type ServiceCallback func(string, string, error)

// AppManager is the default implementation of over-watched service management
type AppManager struct {
	mu       sync.Mutex
	services map[string]service.IDDNSService
	callback ServiceCallback
}

// NewAppManager creates a new over-watched manager
func NewAppManager(callback ServiceCallback) Manager {
	return &AppManager{services: make(map[string]service.IDDNSService), callback: callback}
}

// Add takes in a new service to manage.
// It stops the service if it already exists in the manager and is running
// It then starts the newly added service
func (m *AppManager) Add(svc service.IDDNSService) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// check for existing service
	if currentService, ok := m.services[svc.String()]; ok {
		if currentService.Hash() == svc.Hash() {
			return // the exact same service, no changes, so move along
		}
		_ = currentService.Stop() // shutdown the worker since a new one is starting
	}
	m.services[svc.String()] = svc

	// start the service!
	go m.serviceRun(svc)
}

// Remove shutdowns the service by name and removes it from its current management list
func (m *AppManager) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if currentService, ok := m.services[name]; ok {
		_ = currentService.Stop()
	}
	delete(m.services, name)
}

// Services returns all the current Services being managed
func (m *AppManager) Services() []service.IDDNSService {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := make([]service.IDDNSService, 0, len(m.services))
	for _, value := range m.services {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].String() < values[j].String() })
	return values
}

// Shutdown stops every managed service
func (m *AppManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, svc := range m.services {
		_ = svc.Stop()
		delete(m.services, name)
	}
}

func (m *AppManager) serviceRun(svc service.IDDNSService) {
	err := svc.Start()
	if m.callback != nil {
		m.callback(svc.String(), svc.Hash(), err)
	}
}
