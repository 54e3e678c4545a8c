package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jxo-me/curl-dyndns/config"
	"github.com/jxo-me/curl-dyndns/consts"
	"github.com/jxo-me/curl-dyndns/core/ddns"
	"github.com/jxo-me/curl-dyndns/core/hook"
	"github.com/jxo-me/curl-dyndns/core/logger"
	"github.com/jxo-me/curl-dyndns/core/service"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrAlreadyStarted = errors.New("ddns service already started")

// OutcomeObserver receives every finished cycle, e.g. the metrics collector.
type OutcomeObserver interface {
	ObserveOutcome(outcome ddns.Outcome, elapsed time.Duration)
}

type Options struct {
	Hooks    []hook.IHook
	Observer OutcomeObserver
	Delay    time.Duration
}

type Option func(opts *Options)

func HookOption(h ...hook.IHook) Option {
	return func(opts *Options) {
		opts.Hooks = append(opts.Hooks, h...)
	}
}

func ObserverOption(o OutcomeObserver) Option {
	return func(opts *Options) {
		opts.Observer = o
	}
}

// DelayOption overrides the interval taken from the config.
func DelayOption(d time.Duration) Option {
	return func(opts *Options) {
		opts.Delay = d
	}
}

type DDNSService struct {
	DDNS     ddns.IDDNS
	Conf     *config.Config
	Delay    time.Duration
	hooks    []hook.IHook
	observer OutcomeObserver
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once
	status   atomic.Int32 // status is the current timer status.
	runMu    sync.Mutex
	logger   logger.ILogger
	hash     string
}

var _ service.IDDNSService = (*DDNSService)(nil)

func NewDDNS(d ddns.IDDNS, log logger.ILogger, conf *config.Config, opts ...Option) *DDNSService {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	if log == nil {
		log = logger.Default()
	}
	delay := options.Delay
	if delay <= 0 && conf != nil {
		delay = conf.Interval()
	}
	if delay <= 0 {
		delay = time.Minute * consts.DefaultScanIntervalMinutes
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &DDNSService{
		DDNS:     d,
		Conf:     conf,
		Delay:    delay,
		hooks:    options.Hooks,
		observer: options.Observer,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		logger:   log,
		hash:     hashConfig(conf),
	}
	s.status.Store(consts.StatusReady)
	return s
}

func hashConfig(conf *config.Config) string {
	if conf == nil {
		return ""
	}
	data, err := yaml.Marshal(conf)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *DDNSService) String() string {
	if s.Conf != nil && s.Conf.Name != "" {
		return s.Conf.Name
	}
	return s.DDNS.String()
}

// Hash identifies the config the service was built from.
func (s *DDNSService) Hash() string {
	return s.hash
}

// Run is the scheduler callback. Every failure is logged, nothing escapes.
func (s *DDNSService) Run() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("%s DDNS update panicked: %v", s, r)
		}
	}()
	s.RunOnce()
}

// RunOnce runs a single cycle and reports its outcome.
// A cycle started while another is still in flight is skipped.
func (s *DDNSService) RunOnce() ddns.Outcome {
	if !s.runMu.TryLock() {
		s.logger.Warnf("%s previous update is still running, skipping", s)
		return ddns.Skipped(ddns.AddressPair{}, "previous cycle still running")
	}
	defer s.runMu.Unlock()

	start := time.Now()
	outcome := s.DDNS.Update(s.ctx)
	elapsed := time.Since(start)

	// 服务已停止, 被取消的请求不算失败
	if s.ctx.Err() != nil {
		s.logger.Debugf("%s update cancelled by shutdown", s)
		return outcome
	}

	s.logOutcome(outcome)
	if s.observer != nil {
		s.observer.ObserveOutcome(outcome, elapsed)
	}
	for _, h := range s.hooks {
		if err := h.ExecHook(s.ctx, outcome); err != nil {
			s.logger.Warnf("%s %s hook failed: %v", s, h, err)
		}
	}
	return outcome
}

func (s *DDNSService) logOutcome(outcome ddns.Outcome) {
	switch outcome.Status {
	case consts.UpdatedSuccess:
		s.logger.Infof("%s updating DNS was successful (%s)", s, outcome.Addrs)
	case consts.UpdatedNothing:
		s.logger.Debugf("%s DNS was not updated: %s (%s)", s, outcome.Reason, outcome.Addrs)
	case consts.UpdatedFailed:
		err := outcome.Err
		var rejected *ddns.RejectedError
		switch {
		case errors.Is(err, ddns.ErrConfigMissing):
			s.logger.Errorf("%s update url is not configured", s)
		case errors.As(err, &rejected):
			s.logger.Errorf("%s failed to update DNS: status %d, response %q (failed %d times in a row)",
				s, rejected.StatusCode, rejected.Body, outcome.FailedTimes)
		case errors.Is(err, ddns.ErrUpdateTimeout):
			s.logger.Errorf("%s timeout while updating DNS: %v (failed %d times in a row)", s, err, outcome.FailedTimes)
		default:
			s.logger.Errorf("%s network error while updating DNS: %v (failed %d times in a row)", s, err, outcome.FailedTimes)
		}
	}
}

// Worker runs a cycle right away and then on every tick until stopped.
func (s *DDNSService) Worker() error {
	timerIntervalTicker := time.NewTicker(s.Delay)
	defer timerIntervalTicker.Stop()

	s.logger.Infof("%s DDNS service started, checking every %s", s, s.Delay)
	s.Run()
	for {
		select {
		case <-timerIntervalTicker.C:
			// Check the timer status.
			switch s.status.Load() {
			case consts.StatusRunning:
				s.Run()
			case consts.StatusStopped, consts.StatusClosed:
				return nil
			}
		// call to stop polling
		case <-s.ctx.Done():
			s.logger.Debugf("%s DDNS service has been manually stopped!", s)
			return nil
		}
	}
}

// Start blocks until the service is stopped. A service stopped before it
// got started returns nil right away.
func (s *DDNSService) Start() error {
	if !s.status.CompareAndSwap(consts.StatusReady, consts.StatusRunning) {
		if s.status.Load() == consts.StatusClosed {
			return nil
		}
		return errors.Wrap(ErrAlreadyStarted, s.String())
	}
	defer func() {
		s.status.Store(consts.StatusClosed)
		s.closeDone()
	}()
	return s.Worker()
}

// Stop cancels the in-flight cycle and waits for the worker to exit.
// It is safe to call on a service that was never started, and more than once.
func (s *DDNSService) Stop() error {
	s.cancel()
	if s.status.CompareAndSwap(consts.StatusReady, consts.StatusClosed) {
		s.closeDone()
		return nil
	}
	s.status.CompareAndSwap(consts.StatusRunning, consts.StatusStopped)
	<-s.done
	return nil
}

func (s *DDNSService) closeDone() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}
