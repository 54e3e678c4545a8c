package service

import "github.com/jxo-me/curl-dyndns/core/ddns"

type IDDNSService interface {
	String() string
	Hash() string
	// Run is the scheduler callback, it never fails.
	Run()
	RunOnce() ddns.Outcome
	Start() error
	Stop() error
}
