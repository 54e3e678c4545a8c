package consts

import "time"

// UpdateStatusType 更新状态
type UpdateStatusType string

const (
	// UpdatedNothing 未改变
	UpdatedNothing UpdateStatusType = "UnChanged"
	// UpdatedFailed 更新失败
	UpdatedFailed UpdateStatusType = "Failure"
	// UpdatedSuccess 更新成功
	UpdatedSuccess UpdateStatusType = "Success"
)

const (
	PlaceholderIPv4 = "%ip4%"
	PlaceholderIPv6 = "%ip6%"
)

const (
	DefaultDDNSName            = "curl_dyndns"
	DefaultScanIntervalMinutes = 15
	MinScanIntervalMinutes     = 5
	DefaultLookupTimeout       = 20 * time.Second
	DefaultUpdateTimeout       = 30 * time.Second
	DefaultIPv4EchoURL         = "https://api4.ipify.org/"
	DefaultIPv6EchoURL         = "https://api6.ipify.org/"
	// DefaultIPv6Reg global unicast 2xxx: with a /64 prefix
	DefaultIPv6Reg = `^2[[:alnum:]]{3}:.*/64`
)

// IPv6 获取方式
const (
	GetTypeNetInterface = "netInterface"
	GetTypeURL          = "url"
)

const (
	StatusReady   int32 = 0  // Job or Timer is ready for running.
	StatusRunning int32 = 1  // Job or Timer is already running.
	StatusStopped int32 = 2  // Job or Timer is stopped.
	StatusClosed  int32 = -1 // Job or Timer is closed and waiting to be deleted.
)
