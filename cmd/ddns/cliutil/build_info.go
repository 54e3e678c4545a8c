package cliutil

import (
	"fmt"
	"runtime"

	"github.com/jxo-me/curl-dyndns/core/logger"
)

type BuildInfo struct {
	GoOS      string `json:"go_os"`
	GoVersion string `json:"go_version"`
	GoArch    string `json:"go_arch"`
	BuildType string `json:"build_type"`
	Version   string `json:"version"`
}

func GetBuildInfo(buildType, version string) *BuildInfo {
	return &BuildInfo{
		GoOS:      runtime.GOOS,
		GoVersion: runtime.Version(),
		GoArch:    runtime.GOARCH,
		BuildType: buildType,
		Version:   version,
	}
}

func (bi *BuildInfo) Log(log logger.ILogger) {
	log.Infof("Version %s%s", bi.Version, bi.GetBuildTypeMsg())
	log.Infof("GOOS: %s, GOVersion: %s, GoArch: %s", bi.GoOS, bi.GoVersion, bi.GoArch)
}

func (bi *BuildInfo) OSArch() string {
	return fmt.Sprintf("%s_%s", bi.GoOS, bi.GoArch)
}

func (bi *BuildInfo) GetBuildTypeMsg() string {
	if bi.BuildType == "" {
		return ""
	}
	return fmt.Sprintf(" with %s", bi.BuildType)
}
