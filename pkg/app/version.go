package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// 构建信息由 -ldflags 注入:
//
//	-X 'github.com/lk2023060901/aagateway/pkg/app.Version=v1.0.0'
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildDate = "unknown"
	AppName   = ""
)

var startedAt = time.Now()

func init() {
	if AppName == "" {
		AppName = defaultAppName(os.Executable)
	}
}

// defaultAppName 网关与客户端二进制分别得到 aagateway-gateway、aagateway-client
func defaultAppName(executable func() (string, error)) string {
	path, err := executable()
	if err != nil {
		return "aagateway"
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	switch {
	case base == "" || base == "." || base == string(filepath.Separator):
		return "aagateway"
	case strings.HasPrefix(base, "aagateway"):
		return base
	default:
		return "aagateway-" + base
	}
}

// Info 版本与运行信息，/api/version 原样返回
type Info struct {
	AppName   string    `json:"app_name"`
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildDate string    `json:"build_date"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
}

// GetInfo 获取当前进程信息
func GetInfo() Info {
	host, _ := os.Hostname()
	return Info{
		AppName:   AppName,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Hostname:  host,
		StartedAt: startedAt,
		Uptime:    time.Since(startedAt).Truncate(time.Second).String(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s on %s (commit %s, built %s, %s %s)",
		i.AppName, i.Version, i.Hostname, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}
