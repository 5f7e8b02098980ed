// Package version 빌드 시점에 주입된 버전 정보를 제공합니다.
//
// 값은 ldflags로 주입합니다.
//
//	go build -ldflags "-X github.com/darkkaiser/morning-brief/internal/pkg/version.appVersion=v1.2.0 \
//	  -X github.com/darkkaiser/morning-brief/internal/pkg/version.gitCommitHash=f25b8bf"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const unknown = "unknown"

var (
	appVersion    = "" // 애플리케이션 버전 (예: v1.2.0)
	gitCommitHash = "" // Git 커밋 해시
	buildDate     = "" // 빌드 수행 시간
)

// readBuildInfo 테스트에서 교체할 수 있도록 변수로 둔다.
var readBuildInfo = debug.ReadBuildInfo

// Info 애플리케이션의 빌드 및 런타임 정보입니다.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Get 현재 바이너리의 빌드 정보를 반환합니다.
// ldflags로 주입되지 않은 항목은 Go 모듈 빌드 정보(vcs.revision 등)로 보완합니다.
func Get() Info {
	info := Info{
		Version:   strings.TrimSpace(appVersion),
		Commit:    strings.TrimSpace(gitCommitHash),
		BuildDate: strings.TrimSpace(buildDate),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if bi, ok := readBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			}
		}
	}

	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = unknown
	}
	if info.BuildDate == "" {
		info.BuildDate = unknown
	}

	return info
}

func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}

	return fmt.Sprintf("%s (commit: %s, date: %s, %s %s/%s)", i.Version, commit, i.BuildDate, i.GoVersion, i.OS, i.Arch)
}
