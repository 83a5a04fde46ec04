package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"photocopier/internal/presentation"
)

// VersionInfo contains build information
type VersionInfo struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	Time      string `json:"time"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns version information from the binary
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:   "(devel)",
		Revision:  "unknown",
		Time:      "unknown",
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		if buildInfo.Main.Version != "" {
			info.Version = buildInfo.Main.Version
		}
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.Revision = setting.Value
			case "vcs.time":
				info.Time = setting.Value
			case "vcs.modified":
				info.Modified = setting.Value == "true"
			}
		}
	}

	return info
}

func newVersionCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			info := GetVersionInfo()
			out := cmd.OutOrStdout()
			if asJSON {
				return presentation.Printer{Writer: out}.PrintJSON(info)
			}
			modified := ""
			if info.Modified {
				modified = " (modified)"
			}
			fmt.Fprintf(out, "photocopier %s\nRevision:  %s%s\nBuilt:     %s\nGo:        %s\nPlatform:  %s\n",
				info.Version, info.Revision, modified, info.Time, info.GoVersion, info.Platform)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	return cmd
}
