// Package main is the entry point for the nex CLI application. nex keeps
// a tree of related nexus packages level with their git remotes and the
// npm registry.
package main

import (
	"io"
	"os"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/logger"

	"github.com/nexus-switchboard/nex/cmd"
	"github.com/nexus-switchboard/nex/internal/adapters/git"
	logadapter "github.com/nexus-switchboard/nex/internal/adapters/logger"
	"github.com/nexus-switchboard/nex/internal/adapters/npm"
	"github.com/nexus-switchboard/nex/internal/adapters/report"
	"github.com/nexus-switchboard/nex/internal/domain"
)

func main() {
	// Create a single shared logger instance for the application
	zapLog := logger.NewZapLoggerFromConfig()
	adapter := logadapter.NewZapAdapter(zapLog)

	// Wire up production dependencies
	deps := &cmd.Dependencies{
		LoggerFactory: func() cmd.Logger {
			return adapter
		},

		VCSFactory: func(root string) (domain.VersionControlClient, error) {
			return git.NewClient(root, adapter)
		},

		PkgFactory: func(root string, manifest domain.Manifest) domain.PackageClient {
			return npm.NewClient(root, manifest, adapter)
		},

		ReporterFactory: func(out io.Writer) cmd.Reporter {
			return report.NewWriterWithOutput(out)
		},

		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	cmd.SetDefaultDependencies(deps)
	cmd.Execute()
}
