package tui

import (
	"log/slog"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/ports"
)

type Deps struct {
	WorkspaceLocator     ports.WorkspaceLocator
	WorkspaceInitializer ports.WorkspaceInitializer

	Logger *slog.Logger
	Debug  bool
}
