package driven

import (
	"context"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// SettingsStore persists deployment-wide chat settings
type SettingsStore interface {
	// GetChatSettings returns the stored settings, or defaults when none
	// have been saved yet
	GetChatSettings(ctx context.Context) (*domain.ChatSettings, error)

	// SaveChatSettings persists settings
	SaveChatSettings(ctx context.Context, settings *domain.ChatSettings) error
}
