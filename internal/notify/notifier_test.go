package notify_test

import (
	"errors"
	"testing"

	slacklib "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/taskscout/internal/notify"
)

type mockSlackAPI struct {
	channels []string
	err      error
}

func (m *mockSlackAPI) PostMessage(channelID string, _ ...slacklib.MsgOption) (string, string, error) {
	m.channels = append(m.channels, channelID)
	return channelID, "123.456", m.err
}

func TestSlackNotifierSyncFinished(t *testing.T) {
	t.Parallel()

	t.Run("posts_to_configured_channel", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{}
		n := notify.NewSlackNotifier(api, "C123")

		n.SyncFinished(nil)
		n.SyncFinished(errors.New("upstream down"))

		require.Len(t, api.channels, 2)
		assert.Equal(t, "C123", api.channels[0])
	})

	t.Run("delivery_failure_is_swallowed", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{err: errors.New("channel_not_found")}
		n := notify.NewSlackNotifier(api, "C123")

		assert.NotPanics(t, func() { n.SyncFinished(nil) })
	})
}
