package notify

import (
	"fmt"

	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"
)

// SlackAPI abstracts the subset of the Slack client used by the notifier.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessage(channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackNotifier posts sync-run summaries to a Slack channel. It is
// strictly best-effort: delivery failures are logged, never propagated.
type SlackNotifier struct {
	api     SlackAPI
	channel string
}

func NewSlackNotifier(api SlackAPI, channel string) *SlackNotifier {
	return &SlackNotifier{api: api, channel: channel}
}

// SyncFinished reports the outcome of one sync run.
func (n *SlackNotifier) SyncFinished(runErr error) {
	text := ":white_check_mark: session sync finished"
	if runErr != nil {
		text = fmt.Sprintf(":x: session sync failed: %v", runErr)
	}

	if _, _, err := n.api.PostMessage(n.channel, slacklib.MsgOptionText(text, false)); err != nil {
		log.Warn().Str("channel", n.channel).Err(err).Msg("slack notification failed")
	}
}
