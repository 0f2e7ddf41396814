package postscmd

import (
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type subscription interface {
	Unsubscribe()
}

// Subscribe routes SavePostCommand, DeletePostCommand and UploadImageCommand
// messages sent through the global dispatcher to the handlers in set. The
// returned func removes every subscription it added.
func Subscribe(set *HandlerSet, opts ...runner.Option) func() {
	if set == nil {
		return func() {}
	}
	subs := make([]subscription, 0, 3)
	if set.Save != nil {
		subs = append(subs, dispatcher.SubscribeCommand(set.Save, opts...))
	}
	if set.Delete != nil {
		subs = append(subs, dispatcher.SubscribeCommand(set.Delete, opts...))
	}
	if set.Upload != nil {
		subs = append(subs, dispatcher.SubscribeCommand(set.Upload, opts...))
	}
	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}
